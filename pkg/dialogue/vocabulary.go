package dialogue

import (
	"strings"
)

type answer int

const (
	answerUnrecognized answer = iota
	answerAffirmative
	answerNegative
)

var (
	affirmative = words("yes", "y", "ok", "okay", "confirm", "sure", "proceed", "go", "do it")
	negative    = words("no", "n", "cancel", "stop", "abort", "nevermind", "never mind")
	cancelWords = words("cancel", "stop", "abort", "nevermind", "never mind", "quit")
)

func words(list ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// normalize lowercases, collapses whitespace and drops trailing punctuation.
func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimRight(s, ".!")
}

// confirmation matches text against the closed confirmation vocabulary.
// Anything outside it is unrecognized and never counts as consent.
func confirmation(text string) answer {
	n := normalize(text)
	if _, ok := affirmative[n]; ok {
		return answerAffirmative
	}
	if _, ok := negative[n]; ok {
		return answerNegative
	}
	return answerUnrecognized
}

func isCancel(text string) bool {
	_, ok := cancelWords[normalize(text)]
	return ok
}
