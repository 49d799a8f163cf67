package executor

import (
	"fmt"
	"regexp"
)

// event is the outcome class of one read-loop step.
type event int

const (
	eventInvalid event = iota
	eventPrompt
	eventEOF
	eventTimeout
)

// patternTable holds the ordered match targets of the read loop:
// indices 0..N-1 are secret prompts, N is end-of-stream and N+1 is timeout.
type patternTable struct {
	prompts []*regexp.Regexp
}

func newPatternTable(prompts []string) (*patternTable, error) {
	t := &patternTable{}
	for _, p := range prompts {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid prompt pattern %q: %w", p, err)
		}
		t.prompts = append(t.prompts, re)
	}
	return t, nil
}

func (t *patternTable) eofIndex() int     { return len(t.prompts) }
func (t *patternTable) timeoutIndex() int { return len(t.prompts) + 1 }

// classify maps a pattern index back to its outcome class.
func (t *patternTable) classify(idx int) event {
	switch {
	case idx >= 0 && idx < len(t.prompts):
		return eventPrompt
	case idx == t.eofIndex():
		return eventEOF
	case idx == t.timeoutIndex():
		return eventTimeout
	}
	return eventInvalid
}

// matchPrompt finds the earliest prompt in buf. It returns the prompt index and
// the offset just past the match, or -1 when no prompt is present.
func (t *patternTable) matchPrompt(buf string) (idx int, end int) {
	idx, end = -1, -1
	start := len(buf) + 1
	for i, re := range t.prompts {
		loc := re.FindStringIndex(buf)
		if loc != nil && loc[0] < start {
			idx, start, end = i, loc[0], loc[1]
		}
	}
	return idx, end
}
