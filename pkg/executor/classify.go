package executor

import (
	"regexp"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// labeledHash matches a 64 hex digit value following a hash-style label.
var labeledHash = regexp.MustCompile(`(?i)\b(?:(?:extrinsic|transaction|tx|block)[ _-]?)?(?:hash|tx)\s*[:=]\s*((?:0x)?[0-9a-f]{64})\b`)

// markers is the compiled, case-insensitive marker set of a profile.
type markers struct {
	success           []*regexp.Regexp
	failure           []*regexp.Regexp
	failurePrecedence bool
}

func newMarkers(p Profile) markers {
	return markers{
		success:           compileMarkers(p.Success),
		failure:           compileMarkers(p.Failure),
		failurePrecedence: p.FailurePrecedence,
	}
}

// compileMarkers turns literal markers into case-insensitive patterns.
// A marker that starts or ends with a word character only matches at a word
// boundary there, so "success" does not match inside "unsuccessful".
// Glyph markers such as ✅ match anywhere.
func compileMarkers(in []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		expr := regexp.QuoteMeta(s)
		if isWordByte(s[0]) {
			expr = `\b` + expr
		}
		if isWordByte(s[len(s)-1]) {
			expr += `\b`
		}
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

func isWordByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func matchAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// classify derives the status of a finished invocation from its transcript.
// Markers decide first. When neither class matches, a non-zero exit is a
// failure, a clean exit of a read-only invocation is a success and a clean
// exit of a mutating invocation stays unknown.
func (m markers) classify(transcript string, exitCode int, mutating bool) domain.ExecutionStatus {
	failed := matchAny(transcript, m.failure)
	succeeded := matchAny(transcript, m.success)

	switch {
	case failed && succeeded:
		if m.failurePrecedence {
			return domain.StatusFailed
		}
		return domain.StatusSuccess
	case failed:
		return domain.StatusFailed
	case succeeded:
		return domain.StatusSuccess
	case exitCode != 0:
		return domain.StatusFailed
	case !mutating:
		return domain.StatusSuccess
	default:
		return domain.StatusUnknown
	}
}

// ExtractIdentifier returns the last labeled transaction hash in the transcript.
func ExtractIdentifier(transcript string) string {
	matches := labeledHash.FindAllStringSubmatch(transcript, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}
