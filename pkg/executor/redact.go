package executor

import (
	"regexp"
	"strings"
)

// RedactionMarker replaces every redacted value.
const RedactionMarker = "[REDACTED]"

// SecretSuppliedMarker is written to the transcript in place of an entered secret.
const SecretSuppliedMarker = "[secret supplied]"

// minScrubLen is the shortest secret replaced wherever it occurs. Shorter
// secrets are only replaced as standalone tokens so hashes and markers survive.
const minScrubLen = 4

// secretAssignment matches "key: value", "key=value", "key is value" and "key - value".
var secretAssignment = regexp.MustCompile(
	`(?i)\b((?:password|passphrase|mnemonic|seed|api[ _-]?key|token|secret|private[ _-]?key)(?:[ _-]?(?:phrase|words|key))?)` +
		`(["']?(?:\s*[:=]|[ \t]+(?:is\b|-)(?:[ \t]*:)?)[ \t]*)([^\s:][^\r\n]*)`,
)

// secretBlock matches a line announcing key material and ending in a colon,
// then the next paragraph of non-blank lines, which holds the material itself.
var secretBlock = regexp.MustCompile(
	`(?im)^([^\r\n]*\b(?:mnemonic|seed|private[ _-]?key|recovery[ _-]?phrase|secret[ _-]?phrase)[^\r\n]*:[ \t]*\r?\n)` +
		`((?:[ \t]*\r?\n)*)` +
		`([^\r\n]*\S[^\r\n]*(?:\r?\n[^\r\n]*\S[^\r\n]*)*)`,
)

// Redact replaces values following secret-bearing keys with RedactionMarker.
// It is keyword-anchored: bare hex values such as transaction hashes are kept.
func Redact(s string) string {
	s = secretBlock.ReplaceAllString(s, "${1}${2}"+RedactionMarker)
	return secretAssignment.ReplaceAllString(s, "${1}${2}"+RedactionMarker)
}

// scrub removes literal secrets from s.
func scrub(s string, secrets []string) string {
	for _, secret := range secrets {
		switch {
		case secret == "":
		case len(secret) >= minScrubLen:
			s = strings.ReplaceAll(s, secret, RedactionMarker)
		default:
			s = scrubToken(s, secret)
		}
	}
	return s
}

// scrubToken replaces secret only where it stands alone: after whitespace,
// a colon or an equals sign and before whitespace or the end of a line.
func scrubToken(s, secret string) string {
	re := regexp.MustCompile(`(?m)(^|[\s:=])` + regexp.QuoteMeta(secret) + `(\s|$)`)
	for {
		next := re.ReplaceAllString(s, "${1}"+RedactionMarker+"${2}")
		if next == s {
			return s
		}
		s = next
	}
}
