package classify

import "strings"

// unquotedMask walks cmd tracking single/double-quote state the way
// the teacher's AnalyzeCommandQuoteAware does, and returns a
// same-length boolean slice: true where the character at that index
// is outside any quoted span and not backslash-escaped. It is used to decide whether a shell
// metacharacter (pipe, ampersand, semicolon) found by a pattern is a
// real shell operator or just quoted literal text — the Open
// Question #1 tokenizer from SPEC_FULL.md.
func unquotedMask(cmd string) []bool {
	mask := make([]bool, len(cmd))
	var inSingle, inDouble, escaped bool
	for i, c := range []byte(cmd) {
		if escaped {
			mask[i] = false
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if !inSingle {
				escaped = true
			}
			mask[i] = !(inSingle || inDouble)
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
			mask[i] = true
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
			mask[i] = true
		default:
			mask[i] = !(inSingle || inDouble)
		}
	}
	return mask
}

// maskMetacharacters returns a copy of cmd with shell metacharacters
// that fall inside a quoted span replaced by a harmless placeholder,
// so pipe/ampersand/semicolon-sensitive patterns only fire on real
// shell operators, not on literal text a user quoted.
func maskMetacharacters(cmd string) string {
	mask := unquotedMask(cmd)
	const metachars = "|&;<>"
	b := []byte(cmd)
	for i, c := range b {
		if strings.IndexByte(metachars, c) >= 0 && !mask[i] {
			b[i] = 'X'
		}
	}
	return string(b)
}
