package mdh

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// encode HTML-encodes the characters that are unsafe in text and
// double-quoted attribute positions.
func encode(s string) string {
	return html.EscapeString(s)
}

// obfuscate turns every character of an email address into a numeric HTML
// entity, alternating decimal and hexadecimal forms, so that the address
// survives rendering but defeats naive harvesters.
func obfuscate(email string) string {
	var sb strings.Builder
	for i, r := range []rune(email) {
		if i%2 == 0 {
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(r)))
		} else {
			sb.WriteString("&#x")
			sb.WriteString(strconv.FormatInt(int64(r), 16))
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

func isLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// generateAnchorName derives a heading anchor name: letters and digits are
// kept lowercased, every other run of characters collapses to a single
// dash.
func generateAnchorName(text string) string {
	var sb []rune
	for _, r := range text {
		switch {
		case isLetterOrDigit(r):
			sb = append(sb, unicode.ToLower(r))
		case len(sb) > 0 && sb[len(sb)-1] != '-':
			sb = append(sb, '-')
		}
	}
	return string(sb)
}
