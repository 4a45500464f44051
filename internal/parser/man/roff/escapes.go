package roff

import "strings"

// DecodeEscapes strips roff escape sequences from a text span. Font switches
// disappear, escaped punctuation becomes literal, and unknown escapes keep
// their payload character so no words are lost.
func DecodeEscapes(input string) string {
	var out strings.Builder
	out.Grow(len(input))

	runes := []rune(input)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch != '\\' {
			out.WriteRune(ch)
			i++
			continue
		}
		if i+1 >= len(runes) {
			out.WriteRune(ch)
			break
		}

		next := runes[i+1]
		switch next {
		case 'f':
			// Font switch: selector is \f[name], \f(XY, or \fX.
			i += 2
			if i < len(runes) {
				switch runes[i] {
				case '[':
					for i < len(runes) && runes[i] != ']' {
						i++
					}
					if i < len(runes) {
						i++
					}
				case '(':
					i += 3
				default:
					i++
				}
			}
		case 'B', 'I', 'R', 'P':
			i += 2
		case ' ':
			out.WriteRune(' ')
			i += 2
		case '\\':
			out.WriteRune('\\')
			i += 2
		case '-':
			out.WriteRune('-')
			i += 2
		case '&':
			i += 2
		case '(':
			// Two-character special-character name, dropped.
			i += 4
		default:
			out.WriteRune(next)
			i += 2
		}
	}

	return out.String()
}
