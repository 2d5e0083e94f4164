package lexer

import "strings"

// readString consumes a quoted string literal delimited by quote ( " or ' ),
// decoding backslash escapes \n \r \t \\ \" \' and preserving all other bytes
// raw. Returns the decoded value and false if the literal is unterminated
// or exceeds MaxStringLiteral.
func (l *Lexer) readString(quote rune) (string, bool) {
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		if l.ch == 0 {
			l.addError("unterminated string literal", l.currentPos())
			return sb.String(), false
		}
		if l.ch == quote {
			l.readChar()
			break
		}
		if l.ch == '\n' {
			l.addError("unterminated string literal (newline in string)", l.currentPos())
			return sb.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				sb.WriteByte('\\')
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	if sb.Len() > MaxStringLiteral {
		l.addError("string literal exceeds maximum length", l.currentPos())
		return sb.String(), false
	}
	return sb.String(), true
}
