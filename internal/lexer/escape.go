package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// EscapeError describes a bad escape at byte Off of the decoded text.
type EscapeError struct {
	Off int
	Len int
	Msg string
}

func (e *EscapeError) Error() string { return e.Msg }

// escapeLen validates the escape starting at s[0] == '\\' and returns its length.
func escapeLen(s string) (int, *EscapeError) {
	if len(s) < 2 {
		return 1, &EscapeError{Len: 1, Msg: "unfinished escape sequence"}
	}
	switch s[1] {
	case 'n', 't', 'r', '\\', '"', '0', '$', '{', '}':
		return 2, nil
	case 'u':
		if len(s) < 3 || s[2] != '{' {
			return 2, &EscapeError{Len: 2, Msg: `\u must be followed by {hex}`}
		}
		end := strings.IndexByte(s, '}')
		if end < 0 || end == 3 || end > 9 {
			return 2, &EscapeError{Len: 2, Msg: `malformed \u{...} escape`}
		}
		for i := 3; i < end; i++ {
			if !isHex(s[i]) {
				return end + 1, &EscapeError{Len: end + 1, Msg: `non-hex digit in \u{...} escape`}
			}
		}
		v, _ := strconv.ParseUint(s[3:end], 16, 32)
		if !utf8.ValidRune(rune(v)) { // #nosec G115 -- at most 6 hex digits
			return end + 1, &EscapeError{Len: end + 1, Msg: `\u{...} is not a valid code point`}
		}
		return end + 1, nil
	}
	_, size := utf8.DecodeRuneInString(s[1:])
	return 1 + size, &EscapeError{Len: 1 + size, Msg: "unknown escape sequence " + strconv.Quote(s[:1+size])}
}

// Unescape decodes the body of a strict or interpolated literal (quotes removed).
func Unescape(body string) (string, error) {
	if strings.IndexByte(body, '\\') < 0 {
		return body, nil
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			b.WriteByte(body[i])
			i++
			continue
		}
		n, err := escapeLen(body[i:])
		if err != nil {
			err.Off += i
			return "", err
		}
		switch body[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'u':
			v, _ := strconv.ParseUint(body[i+3:i+n-1], 16, 32)
			b.WriteRune(rune(v)) // #nosec G115 -- validated by escapeLen
		default:
			b.WriteByte(body[i+1])
		}
		i += n
	}
	return b.String(), nil
}

func quoteText(b []byte) string {
	return strconv.Quote(string(b))
}
