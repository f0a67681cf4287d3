package codegen

import "strings"

// shellReserved are words the shell treats specially in command position.
var shellReserved = map[string]bool{
	"if": true, "then": true, "else": true, "elif": true, "fi": true,
	"case": true, "esac": true, "for": true, "while": true, "until": true,
	"do": true, "done": true, "in": true, "function": true, "select": true,
	"time": true, "coproc": true, "!": true, "{": true, "}": true,
	"[[": true, "]]": true,
}

func bareByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("_./,:@%+=-", c) >= 0
}

// assignmentShaped reports NAME=... which the shell would take as an
// assignment in command position.
func assignmentShaped(s string) bool {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return false
	}
	for i := 0; i < eq; i++ {
		c := s[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// bare reports whether s can be written without quotes.
func bare(s string) bool {
	if s == "" || shellReserved[s] || assignmentShaped(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !bareByte(s[i]) {
			return false
		}
	}
	return true
}

// quote renders literal text as one shell word.
func quote(s string) string {
	if bare(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteGlob renders a case pattern. *, ? and a closed [...] class stay
// live; everything else is literal. A [ without a closing ] is literal.
func quoteGlob(s string) string {
	if s == "" {
		return "''"
	}
	var b, lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			b.WriteString(quote(lit.String()))
			lit.Reset()
		}
	}
	for i := 0; i < len(s); {
		c := s[i]
		switch c {
		case '*', '?':
			flush()
			b.WriteByte(c)
			i++
			continue
		case '[':
			if class, n, ok := bracketClass(s[i:]); ok {
				flush()
				b.WriteString(class)
				i += n
				continue
			}
		}
		lit.WriteByte(c)
		i++
	}
	flush()
	return b.String()
}

// bracketClass renders the class at the start of s and reports how many
// bytes it spans. A leading ! or ^ negates, a ] right after it is a member,
// and - between two members is a range. Every other member is quoted.
func bracketClass(s string) (string, int, bool) {
	var b strings.Builder
	b.WriteByte('[')
	j := 1
	if j < len(s) && (s[j] == '!' || s[j] == '^') {
		b.WriteByte('!')
		j++
	}
	start := j
	if j < len(s) && s[j] == ']' {
		j++
	}
	end := strings.IndexByte(s[j:], ']')
	if end < 0 {
		return "", 0, false
	}
	end += j
	members := s[start:end]
	for k, r := range members {
		switch {
		case k == 0 && r == ']':
			b.WriteByte(']')
		case r == '-' && k > 0 && k < len(members)-1:
			b.WriteByte('-')
		case r < 0x80 && !isAlnum(byte(r)):
			b.WriteString(quoteMember(byte(r)))
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(']')
	return b.String(), end + 1, true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func quoteMember(c byte) string {
	if c == '\'' {
		return `\'`
	}
	return "'" + string(c) + "'"
}
