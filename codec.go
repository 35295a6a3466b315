package twigpad

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// SerializeStats describes one Serialize run. Sizes are counted in characters.
type SerializeStats struct {
	OriginalSize   int
	MinifiedSize   int
	SerializedSize int
	// Directives is the number of directive spans passed through unescaped.
	Directives int
}

var (
	reLineBreaks    = regexp.MustCompile(`\r?\n|\r|\t`) // dropped, not replaced by a space
	reInterTagSpace = regexp.MustCompile(`>\s+<`)
	reSpaceRuns     = regexp.MustCompile(`\s{2,}`)
)

// Serialize minifies html and escapes it into string-literal form.
// Directive spans are restored raw, never escaped.
func Serialize(html string) string {
	out, _ := SerializeWithStats(html)
	return out
}

// SerializeWithStats is Serialize, also reporting sizes along the way.
func SerializeWithStats(html string) (string, SerializeStats) {
	shielded, table := Shield(html)
	minified := minify(shielded)
	out := Unshield(escapeLiteral(minified), table)
	return out, SerializeStats{
		OriginalSize:   utf8.RuneCountInString(html),
		MinifiedSize:   utf8.RuneCountInString(Unshield(minified, table)),
		SerializedSize: utf8.RuneCountInString(out),
		Directives:     len(table),
	}
}

// Deserialize turns an escaped literal back into readable HTML.
// Malformed \u sequences and unpaired surrogates are kept as they are.
func Deserialize(literal string) string {
	working, table := Shield(literal)
	working = strings.ReplaceAll(working, "\r\n", "\n")
	working = unescapeSequence(working, `\r\n`, "\n")
	working = unescapeSequence(working, `\/`, "/")
	working = unescapeSequence(working, `\"`, `"`)
	working = unescapeSequence(working, `\'`, "'")
	working = decodeUnicodeEscapes(working)
	working = strings.ReplaceAll(working, `\\`, `\`)
	return Unshield(working, table)
}

func minify(s string) string {
	s = reLineBreaks.ReplaceAllString(s, "")
	s = reInterTagSpace.ReplaceAllString(s, "><")
	s = reSpaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// escapeLiteral applies the escapes in a fixed order. Backslashes go first so
// the backslashes introduced by later steps are not doubled.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = escapeNonASCII(s)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, `/`, `\/`)
	return strings.ReplaceAll(s, "\n", `\r\n`)
}

func escapeNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(&b, hi)
			writeUnicodeEscape(&b, lo)
		default:
			writeUnicodeEscape(&b, r)
		}
	}
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	hex := strconv.FormatInt(int64(r), 16)
	b.WriteString(`\u`)
	b.WriteString(strings.Repeat("0", 4-len(hex)))
	b.WriteString(hex)
}

// unescapeSequence replaces seq, which starts with a backslash, by repl
// wherever that backslash is not itself escaped by the one before it.
func unescapeSequence(s, seq, repl string) string {
	if !strings.Contains(s, seq) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := backslashRunEnd(s, i)
		if (j-i)%2 == 1 && strings.HasPrefix(s[j-1:], seq) {
			b.WriteString(s[i : j-1])
			b.WriteString(repl)
			i = j - 1 + len(seq)
			continue
		}
		b.WriteString(s[i:j])
		i = j
	}
	return b.String()
}

func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := backslashRunEnd(s, i)
		r, ok := parseUnicodeEscape(s, j-1)
		if (j-i)%2 == 0 || !ok {
			b.WriteString(s[i:j])
			i = j
			continue
		}
		b.WriteString(s[i : j-1])
		start := j - 1
		i = start + 6
		if utf16.IsSurrogate(r) {
			pair := utf8.RuneError
			if lo, ok := parseUnicodeEscape(s, i); ok {
				pair = utf16.DecodeRune(r, lo)
			}
			if pair == utf8.RuneError {
				b.WriteString(s[start:i])
				continue
			}
			r = pair
			i += 6
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseUnicodeEscape reads a \uXXXX sequence starting at s[i].
func parseUnicodeEscape(s string, i int) (rune, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func backslashRunEnd(s string, i int) int {
	for i < len(s) && s[i] == '\\' {
		i++
	}
	return i
}
