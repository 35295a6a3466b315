package twigpad

import (
	"regexp"
	"strings"
)

// DefaultIndent is the indent unit used by Beautify.
const DefaultIndent = "  "

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// elements whose content is emitted byte for byte
var preserveElements = map[string]struct{}{
	"pre":      {},
	"textarea": {},
}

var (
	reToken       = regexp.MustCompile(`(<!--[\s\S]*?-->|<[^>]+>)|([^<]+|<)`) // a stray "<" is text
	reTagName     = regexp.MustCompile(`^</?\s*([a-zA-Z0-9:-]+)`)
	reSelfClosing = regexp.MustCompile(`/>\s*$`)
	reDoctype     = regexp.MustCompile(`^<![^-]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

type tokenKind int

const (
	tokenTag tokenKind = iota
	tokenText
)

type token struct {
	kind  tokenKind
	value string
}

func (t token) tagName() string {
	if m := reTagName.FindStringSubmatch(t.value); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

func (t token) isClosing() bool     { return strings.HasPrefix(t.value, "</") }
func (t token) isSelfClosing() bool { return reSelfClosing.MatchString(t.value) }
func (t token) isComment() bool     { return strings.HasPrefix(t.value, "<!--") }
func (t token) isDoctype() bool     { return reDoctype.MatchString(t.value) }

func (t token) isVoid() bool {
	_, ok := voidElements[t.tagName()]
	return ok
}

func (t token) isPreserve() bool {
	_, ok := preserveElements[t.tagName()]
	return ok
}

// opens reports whether the tag starts an element that takes children.
func (t token) opens() bool {
	return t.kind == tokenTag && !t.isComment() && !t.isDoctype() &&
		!t.isClosing() && !t.isSelfClosing() && !t.isVoid()
}

func (t token) closes(name string) bool {
	return t.kind == tokenTag && t.isClosing() && t.tagName() == name
}

func tokenize(s string) []token {
	var tokens []token
	for _, m := range reToken.FindAllStringSubmatch(s, -1) {
		switch {
		case m[1] != "":
			tokens = append(tokens, token{kind: tokenTag, value: m[1]})
		case m[2] != "":
			tokens = append(tokens, token{kind: tokenText, value: m[2]})
		}
	}
	return tokens
}

// Beautify re-indents markup with DefaultIndent. Directive spans, and the
// content of pre and textarea elements, come out unchanged.
func Beautify(text string) string {
	return BeautifyIndent(text, DefaultIndent)
}

// BeautifyLiteral beautifies an escaped literal into readable HTML.
func BeautifyLiteral(literal string) string {
	return Beautify(Deserialize(literal))
}

// BeautifyIndent is Beautify with a custom indent unit.
// Unbalanced markup never fails: the indent level stops at zero.
func BeautifyIndent(text, unit string) string {
	if text == "" {
		return text
	}
	shielded, table := Shield(text)
	b := &beautifier{unit: unit, tokens: tokenize(shielded)}
	b.run()
	return Unshield(strings.Join(b.lines, "\n"), table)
}

type beautifier struct {
	unit     string
	tokens   []token
	lines    []string
	indent   int
	preserve string
}

func (b *beautifier) run() {
	for i := 0; i < len(b.tokens); i++ {
		tok := b.tokens[i]
		if b.preserve != "" {
			b.appendRaw(tok.value)
			if tok.closes(b.preserve) {
				b.preserve = ""
			}
			continue
		}
		if tok.kind == tokenText {
			if text := collapse(tok.value); text != "" {
				b.push(text)
			}
			continue
		}
		switch {
		case tok.isComment() || tok.isDoctype():
			b.push(strings.TrimSpace(tok.value))
		case tok.isClosing() && !tok.isSelfClosing() && !tok.isVoid():
			b.indent = max(b.indent-1, 0)
			b.push(strings.TrimSpace(tok.value))
		case tok.opens() && tok.isPreserve():
			b.push(strings.TrimSpace(tok.value))
			b.preserve = tok.tagName()
		case tok.opens():
			if n := b.inline(i); n > 0 {
				i += n
				continue
			}
			b.push(strings.TrimSpace(tok.value))
			b.indent++
		default:
			b.push(strings.TrimSpace(tok.value))
		}
	}
}

// inline emits an element holding at most one text run on a single line
// and returns how many tokens after i it consumed.
func (b *beautifier) inline(i int) int {
	open := b.tokens[i]
	name := open.tagName()
	rest := b.tokens[i+1:]
	switch {
	case len(rest) >= 1 && rest[0].closes(name):
		b.push(strings.TrimSpace(open.value) + strings.TrimSpace(rest[0].value))
		return 1
	case len(rest) >= 2 && rest[0].kind == tokenText && rest[1].closes(name):
		b.push(strings.TrimSpace(open.value) + collapse(rest[0].value) + strings.TrimSpace(rest[1].value))
		return 2
	}
	return 0
}

func (b *beautifier) push(content string) {
	b.lines = append(b.lines, strings.Repeat(b.unit, b.indent)+content)
}

func (b *beautifier) appendRaw(raw string) {
	b.lines[len(b.lines)-1] += raw
}

func collapse(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
