package twigpad

import (
	"regexp"
	"strconv"
	"strings"
)

// DirectiveKind identifies one of the three directive delimiter families.
type DirectiveKind int

const (
	KindStatement  DirectiveKind = iota // {% ... %}
	KindExpression                      // {{ ... }}
	KindComment                         // {# ... #}
)

func (k DirectiveKind) String() string {
	switch k {
	case KindStatement:
		return "statement"
	case KindExpression:
		return "expression"
	case KindComment:
		return "comment"
	}
	return "unknown"
}

// DirectiveSpan is a captured directive, including its delimiters.
type DirectiveSpan struct {
	Kind DirectiveKind
	Raw  string
}

// StartDelimiter returns the opening delimiter of the span's kind.
func (s DirectiveSpan) StartDelimiter() string {
	return directiveDelimiters[s.Kind][0]
}

// EndDelimiter returns the closing delimiter of the span's kind.
func (s DirectiveSpan) EndDelimiter() string {
	return directiveDelimiters[s.Kind][1]
}

// PlaceholderTable holds captured spans; a placeholder embeds its index in the table.
type PlaceholderTable []DirectiveSpan

const (
	placeholderPrefix = "\x1fTWIG_BLOCK_"
	placeholderSuffix = "\x1f"
)

var directiveDelimiters = map[DirectiveKind][2]string{
	KindStatement:  {"{%", "%}"},
	KindExpression: {"{{", "}}"},
	KindComment:    {"{#", "#}"},
}

var (
	// scan order matters: each pass runs over the output of the previous one
	directivePasses = []struct {
		kind DirectiveKind
		re   *regexp.Regexp
	}{
		{KindStatement, regexp.MustCompile(`\{%[\s\S]*?%\}`)},    // {% if x %}
		{KindExpression, regexp.MustCompile(`\{\{[\s\S]*?\}\}`)}, // {{ name }}
		{KindComment, regexp.MustCompile(`\{#[\s\S]*?#\}`)},      // {# note #}
	}
	rePlaceholder = regexp.MustCompile("\x1fTWIG_BLOCK_(\\d+)\x1f")
)

// Shield replaces every directive span in text with an opaque placeholder and
// returns the rewritten text together with the captured spans.
// Unterminated delimiters are left in place as literal text.
func Shield(text string) (string, PlaceholderTable) {
	var table PlaceholderTable
	working := text
	for _, pass := range directivePasses {
		working = pass.re.ReplaceAllStringFunc(working, func(m string) string {
			table = append(table, DirectiveSpan{Kind: pass.kind, Raw: m})
			return placeholder(len(table) - 1)
		})
	}
	return working, table
}

// Unshield puts the raw directive text back in place of every placeholder.
func Unshield(shielded string, table PlaceholderTable) string {
	if len(table) == 0 {
		return shielded
	}
	return rePlaceholder.ReplaceAllStringFunc(shielded, func(m string) string {
		sm := rePlaceholder.FindStringSubmatch(m)
		i, err := strconv.Atoi(sm[1])
		if err != nil || i >= len(table) {
			return m
		}
		return table[i].Raw
	})
}

func placeholder(i int) string {
	var b strings.Builder
	b.WriteString(placeholderPrefix)
	b.WriteString(strconv.Itoa(i))
	b.WriteString(placeholderSuffix)
	return b.String()
}
