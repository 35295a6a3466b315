package twigpad

import "regexp"

var (
	normalizeRules = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\{%\s+`), "{% "},
		{regexp.MustCompile(`\s+%\}`), " %}"},
		{regexp.MustCompile(`\{\{\s+`), "{{ "},
		{regexp.MustCompile(`\s+\}\}`), " }}"},
		{regexp.MustCompile(`\{#\s+`), "{# "},
		{regexp.MustCompile(`\s+#\}`), " #}"},
	}
	reLongStatement  = regexp.MustCompile(`\{%[^%]*?\s{10,}[^%]*?%\}`)   // {% for x in\n\n\n   items %}
	reLongExpression = regexp.MustCompile(`\{\{[^}]*?\s{10,}[^}]*?\}\}`) // {{ a\n\n\n   ~ b }}
	reInnerSpaceRuns = regexp.MustCompile(`\s{2,}`)
)

// NormalizeTemplate tidies whitespace next to directive delimiters and
// collapses very long whitespace runs inside statements and expressions.
func NormalizeTemplate(template string) string {
	for _, rule := range normalizeRules {
		template = rule.re.ReplaceAllString(template, rule.repl)
	}
	collapseInner := func(m string) string {
		return reInnerSpaceRuns.ReplaceAllString(m, " ")
	}
	template = reLongStatement.ReplaceAllStringFunc(template, collapseInner)
	return reLongExpression.ReplaceAllStringFunc(template, collapseInner)
}
