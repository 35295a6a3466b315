package twigpad

import (
	"regexp"
	"slices"
	"strings"
)

// MissingSymbols lists the unregistered symbols named by an evaluation error.
type MissingSymbols struct {
	Functions []string
	Filters   []string
	Tests     []string
}

// Empty reports whether no symbol was identified.
func (m MissingSymbols) Empty() bool {
	return len(m.Functions) == 0 && len(m.Filters) == 0 && len(m.Tests) == 0
}

// String renders the symbols as "function:a, filter:b, test:c".
func (m MissingSymbols) String() string {
	var parts []string
	for _, n := range m.Functions {
		parts = append(parts, "function:"+n)
	}
	for _, n := range m.Filters {
		parts = append(parts, "filter:"+n)
	}
	for _, n := range m.Tests {
		parts = append(parts, "test:"+n)
	}
	return strings.Join(parts, ", ")
}

// Phrasings differ between engines and engine versions; every pattern
// captures the symbol name in group 1.
var (
	reMissingFunction = []*regexp.Regexp{
		regexp.MustCompile(`(?i)unknown function\s+["']([a-zA-Z_]\w*)["']`),                       // unknown function "foo"
		regexp.MustCompile(`(?i)\bfunction\s+["']?([a-zA-Z_]\w*)["']?\s+(?:is|not|does)`),         // function 'foo' is not defined
		regexp.MustCompile(`(?i)\bfunction\s+["']?([a-zA-Z_]\w*)["']?\s+is\s+undefined`),          // function foo is undefined
		regexp.MustCompile(`(?i)["']?\b([a-zA-Z_]\w*)["']?\s+is\s+not\s+(?:callable|a function)`), // 'foo' is not a function
	}
	reMissingFilter = []*regexp.Regexp{
		regexp.MustCompile(`(?i)unknown filter\s+["']([a-zA-Z_]\w*)["']`),
		regexp.MustCompile(`(?i)\bfilter\s+["']?([a-zA-Z_]\w*)["']?\s+(?:is|not|does)`),
		regexp.MustCompile(`(?i)\bfilter\s+["']?([a-zA-Z_]\w*)["']?\s+is\s+undefined`),
	}
	reMissingTest = []*regexp.Regexp{
		regexp.MustCompile(`(?i)unknown test\s+["']([a-zA-Z_]\w*)["']`),
		regexp.MustCompile(`(?i)\btest\s+["']?([a-zA-Z_]\w*)["']?\s+(?:is|not|does)`),
		regexp.MustCompile(`(?i)\btest\s+["']?([a-zA-Z_]\w*)["']?\s+is\s+undefined`),
	}
)

// words that the loose patterns can pick up but are never symbol names
var notSymbolNames = map[string]struct{}{
	"value": {}, "it": {}, "this": {}, "that": {}, "object": {}, "nil": {}, "none": {}, "undefined": {},
}

// ClassifyFailure extracts missing function, filter and test names from an
// evaluation error message. Names are deduplicated and kept in match order.
func ClassifyFailure(errText string) MissingSymbols {
	return MissingSymbols{
		Functions: matchSymbols(errText, reMissingFunction),
		Filters:   matchSymbols(errText, reMissingFilter),
		Tests:     matchSymbols(errText, reMissingTest),
	}
}

func matchSymbols(text string, patterns []*regexp.Regexp) []string {
	var names []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if _, skip := notSymbolNames[strings.ToLower(name)]; skip {
				continue
			}
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}
