package twigpad

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fakeEngine understands {{ var.path }}, {{ fn() }} and {{ x | filter }}.
// Unknown names fail the way a real engine reports them.
type fakeEngine struct {
	compileErr map[string]error
	compiled   []string
	evaluated  int
	panicOn    string
}

type fakeTemplate struct {
	e       *fakeEngine
	source  string
	symbols *Registry
}

func (e *fakeEngine) Compile(source string, symbols *Registry, _ map[string]string) (Template, error) {
	e.compiled = append(e.compiled, source)
	if err := e.compileErr[source]; err != nil {
		return nil, err
	}
	return fakeTemplate{e: e, source: source, symbols: symbols}, nil
}

func (t fakeTemplate) Evaluate(data map[string]any) (string, error) {
	t.e.evaluated++
	if t.e.panicOn != "" && strings.Contains(t.source, t.e.panicOn) {
		panic("boom")
	}
	return miniEval(t.source, t.symbols, data)
}

var reMiniExpr = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

func miniEval(source string, reg *Registry, data map[string]any) (string, error) {
	var firstErr error
	out := reMiniExpr.ReplaceAllStringFunc(source, func(m string) string {
		if firstErr != nil {
			return ""
		}
		parts := strings.Split(reMiniExpr.FindStringSubmatch(m)[1], "|")
		head := strings.TrimSpace(parts[0])
		var v any
		if name, ok := strings.CutSuffix(head, "()"); ok {
			fn, found := reg.Function(name)
			if !found {
				firstErr = fmt.Errorf(`unknown function "%s"`, name)
				return ""
			}
			v, firstErr = fn(nil, nil)
		} else {
			v = lookup(data, head)
		}
		for _, f := range parts[1:] {
			if firstErr != nil {
				break
			}
			name := strings.TrimSpace(f)
			fn, found := reg.Filter(name)
			if !found {
				firstErr = fmt.Errorf(`unknown filter "%s"`, name)
				break
			}
			v, firstErr = fn(v, nil, nil)
		}
		return stringify(v)
	})
	return out, firstErr
}

func lookup(data map[string]any, path string) any {
	var cur any = data
	for _, key := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[key]
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(c) {
				return nil
			}
			cur = c[i]
		default:
			return nil
		}
	}
	return cur
}
