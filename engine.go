package twigpad

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"
)

// rootTemplateName is the name the main template is compiled under.
// Partials are looked up by their own names next to it.
const rootTemplateName = "template.twig"

// Engine compiles template text against a set of symbols.
type Engine interface {
	Compile(source string, symbols *Registry, partials map[string]string) (Template, error)
}

// Template is a compiled template.
type Template interface {
	Evaluate(context map[string]any) (string, error)
}

var _ Engine = (*GonjaEngine)(nil)

// GonjaEngine compiles Jinja-family templates with gonja.
type GonjaEngine struct {
	cfg *config.Config
}

// NewGonjaEngine creates an engine using the delimiters {% %}, {{ }} and {# #}.
func NewGonjaEngine(c Config) *GonjaEngine {
	return &GonjaEngine{cfg: &config.Config{
		BlockStartString:    "{%",
		BlockEndString:      "%}",
		VariableStartString: "{{",
		VariableEndString:   "}}",
		CommentStartString:  "{#",
		CommentEndString:    "#}",
		AutoEscape:          c.AutoEscape,
		StrictUndefined:     c.StrictUndefined,
		TrimBlocks:          c.TrimBlocks,
		LeftStripBlocks:     c.LeftStripBlocks,
	}}
}

// Compile builds a fresh gonja environment from symbols, so nothing
// registered for one render is visible to another.
func (e *GonjaEngine) Compile(source string, symbols *Registry, partials map[string]string) (Template, error) {
	files := make(map[string]string, len(partials)+1)
	for name, body := range partials {
		files[name] = body
	}
	files[rootTemplateName] = source

	tpl, err := exec.NewTemplate(rootTemplateName, e.cfg, &sourceLoader{files: files}, environment(symbols))
	if err != nil {
		return nil, err
	}
	return &gonjaTemplate{tpl: tpl}, nil
}

type gonjaTemplate struct {
	tpl *exec.Template
}

func (t *gonjaTemplate) Evaluate(context map[string]any) (string, error) {
	return t.tpl.ExecuteToString(exec.NewContext(context))
}

// environment layers the registry over gonja's builtins. Every set is new;
// the builtin sets are only read.
func environment(symbols *Registry) *exec.Environment {
	if symbols == nil {
		symbols = NewRegistry()
	}

	filterMap := make(map[string]exec.FilterFunction)
	for _, name := range symbols.FilterNames() {
		fn, _ := symbols.Filter(name)
		filterMap[name] = wrapFilter(fn)
	}
	filters := exec.NewFilterSet(map[string]exec.FilterFunction{}).
		Update(builtins.Filters).
		Update(exec.NewFilterSet(filterMap))

	testMap := make(map[string]exec.TestFunction)
	for _, name := range symbols.TestNames() {
		fn, _ := symbols.Test(name)
		testMap[name] = wrapTest(fn)
	}
	tests := exec.NewTestSet(map[string]exec.TestFunction{}).
		Update(builtins.Tests).
		Update(exec.NewTestSet(testMap))

	functionMap := make(map[string]any)
	for _, name := range symbols.FunctionNames() {
		fn, _ := symbols.Function(name)
		functionMap[name] = wrapFunction(fn)
	}
	globals := exec.NewContext(map[string]any{}).
		Update(builtins.GlobalFunctions).
		Update(exec.NewContext(functionMap))

	return &exec.Environment{
		Filters:           filters,
		Tests:             tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
		Context:           globals,
	}
}

func wrapFunction(fn Function) func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
	return func(_ *exec.Evaluator, params *exec.VarArgs) *exec.Value {
		args, kwargs := unpackParams(params)
		out, err := fn(args, kwargs)
		if err != nil {
			return exec.AsValue(exec.ErrInvalidCall(err))
		}
		return asValue(out)
	}
}

func wrapFilter(fn Filter) exec.FilterFunction {
	return func(_ *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		args, kwargs := unpackParams(params)
		out, err := fn(in.Interface(), args, kwargs)
		if err != nil {
			return exec.AsValue(exec.ErrInvalidCall(err))
		}
		return asValue(out)
	}
}

func wrapTest(fn Test) exec.TestFunction {
	return func(_ *exec.Context, in *exec.Value, params *exec.VarArgs) (bool, error) {
		args, _ := unpackParams(params)
		return fn(in.Interface(), args)
	}
}

func unpackParams(params *exec.VarArgs) ([]any, map[string]any) {
	if params == nil {
		return nil, nil
	}
	args := make([]any, 0, len(params.Args))
	for _, arg := range params.Args {
		args = append(args, arg.Interface())
	}
	var kwargs map[string]any
	if len(params.KwArgs) > 0 {
		kwargs = make(map[string]any, len(params.KwArgs))
		for k, v := range params.KwArgs {
			kwargs[k] = v.Interface()
		}
	}
	return args, kwargs
}

func asValue(v any) *exec.Value {
	if m, ok := v.(Markup); ok {
		return exec.AsSafeValue(string(m))
	}
	return exec.AsValue(v)
}

// sourceLoader serves the template and its partials from memory.
type sourceLoader struct {
	files map[string]string
}

var _ loaders.Loader = (*sourceLoader)(nil)

func (l *sourceLoader) Read(name string) (io.Reader, error) {
	body, ok := l.files[name]
	if !ok {
		return nil, fmt.Errorf("partial %q not found", name)
	}
	return strings.NewReader(body), nil
}

func (l *sourceLoader) Resolve(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if _, ok := l.files[name]; !ok {
		return "", fmt.Errorf("partial %q not found", name)
	}
	return name, nil
}

func (l *sourceLoader) Inherit(string) (loaders.Loader, error) {
	return l, nil
}
