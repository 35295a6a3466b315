package twigpad

import (
	"errors"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extension is a user script adding functions, filters and tests. Every
// entry maps a name to a template body:
//
//	functions:
//	  greet: "Hello {{ args[0] }}"
//	filters:
//	  shout: "{{ value | upper }}!"
//	tests:
//	  long: "{{ value | length > 3 }}"
//
// Function bodies see args and kwargs, filter bodies see value, args and
// kwargs, test bodies see value and args.
type Extension struct {
	Functions map[string]string `yaml:"functions"`
	Filters   map[string]string `yaml:"filters"`
	Tests     map[string]string `yaml:"tests"`
}

// ParseExtension decodes an extension script. A blank script is an empty
// extension. Unknown top-level keys are rejected.
func ParseExtension(script string) (*Extension, error) {
	ext := &Extension{}
	if strings.TrimSpace(script) == "" {
		return ext, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(script))
	dec.KnownFields(true)
	if err := dec.Decode(ext); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ExtensionScriptError{Err: err}
	}
	return ext, nil
}

// Empty reports whether the extension defines nothing.
func (x *Extension) Empty() bool {
	return len(x.Functions) == 0 && len(x.Filters) == 0 && len(x.Tests) == 0
}

// Apply compiles every entry with engine and registers it on reg. Bodies
// are compiled against visible, or a snapshot of reg taken before the
// first entry when visible is nil, so an entry never sees itself or its
// siblings. An entry that fails to compile is skipped and reported; the
// others are still registered.
func (x *Extension) Apply(reg, visible *Registry, engine Engine) []error {
	if visible == nil {
		visible = reg.Clone()
	}
	var errs []error
	compile := func(name, body string) Template {
		tpl, err := engine.Compile(body, visible, nil)
		if err != nil {
			errs = append(errs, &ExtensionScriptError{Name: name, Err: err})
			return nil
		}
		return tpl
	}

	for _, name := range slices.Sorted(maps.Keys(x.Functions)) {
		tpl := compile(name, x.Functions[name])
		if tpl == nil {
			continue
		}
		reg.RegisterFunction(name, func(args []any, kwargs map[string]any) (any, error) {
			return tpl.Evaluate(map[string]any{"args": orEmpty(args), "kwargs": kwargsOrEmpty(kwargs)})
		})
	}
	for _, name := range slices.Sorted(maps.Keys(x.Filters)) {
		tpl := compile(name, x.Filters[name])
		if tpl == nil {
			continue
		}
		reg.RegisterFilter(name, func(value any, args []any, kwargs map[string]any) (any, error) {
			return tpl.Evaluate(map[string]any{"value": value, "args": orEmpty(args), "kwargs": kwargsOrEmpty(kwargs)})
		})
	}
	for _, name := range slices.Sorted(maps.Keys(x.Tests)) {
		tpl := compile(name, x.Tests[name])
		if tpl == nil {
			continue
		}
		reg.RegisterTest(name, func(value any, args []any) (bool, error) {
			out, err := tpl.Evaluate(map[string]any{"value": value, "args": orEmpty(args)})
			if err != nil {
				return false, err
			}
			return !isFalseOutput(out), nil
		})
	}
	return errs
}

func isFalseOutput(out string) bool {
	switch strings.TrimSpace(out) {
	case "", "false", "False", "0", "none", "None":
		return true
	}
	return false
}

func orEmpty(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}

func kwargsOrEmpty(kwargs map[string]any) map[string]any {
	if kwargs == nil {
		return map[string]any{}
	}
	return kwargs
}
