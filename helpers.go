package twigpad

import (
	"bytes"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goccy/go-json"
	"github.com/goodsign/monday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Markup is a helper result that is already HTML and must not be escaped.
type Markup string

const (
	isoMillis          = "2006-01-02T15:04:05.000Z07:00"
	defaultDateLayout  = "2006-01-02"
	defaultLocalLayout = "2 January 2006"
)

// RegisterBaseline registers now, range and the year and dateFormat filters.
// Repeating it is harmless: registration is last-writer-wins.
func RegisterBaseline(reg *Registry, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	reg.RegisterFunction("now", func(_ []any, _ map[string]any) (any, error) {
		return clock().UTC().Format(isoMillis), nil
	})
	reg.RegisterFunction("range", rangeFunction)
	reg.RegisterFilter("year", func(value any, _ []any, _ map[string]any) (any, error) {
		t, err := toTime(value, clock)
		if err != nil {
			return nil, fmt.Errorf("year: %w", err)
		}
		return t.Year(), nil
	})
	reg.RegisterFilter("dateFormat", func(value any, args []any, _ map[string]any) (any, error) {
		t, err := toTime(value, clock)
		if err != nil {
			return nil, fmt.Errorf("dateFormat: %w", err)
		}
		if len(args) > 0 {
			if f := stringify(args[0]); f == "YYYY" || f == "Y" {
				return t.Year(), nil
			}
		}
		return t.UTC().Format(defaultDateLayout), nil
	})
}

// RegisterDefaults adds the commonly used helpers a template editor expects
// to exist. Names that are already registered are left alone.
func RegisterDefaults(reg *Registry, clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	firstArg := func(args []any, _ map[string]any) (any, error) {
		if len(args) == 0 {
			return "", nil
		}
		return stringify(args[0]), nil
	}
	hash := func([]any, map[string]any) (any, error) { return "#", nil }

	reg.AddFunction("asset", firstArg)
	reg.AddFunction("path", hash)
	reg.AddFunction("url", hash)
	reg.AddFunction("trans", firstArg)
	reg.AddFunction("translate", firstArg)
	reg.AddFunction("dump", func(args []any, _ map[string]any) (any, error) {
		if args == nil {
			args = []any{}
		}
		out, err := json.MarshalIndent(args, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("dump: %w", err)
		}
		return string(out), nil
	})

	reg.AddFilter("json_encode", func(value any, _ []any, _ map[string]any) (any, error) {
		out, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("json_encode: %w", err)
		}
		return string(out), nil
	})
	reg.AddFilter("lower", func(value any, args []any, _ map[string]any) (any, error) {
		return cases.Lower(languageArg(args)).String(stringify(value)), nil
	})
	reg.AddFilter("upper", func(value any, args []any, _ map[string]any) (any, error) {
		return cases.Upper(languageArg(args)).String(stringify(value)), nil
	})
	reg.AddFilter("trim", func(value any, _ []any, _ map[string]any) (any, error) {
		return strings.TrimSpace(stringify(value)), nil
	})
	reg.AddFilter("markdown_to_html", func(value any, _ []any, _ map[string]any) (any, error) {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(stringify(value)), &buf); err != nil {
			return nil, fmt.Errorf("markdown_to_html: %w", err)
		}
		return Markup(buf.String()), nil
	})
	// {{ date | localdate("Monday 2 January 2006", "fr_FR") }}
	reg.AddFilter("localdate", func(value any, args []any, _ map[string]any) (any, error) {
		t, err := toTime(value, clock)
		if err != nil {
			return nil, fmt.Errorf("localdate: %w", err)
		}
		layout, locale := defaultLocalLayout, monday.Locale(monday.LocaleEnUS)
		if len(args) > 0 {
			layout = stringify(args[0])
		}
		if len(args) > 1 {
			locale = monday.Locale(stringify(args[1]))
		}
		return monday.Format(t, layout, locale), nil
	})
}

// RegisterStubs registers a side-effect-free stand-in for every missing symbol.
// Stub functions render as an empty string, stub filters pass their input
// through as a string and stub tests report the truthiness of their input.
func RegisterStubs(reg *Registry, missing MissingSymbols, logger *slog.Logger) {
	for _, name := range missing.Functions {
		reg.RegisterFunction(name, func(args []any, _ map[string]any) (any, error) {
			logger.Warn("called stub function", slog.String("name", name), slog.Any("args", args))
			return "", nil
		})
	}
	for _, name := range missing.Filters {
		reg.RegisterFilter(name, func(value any, _ []any, _ map[string]any) (any, error) {
			return stringify(value), nil
		})
	}
	for _, name := range missing.Tests {
		reg.RegisterTest(name, func(value any, _ []any) (bool, error) {
			return truthy(value), nil
		})
	}
}

// range(start, end, step=1), both ends included
func rangeFunction(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("range: expected start and end, got %d arguments", len(args))
	}
	start, err := toInt(args[0])
	if err != nil {
		return nil, fmt.Errorf("range: start: %w", err)
	}
	end, err := toInt(args[1])
	if err != nil {
		return nil, fmt.Errorf("range: end: %w", err)
	}
	step := 1
	if len(args) > 2 {
		step, err = toInt(args[2])
	} else if v, ok := kwargs["step"]; ok {
		step, err = toInt(v)
	}
	if err != nil {
		return nil, fmt.Errorf("range: step: %w", err)
	}
	if step == 0 {
		return nil, fmt.Errorf("range: step must not be zero")
	}

	var out []int
	for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
		out = append(out, i)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

func languageArg(args []any) language.Tag {
	if len(args) == 0 {
		return language.Und
	}
	tag, err := language.Parse(stringify(args[0]))
	if err != nil {
		return language.Und
	}
	return tag
}

// toTime reads a date the way a template author writes one. Empty values
// mean now; numbers are Unix milliseconds.
func toTime(value any, clock func() time.Time) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return clock(), nil
	case time.Time:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return clock(), nil
		}
		return dateparse.ParseAny(v)
	case int:
		return time.UnixMilli(int64(v)), nil
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	}
	return time.Time{}, fmt.Errorf("cannot read %T as a date", value)
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	}
	return 0, fmt.Errorf("cannot read %T as an integer", value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case Markup:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
