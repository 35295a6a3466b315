package twigpad

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 10, 20, 30, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func callFunction(t *testing.T, reg *Registry, name string, args []any, kwargs map[string]any) any {
	t.Helper()
	fn, ok := reg.Function(name)
	require.True(t, ok, "function %s not registered", name)
	out, err := fn(args, kwargs)
	require.NoError(t, err)
	return out
}

func callFilter(t *testing.T, reg *Registry, name string, value any, args ...any) any {
	t.Helper()
	fn, ok := reg.Filter(name)
	require.True(t, ok, "filter %s not registered", name)
	out, err := fn(value, args, nil)
	require.NoError(t, err)
	return out
}

func TestBaselineHelpers(t *testing.T) {
	reg := NewRegistry()
	RegisterBaseline(reg, fixedClock)

	now := callFunction(t, reg, "now", nil, nil)
	assert.Equal(t, "2024-03-05T10:20:30.123Z", now)

	assert.Equal(t, 2024, callFilter(t, reg, "year", nil))
	assert.Equal(t, 2019, callFilter(t, reg, "year", "2019-07-01"))
	assert.Equal(t, 2024, callFilter(t, reg, "dateFormat", nil, "YYYY"))
	assert.Equal(t, 2024, callFilter(t, reg, "dateFormat", now, "Y"))
	assert.Equal(t, "2024-03-05", callFilter(t, reg, "dateFormat", now))
	assert.Equal(t, "2021-12-25", callFilter(t, reg, "dateFormat", "2021-12-25T10:00:00Z", "d/m/Y"))

	fn, _ := reg.Filter("year")
	_, err := fn([]any{1}, nil, nil)
	assert.Error(t, err)
}

func TestRangeFunction(t *testing.T) {
	tests := []struct {
		name   string
		args   []any
		kwargs map[string]any
		want   []int
	}{
		{"inclusive", []any{1, 5}, nil, []int{1, 2, 3, 4, 5}},
		{"negative step", []any{5, 1, -2}, nil, []int{5, 3, 1}},
		{"step keyword", []any{1, 4}, map[string]any{"step": 2}, []int{1, 3}},
		{"float bounds", []any{0.0, 2.0}, nil, []int{0, 1, 2}},
		{"empty", []any{3, 1}, nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rangeFunction(tt.args, tt.kwargs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, args := range [][]any{{1}, {1, 5, 0}, {"a", 2}} {
		_, err := rangeFunction(args, nil)
		assert.Error(t, err, "%v", args)
	}
}

func TestDefaultHelpers(t *testing.T) {
	reg := NewRegistry()
	RegisterDefaults(reg, fixedClock)

	assert.Equal(t, "img/logo.png", callFunction(t, reg, "asset", []any{"img/logo.png"}, nil))
	assert.Equal(t, "", callFunction(t, reg, "asset", nil, nil))
	assert.Equal(t, "#", callFunction(t, reg, "path", []any{"home", map[string]any{"id": 1}}, nil))
	assert.Equal(t, "#", callFunction(t, reg, "url", nil, nil))
	assert.Equal(t, "nav.home", callFunction(t, reg, "trans", []any{"nav.home"}, nil))
	assert.Equal(t, "42", callFunction(t, reg, "translate", []any{42}, nil))
	assert.Equal(t, "[\n  1,\n  \"a\"\n]", callFunction(t, reg, "dump", []any{1, "a"}, nil))
	assert.Equal(t, "[]", callFunction(t, reg, "dump", nil, nil))

	assert.Equal(t, `{"a":1}`, callFilter(t, reg, "json_encode", map[string]any{"a": 1}))
	assert.Equal(t, "àb", callFilter(t, reg, "lower", "ÀB"))
	assert.Equal(t, "HELLO", callFilter(t, reg, "upper", "hello"))
	assert.Equal(t, "İ", callFilter(t, reg, "upper", "i", "tr"))
	assert.Equal(t, "", callFilter(t, reg, "upper", nil))
	assert.Equal(t, "x", callFilter(t, reg, "trim", "  x \n"))
	assert.Equal(t, Markup("<h1>Hi</h1>\n"), callFilter(t, reg, "markdown_to_html", "# Hi"))
	assert.Equal(t, "mardi 5 mars 2024", callFilter(t, reg, "localdate", fixedNow, "Monday 2 January 2006", "fr_FR"))
	assert.Equal(t, "5 March 2024", callFilter(t, reg, "localdate", nil))
}

func TestDefaultHelpersKeepRegistered(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFunction("asset", constFunction("custom"))

	RegisterDefaults(reg, fixedClock)

	assert.Equal(t, "custom", callFunction(t, reg, "asset", []any{"x"}, nil))
}

func TestRegisterStubs(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	reg := NewRegistry()

	RegisterStubs(reg, MissingSymbols{
		Functions: []string{"undefinedFn"},
		Filters:   []string{"shout"},
		Tests:     []string{"odd2"},
	}, logger)

	assert.Equal(t, "", callFunction(t, reg, "undefinedFn", []any{1}, nil))
	assert.Contains(t, logs.String(), "called stub function")
	assert.Contains(t, logs.String(), "name=undefinedFn")

	assert.Equal(t, "abc", callFilter(t, reg, "shout", "abc"))
	assert.Equal(t, "3", callFilter(t, reg, "shout", 3))
	assert.Equal(t, "", callFilter(t, reg, "shout", nil))

	test, ok := reg.Test("odd2")
	require.True(t, ok)
	for value, want := range map[any]bool{"x": true, "": false, 0: false, 7: true, nil: false, true: true} {
		got, err := test(value, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%v", value)
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy([]any{}))
	assert.True(t, truthy([]any{0}))
	assert.False(t, truthy(map[string]any{}))
	assert.False(t, truthy(0.0))
	assert.True(t, truthy(struct{}{}))
}
