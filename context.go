package twigpad

import (
	"errors"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

var errContextNotObject = errors.New("context must be a JSON object")

// ParseContext decodes the JSON render context. Blank input is an empty
// context. Whole numbers are returned as int so templates print 3, not 3.0.
func ParseContext(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}
	var raw any
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&raw); err != nil {
		return nil, &ContextParseError{Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &ContextParseError{Err: errors.New("unexpected data after the top-level value")}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ContextParseError{Err: errContextNotObject}
	}
	return normalizeNumbers(obj).(map[string]any), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int(t)
		}
	}
	return v
}
