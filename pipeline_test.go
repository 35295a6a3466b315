package twigpad

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(engine Engine, opts ...Option) *Renderer {
	return NewRenderer(append([]Option{WithEngine(engine), WithClock(fixedClock), WithLogger(discardLogger)}, opts...)...)
}

func TestRenderSuccess(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRenderer(engine).Render(Request{
		Template: "<p>Hello {{ name }}</p>",
		Context:  `{"name": "Ann"}`,
		Head:     HeadConfig{Title: "T", CustomHead: "<style></style>"},
	})

	require.True(t, out.OK)
	require.NoError(t, out.Err)
	assert.False(t, out.Retried)
	assert.True(t, out.Stubbed.Empty())
	assert.Equal(t, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<title>T</title>\n<style></style>\n</head>\n<body>\n<p>Hello Ann</p>\n</body>\n</html>", out.Document)
	assert.Equal(t, 1, engine.evaluated)
}

func TestRenderStubsMissingFunction(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRenderer(engine).Render(Request{Template: "<p>a{{ undefinedFn() }}b</p>", Context: "{}"})

	require.True(t, out.OK)
	assert.True(t, out.Retried)
	assert.Equal(t, []string{"undefinedFn"}, out.Stubbed.Functions)
	assert.Equal(t, successDocument(HeadConfig{}, "<p>ab</p>"), out.Document)
	assert.Equal(t, 2, engine.evaluated)
}

func TestRenderStubsMissingFilter(t *testing.T) {
	out := newTestRenderer(&fakeEngine{}).Render(Request{Template: "<p>{{ name | shiny }}</p>", Context: `{"name": 42}`})

	require.True(t, out.OK)
	assert.Equal(t, []string{"shiny"}, out.Stubbed.Filters)
	assert.Contains(t, out.Document, "<p>42</p>")
}

func TestRenderFailsAfterStub(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRenderer(engine).Render(Request{Template: "{{ a() }}{{ x | bad }}"})

	require.False(t, out.OK)
	assert.True(t, out.Retried)
	assert.Equal(t, 2, engine.evaluated)

	var missingErr *MissingSymbolError
	require.ErrorAs(t, out.Err, &missingErr)
	assert.Equal(t, []string{"a"}, missingErr.Missing.Functions)
	assert.EqualError(t, missingErr.Err, `unknown filter "bad"`)

	assert.Contains(t, out.Document, "Template render error after auto-stub")
	assert.Contains(t, out.Document, "unknown filter &#34;bad&#34;")
	assert.Contains(t, out.Document, "Missing items that were stubbed: function:a")
}

func TestRenderInvalidContext(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRenderer(engine).Render(Request{Template: "<p>{{ name }}</p>", Context: "{not json"})

	require.False(t, out.OK)
	var ctxErr *ContextParseError
	assert.ErrorAs(t, out.Err, &ctxErr)
	assert.Contains(t, out.Document, "Invalid JSON context")
	assert.Contains(t, out.Document, "Provided JSON could not be parsed. Please fix the JSON and try again.")
	assert.Empty(t, engine.compiled)

	out = newTestRenderer(engine).Render(Request{Template: "x", Context: "[1, 2]"})
	require.False(t, out.OK)
	assert.Contains(t, out.Document, "context must be a JSON object")
}

func TestRenderUnclassifiedError(t *testing.T) {
	engine := &fakeEngine{compileErr: map[string]error{"<p>{{ oops</p>": errors.New("bad <tag>")}}
	out := newTestRenderer(engine).Render(Request{Template: "<p>{{ oops</p>"})

	require.False(t, out.OK)
	assert.False(t, out.Retried)
	var evalErr *EvaluationError
	require.ErrorAs(t, out.Err, &evalErr)
	assert.False(t, evalErr.Unexpected)
	assert.Contains(t, out.Document, "<div class=\"muted\">Template render error</div>")
	assert.Contains(t, out.Document, "bad &lt;tag&gt;")
	assert.NotContains(t, out.Document, "bad <tag>")
	assert.Len(t, engine.compiled, 1)
	assert.Zero(t, engine.evaluated)
}

func TestRenderRecoversPanic(t *testing.T) {
	out := newTestRenderer(&fakeEngine{panicOn: "explode"}).Render(Request{Template: "{{ explode }}"})

	require.False(t, out.OK)
	var evalErr *EvaluationError
	require.ErrorAs(t, out.Err, &evalErr)
	assert.True(t, evalErr.Unexpected)
	assert.Contains(t, out.Document, "Unexpected error")
	assert.Contains(t, out.Document, "boom")
}

func TestRenderDoesNotModifySharedSymbols(t *testing.T) {
	base := NewRegistry()
	base.RegisterFunction("site", constFunction("Pad"))
	r := newTestRenderer(&fakeEngine{}, WithSymbols(base))

	for range 2 {
		out := r.Render(Request{Template: "{{ site() }}{{ undefinedFn() }}"})
		require.True(t, out.OK)
		assert.True(t, out.Retried, "every render stubs on its own registry")
		assert.Contains(t, out.Document, "\nPad\n")
	}
	assert.Equal(t, []string{"site"}, base.FunctionNames())
	assert.Empty(t, base.FilterNames())
}

func TestRenderExtension(t *testing.T) {
	out := newTestRenderer(&fakeEngine{}).Render(Request{
		Template:  "<p>{{ name | shout }}</p><p>{{ asset() }}</p>",
		Context:   `{"name": "ann"}`,
		Extension: "filters:\n  shout: \"{{ value | upper }}!\"\nfunctions:\n  asset: \"/static\"\n",
	})

	require.True(t, out.OK)
	assert.False(t, out.Retried)
	assert.Contains(t, out.Document, "<p>ANN!</p><p>/static</p>")
}

func TestRenderIgnoresBrokenExtension(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	engine := &fakeEngine{compileErr: map[string]error{"{% bad": errors.New("unclosed tag")}}
	r := newTestRenderer(engine, WithLogger(logger))

	out := r.Render(Request{Template: "<p>{{ name }}</p>", Context: `{"name": "Ann"}`, Extension: "functions: ["})
	require.True(t, out.OK)
	assert.Contains(t, out.Document, "<p>Ann</p>")
	assert.Contains(t, logs.String(), "extension script ignored")

	logs.Reset()
	out = r.Render(Request{
		Template:  "{{ good() }}",
		Extension: "functions:\n  good: \"fine\"\n  broken: \"{% bad\"\n",
	})
	require.True(t, out.OK)
	assert.Contains(t, out.Document, "\nfine\n")
	assert.Contains(t, logs.String(), "extension entry ignored")
}

func TestRenderOpenLinksInNewTab(t *testing.T) {
	req := Request{Template: `<a href="/x">x</a>`}

	out := newTestRenderer(&fakeEngine{}).Render(req)
	require.True(t, out.OK)
	assert.Contains(t, out.Document, `<a href="/x" target="_blank" rel="noopener noreferrer">x</a>`)

	cfg := DefaultConfig()
	cfg.OpenLinksInNewTab = false
	out = newTestRenderer(&fakeEngine{}, WithConfig(cfg)).Render(req)
	require.True(t, out.OK)
	assert.Contains(t, out.Document, "\n<a href=\"/x\">x</a>\n")
}

func TestRenderNormalizesTemplate(t *testing.T) {
	engine := &fakeEngine{}
	out := newTestRenderer(engine).Render(Request{Template: "{{\n   name   }}", Context: `{"name": "Ann"}`})
	require.True(t, out.OK)
	assert.Equal(t, []string{"{{ name }}"}, engine.compiled)

	cfg := DefaultConfig()
	cfg.NormalizeTemplate = false
	engine = &fakeEngine{}
	newTestRenderer(engine, WithConfig(cfg)).Render(Request{Template: "{{\n   name   }}"})
	assert.Equal(t, []string{"{{\n   name   }}"}, engine.compiled)
}

func TestRenderDefaultPad(t *testing.T) {
	out := newTestRenderer(&fakeEngine{}).Render(DefaultPad().Request())

	require.True(t, out.OK, out.Document)
	assert.False(t, out.Retried)
	assert.Contains(t, out.Document, "<h1>Welcome to Twig HTML Editor</h1>")
	assert.Contains(t, out.Document, "<p>Today is: 2024-03-05</p>")
	assert.Contains(t, out.Document, "&copy; 2024 - Built with Twig HTML Editor")
	assert.Contains(t, out.Document, "<title>Twig HTML Editor - Dynamic HTML with Head Elements</title>")
}
