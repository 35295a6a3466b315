package twigpad

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Request is one render: a template, its JSON context, an optional
// extension script and the head of the resulting document.
type Request struct {
	Template  string
	Context   string
	Extension string
	Head      HeadConfig
	// Partials are templates the main one can include by name.
	Partials map[string]string
}

// Outcome is the result of a render. Document is always a complete HTML
// document; when OK is false it is a diagnostic page describing Err.
type Outcome struct {
	OK       bool
	Document string
	Err      error
	// Stubbed lists the symbols replaced by stand-ins before the retry.
	Stubbed MissingSymbols
	Retried bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfig replaces DefaultConfig.
func WithConfig(c Config) Option {
	return func(r *Renderer) { r.cfg = c }
}

// WithEngine sets the template engine. The default is a GonjaEngine built
// from the renderer's Config.
func WithEngine(e Engine) Option {
	return func(r *Renderer) { r.engine = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithSymbols sets the symbols every render starts from. The registry is
// cloned per render and never modified.
func WithSymbols(reg *Registry) Option {
	return func(r *Renderer) { r.symbols = reg }
}

// WithClock sets the time source of now and the date helpers.
func WithClock(clock func() time.Time) Option {
	return func(r *Renderer) { r.clock = clock }
}

// Renderer turns requests into documents. Every render works on its own
// copy of the symbol registry, so a Renderer can be shared.
type Renderer struct {
	cfg     Config
	engine  Engine
	logger  *slog.Logger
	symbols *Registry
	clock   func() time.Time
}

// NewRenderer creates a renderer with DefaultConfig, a gonja engine and
// a logger that discards everything.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		cfg:     DefaultConfig(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		symbols: NewRegistry(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = NewGonjaEngine(r.cfg)
	}
	return r
}

// Render compiles and evaluates req.Template against req.Context. Symbols
// named by a failed evaluation are stubbed and the template is evaluated
// once more. Render never panics and never returns an empty document.
func (r *Renderer) Render(req Request) (out Outcome) {
	defer func() {
		if v := recover(); v != nil {
			err := &EvaluationError{Err: fmt.Errorf("%v", v), Unexpected: true}
			r.logger.Error("render panicked", slog.Any("panic", v))
			out = Outcome{
				Document: diagnostic{Title: titleUnexpected, Message: err.Err.Error()}.document(),
				Err:      err,
				Stubbed:  out.Stubbed,
				Retried:  out.Retried,
			}
		}
	}()

	reg := r.symbols.Clone()
	RegisterBaseline(reg, r.clock)
	r.applyExtension(reg, req.Extension)
	RegisterDefaults(reg, r.clock)

	data, err := ParseContext(req.Context)
	if err != nil {
		r.logger.Error("render failed", slog.Any("error", err))
		return Outcome{
			Document: diagnostic{
				Title:   titleInvalidContext,
				Message: errorMessage(err),
				Details: []string{"Provided JSON could not be parsed. Please fix the JSON and try again."},
			}.document(),
			Err: err,
		}
	}

	source := req.Template
	if r.cfg.NormalizeTemplate {
		source = NormalizeTemplate(source)
	}

	body, err := r.evaluate(source, reg, req.Partials, data)
	if err != nil {
		missing := ClassifyFailure(err.Error())
		if missing.Empty() {
			r.logger.Error("render failed", slog.Any("error", err))
			return Outcome{
				Document: diagnostic{Title: titleRenderError, Message: err.Error()}.document(),
				Err:      &EvaluationError{Err: err},
			}
		}

		r.logger.Warn("auto-stubbing missing symbols",
			slog.Any("functions", missing.Functions),
			slog.Any("filters", missing.Filters),
			slog.Any("tests", missing.Tests))
		RegisterStubs(reg, missing, r.logger)
		out.Stubbed, out.Retried = missing, true

		body, err = r.evaluate(source, reg, req.Partials, data)
		if err != nil {
			r.logger.Error("render failed after auto-stub", slog.Any("error", err))
			out.Document = diagnostic{
				Title:   titleAfterStub,
				Message: err.Error(),
				Details: []string{"Missing items that were stubbed: " + missing.String()},
			}.document()
			out.Err = &MissingSymbolError{Missing: missing, Err: err}
			return out
		}
	}

	if r.cfg.OpenLinksInNewTab {
		body = openLinksInNewTab(body, r.logger)
	}
	out.OK = true
	out.Document = successDocument(req.Head, body)
	return out
}

// evaluate compiles and runs the template. A compile failure is returned
// like an evaluation failure and classified the same way.
func (r *Renderer) evaluate(source string, reg *Registry, partials map[string]string, data map[string]any) (string, error) {
	tpl, err := r.engine.Compile(source, reg, partials)
	if err != nil {
		return "", err
	}
	return tpl.Evaluate(data)
}

func (r *Renderer) applyExtension(reg *Registry, script string) {
	ext, err := ParseExtension(script)
	if err != nil {
		r.logger.Error("extension script ignored", slog.Any("error", err))
		return
	}
	if ext.Empty() {
		return
	}
	visible := reg.Clone()
	RegisterDefaults(visible, r.clock)
	for _, err := range ext.Apply(reg, visible, r.engine) {
		r.logger.Error("extension entry ignored", slog.Any("error", err))
	}
}

func errorMessage(err error) string {
	var cpe *ContextParseError
	if errors.As(err, &cpe) {
		return cpe.Err.Error()
	}
	return err.Error()
}
