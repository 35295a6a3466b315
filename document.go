package twigpad

import (
	"html"
	"html/template"
	"strings"
)

// HeadConfig holds the optional head elements of a rendered document.
// Empty fields are left out.
type HeadConfig struct {
	Title       string `json:"title" yaml:"title" toml:"title"`
	Viewport    string `json:"viewport" yaml:"viewport" toml:"viewport"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Keywords    string `json:"keywords" yaml:"keywords" toml:"keywords"`
	// CustomHead is inserted as is, after the other elements.
	CustomHead string `json:"custom_head" yaml:"custom_head" toml:"custom_head"`
}

// Build renders the head content in the order title, viewport, description,
// keywords, custom head. Each element ends with a newline.
func (h HeadConfig) Build() string {
	var b strings.Builder
	if h.Title != "" {
		b.WriteString("<title>" + html.EscapeString(h.Title) + "</title>\n")
	}
	writeMeta := func(name, content string) {
		if content != "" {
			b.WriteString(`<meta name="` + name + `" content="` + html.EscapeString(content) + "\">\n")
		}
	}
	writeMeta("viewport", h.Viewport)
	writeMeta("description", h.Description)
	writeMeta("keywords", h.Keywords)
	if h.CustomHead != "" {
		b.WriteString(h.CustomHead + "\n")
	}
	return b.String()
}

func successDocument(head HeadConfig, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString(head.Build())
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>")
	return b.String()
}

// Diagnostic titles.
const (
	titleInvalidContext = "Invalid JSON context"
	titleAfterStub      = "Template render error after auto-stub"
	titleRenderError    = "Template render error"
	titleUnexpected     = "Unexpected error"
)

type diagnostic struct {
	Title   string
	Message string
	Details []string
}

var diagnosticTemplate = template.Must(template.New("diagnostic").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Render Error</title>
  <style>
    :root { color-scheme: light dark; }
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, Noto Sans, Apple Color Emoji, Segoe UI Emoji; margin: 0; padding: 16px; background: #fff; color: #111; }
    .wrap { max-width: 960px; margin: 0 auto; }
    .card { border: 1px solid #fca5a5; background: #fff1f2; color: #7f1d1d; padding: 16px; border-radius: 8px; }
    h1 { font-size: 18px; margin: 0 0 8px; }
    pre { background: #0f172a; color: #f8fafc; padding: 12px; border-radius: 6px; overflow: auto; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; font-size: 12px; }
    .muted { color: #334155; }
    .hint { margin-top: 8px; font-size: 12px; }
    @media (max-width: 640px) { pre { white-space: pre-wrap; word-wrap: break-word; } }
  </style>
  <style media="(prefers-color-scheme: dark)">
    body { background: #0b0f19; color: #e5e7eb; }
    .card { border-color: #7f1d1d; background: #1c1917; color: #fecaca; }
    .muted { color: #94a3b8; }
  </style>
  <base target="_blank" />
  <meta name="referrer" content="no-referrer" />
  <meta name="robots" content="noindex" />
</head>
<body>
  <div class="wrap">
    <div class="card">
      <h1>Template Render Failed</h1>
      <div class="muted">{{ .Title }}</div>
      <pre><code>{{ .Message }}</code></pre>
      {{- range .Details }}
      <div class="muted">{{ . }}</div>
      {{- end }}
      <div class="hint">Fix the error above and render again.</div>
    </div>
  </div>
</body>
</html>`))

func (d diagnostic) document() string {
	var b strings.Builder
	if err := diagnosticTemplate.Execute(&b, d); err != nil {
		// only strings are executed; a failure here means a broken template
		return "<!DOCTYPE html>\n<html lang=\"en\"><body><pre>" + html.EscapeString(d.Title+": "+d.Message) + "</pre></body></html>"
	}
	return b.String()
}
