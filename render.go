package twigpad

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin/render"
	"github.com/goccy/go-json"
)

var _ render.HTMLRender = (*HtmlRender)(nil)

// HtmlRender gin HtmlRender compatible. Templates are pads looked up by
// name; the data passed to c.HTML replaces the pad's JSON context.
type HtmlRender struct {
	r    *Renderer
	pads *PadSet
}

// NewHTMLRender create a new HtmlRender
func NewHTMLRender(r *Renderer, pads *PadSet) *HtmlRender {
	return &HtmlRender{r: r, pads: pads}
}

// Instance returns a new render.Render
func (h *HtmlRender) Instance(name string, data any) render.Render {
	return &Render{r: h.r, pads: h.pads, name: name, data: data}
}

// Render renders a pad with data and writes the document to w.
// A diagnostic document is written like any other.
type Render struct {
	r    *Renderer
	pads *PadSet
	name string
	data any
}

// Render renders the pad and writes the document to w
func (r *Render) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	out, err := r.Outcome()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out.Document)
	return err
}

// Outcome renders the pad without writing it.
func (r *Render) Outcome() (Outcome, error) {
	pad, ok := r.pads.Get(r.name)
	if !ok {
		return Outcome{}, fmt.Errorf("pad %s not loaded", r.name)
	}
	req := pad.Request()
	switch data := r.data.(type) {
	case nil:
	case string:
		req.Context = data
	case []byte:
		req.Context = string(data)
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return Outcome{}, fmt.Errorf("encode context for pad %s: %w", r.name, err)
		}
		req.Context = string(raw)
	}
	return r.r.Render(req), nil
}

// WriteContentType write an HTML content type to the response header if not set
func (r *Render) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}
