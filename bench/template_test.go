package bench_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dangdungcntt/go-twigpad"
)

// makeLargeTemplate tạo một template đủ lớn, nhiều directive
// để chi phí shield/escape/indent rõ rệt trong benchmark.
func makeLargeTemplate() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n<ul>\n")
	b.WriteString("{% for item in items %}\n  <li class=\"{{ loop.index }}\">{{ item | upper }}</li>\n{% endfor %}\n")
	b.WriteString("</ul>\n<pre>\n  keep   this\n</pre>\n")
	for i := range 200 {
		idx := strconv.Itoa(i)
		b.WriteString("<div id=\"d" + idx + "\">\n    <p>café {{ name }} #" + idx + "</p>\n    {# note " + idx + " #}\n</div>\n")
	}
	b.WriteString("</body>\n</html>")
	return b.String()
}

var tplSource = makeLargeTemplate()

func Benchmark_Serialize(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = twigpad.Serialize(tplSource)
	}
}

func Benchmark_Deserialize(b *testing.B) {
	literal := twigpad.Serialize(tplSource)
	b.ReportAllocs()
	for b.Loop() {
		_ = twigpad.Deserialize(literal)
	}
}

func Benchmark_Beautify(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = twigpad.Beautify(tplSource)
	}
}

// 1) One renderer shared by concurrent renders
func Benchmark_Render_Shared(b *testing.B) {
	r := twigpad.NewRenderer()
	req := twigpad.Request{
		Template: tplSource,
		Context:  `{"name": "bench", "items": ["a", "b", "c", "d"]}`,
	}
	out := r.Render(req)
	require.True(b, out.OK, "render failed: %v", out.Err)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if out := r.Render(req); !out.OK {
				b.Fatalf("render failed: %v", out.Err)
			}
		}
	})
}

// 2) Renderer created on every iteration
func Benchmark_Render_NewRenderer(b *testing.B) {
	req := twigpad.Request{
		Template: tplSource,
		Context:  `{"name": "bench", "items": ["a", "b"]}`,
	}
	b.ReportAllocs()
	for b.Loop() {
		if out := twigpad.NewRenderer().Render(req); !out.OK {
			b.Fatalf("render failed: %v", out.Err)
		}
	}
}

// 3) Broken context: no compile, only the diagnostic page
func Benchmark_Render_InvalidContext(b *testing.B) {
	r := twigpad.NewRenderer()
	req := twigpad.Request{Template: tplSource, Context: "{not json"}
	b.ReportAllocs()
	for b.Loop() {
		if out := r.Render(req); out.OK {
			b.Fatal("expected a diagnostic")
		}
	}
}
