package twigpad

import (
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Pad is an editor workspace saved as one YAML document.
type Pad struct {
	Template  string     `yaml:"template"`
	Context   string     `yaml:"context,omitempty"`
	Extension string     `yaml:"extension,omitempty"`
	Head      HeadConfig `yaml:"head,omitempty"`
	// Partials can be included from the template by name.
	Partials map[string]string `yaml:"partials,omitempty"`
	// Name is the pad's name inside a PadSet
	Name string `yaml:"-"`
	// LoadedAt is the time when the pad was read in unix milliseconds
	LoadedAt int64 `yaml:"-"`
}

// DefaultPad returns the pad a new editor starts with.
func DefaultPad() *Pad {
	return &Pad{
		Template: `<header>
    <h1>Welcome to {{name}}</h1>
    <p>Today is: {{now() | dateFormat}}</p>
</header>
<main>
    <div class="content">
        <h2>About {{name}}</h2>
        <p>This page demonstrates the HTML head integration with Twig templating.</p>
        <p>The page title, meta description, and other head elements are now configurable!</p>
    </div>
</main>
<footer>
    <p>&copy; {{now() | year}} - Built with Twig HTML Editor</p>
</footer>`,
		Context: `{"name": "Twig HTML Editor"}`,
		Head: HeadConfig{
			Title:       "Twig HTML Editor - Dynamic HTML with Head Elements",
			Description: "A powerful HTML editor with Twig templating support and configurable head elements",
			Keywords:    "twig, html, editor, templating, meta tags",
			Viewport:    "width=device-width, initial-scale=1.0",
			CustomHead: "<meta charset=\"UTF-8\">\n<style>\n  body { font-family: Arial, sans-serif; margin: 0; padding: 20px; }\n" +
				"  .content { max-width: 800px; margin: 0 auto; }\n</style>",
		},
	}
}

// LoadPad reads a pad document.
func LoadPad(r io.Reader) (*Pad, error) {
	p := &Pad{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode pad: %w", err)
	}
	p.LoadedAt = time.Now().UnixMilli()
	return p, nil
}

// Encode writes p as YAML.
func (p *Pad) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

// Request turns the pad into a render request.
func (p *Pad) Request() Request {
	return Request{
		Template:  p.Template,
		Context:   p.Context,
		Extension: p.Extension,
		Head:      p.Head,
		Partials:  p.Partials,
	}
}

var PadFileExtensions = []string{".pad", ".yaml", ".yml"}

// PadSet holds the pads of a directory.
type PadSet struct {
	dirPrefix    string
	fs           fs.FS
	pads         map[string]*Pad
	lastLoadTime int64
	mu           sync.RWMutex
}

// NewPadSet creates a set reading pads from a directory.
func NewPadSet(dir string) *PadSet {
	return NewPadSetFS(os.DirFS(dir))
}

// NewPadSetFS creates a set reading pads from a filesystem.
// When using embed.FS, pass the embedded folder as prefix.
func NewPadSetFS(fsys fs.FS, prefix ...string) *PadSet {
	var dirPrefix string
	if len(prefix) > 0 {
		dirPrefix = prefix[0]
	}
	return &PadSet{
		dirPrefix:    dirPrefix,
		fs:           fsys,
		pads:         map[string]*Pad{},
		lastLoadTime: -1,
	}
}

// Load reads every pad file of the filesystem. Files not modified since
// the previous Load are skipped; pads whose file is gone are dropped.
func (s *PadSet) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	startedAt := time.Now().UnixMilli()
	seen := make(map[string]struct{}, len(s.pads))

	err := fs.WalkDir(s.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !slices.Contains(PadFileExtensions, ext) {
			return nil
		}

		name := s.nameFromPath(path)
		seen[name] = struct{}{}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if _, loaded := s.pads[name]; loaded && info.ModTime().UnixMilli() <= s.lastLoadTime {
			return nil
		}

		f, err := s.fs.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		pad, err := LoadPad(f)
		if err != nil {
			return fmt.Errorf("[%s] %w", path, err)
		}
		pad.Name = name
		s.pads[name] = pad
		return nil
	})
	if err != nil {
		return err
	}
	for name := range s.pads {
		if _, ok := seen[name]; !ok {
			delete(s.pads, name)
		}
	}
	s.lastLoadTime = startedAt
	return nil
}

// Get returns the pad called name, e.g. "pages/home".
func (s *PadSet) Get(name string) (*Pad, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pads[normalizeName(name)]
	return p, ok
}

// Names returns the loaded pad names, sorted.
func (s *PadSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.pads))
}

// nameFromPath converts a filesystem path to a pad name, relative to the set's prefix.
func (s *PadSet) nameFromPath(path string) string {
	rel, err := filepath.Rel(s.dirPrefix, path)
	if err != nil {
		return normalizeName(filepath.Base(path))
	}
	return normalizeName(rel)
}

// normalizeName: remove quotes/spaces and extensions, normalize slashes
func normalizeName(n string) string {
	n = strings.TrimSpace(n)
	n = strings.Trim(n, `"' `)
	n = strings.TrimSuffix(n, filepath.Ext(n))
	return filepath.ToSlash(n)
}
