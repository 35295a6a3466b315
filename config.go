package twigpad

// Config controls how templates are compiled and documents are assembled.
type Config struct {
	// AutoEscape HTML-escapes every printed expression unless marked safe.
	AutoEscape bool `toml:"autoescape" yaml:"autoescape"`
	// TrimBlocks removes the first newline after a block tag.
	TrimBlocks bool `toml:"trim_blocks" yaml:"trim_blocks"`
	// LeftStripBlocks strips spaces and tabs before a block tag.
	LeftStripBlocks bool `toml:"lstrip_blocks" yaml:"lstrip_blocks"`
	// StrictUndefined makes printing an undefined variable an error.
	StrictUndefined bool `toml:"strict_undefined" yaml:"strict_undefined"`
	// NormalizeTemplate tidies directive whitespace before compiling.
	NormalizeTemplate bool `toml:"normalize" yaml:"normalize"`
	// OpenLinksInNewTab adds target="_blank" and rel="noopener noreferrer"
	// to the anchors of a rendered body.
	OpenLinksInNewTab bool `toml:"links_new_tab" yaml:"links_new_tab"`
}

// DefaultConfig returns the settings of the editor: no autoescape, lenient
// undefined variables, normalized templates and links opening in a new tab.
func DefaultConfig() Config {
	return Config{
		NormalizeTemplate: true,
		OpenLinksInNewTab: true,
	}
}
