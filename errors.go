package twigpad

import "fmt"

// ContextParseError reports a JSON context that could not be decoded.
// The template is never evaluated when it occurs.
type ContextParseError struct {
	Err error
}

func (e *ContextParseError) Error() string { return "invalid JSON context: " + e.Err.Error() }
func (e *ContextParseError) Unwrap() error { return e.Err }

// MissingSymbolError reports a render that still failed after the missing
// symbols were stubbed and the template retried.
type MissingSymbolError struct {
	Missing MissingSymbols
	Err     error
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("render failed after stubbing %s: %v", e.Missing, e.Err)
}

func (e *MissingSymbolError) Unwrap() error { return e.Err }

// EvaluationError is any compile or evaluation failure that was not
// recognised as a missing symbol. Recovered panics are reported with
// Unexpected set.
type EvaluationError struct {
	Err        error
	Unexpected bool
}

func (e *EvaluationError) Error() string { return "template render error: " + e.Err.Error() }
func (e *EvaluationError) Unwrap() error { return e.Err }

// ExtensionScriptError reports an extension script, or one of its entries,
// that could not be applied. The render continues without it.
type ExtensionScriptError struct {
	// Name is the entry that failed, empty when the whole script failed.
	Name string
	Err  error
}

func (e *ExtensionScriptError) Error() string {
	if e.Name == "" {
		return "extension script: " + e.Err.Error()
	}
	return fmt.Sprintf("extension script: %s: %v", e.Name, e.Err)
}

func (e *ExtensionScriptError) Unwrap() error { return e.Err }
