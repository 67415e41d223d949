// Package persona implements the text-rewriting personas and the registry
// that resolves them by name or alias.
package persona

import (
	"strings"

	"github.com/apresai/personaswap/internal/embellish"
)

// Example is a sample input with a typical rendering.
type Example struct {
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
}

// Info is the public description of a persona. It never changes after
// startup.
type Info struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Examples    []Example `json:"examples"`
}

// Persona rewrites text in a particular voice. Implementations are stateless
// apart from their injected Selector and are safe for concurrent use when
// that Selector is.
type Persona interface {
	Info() Info
	// Transform returns "" for empty or whitespace-only input.
	Transform(text string) string
}

// TransformValue runs p over v when v is a non-empty string and returns ""
// for anything else (nil, numbers, empty strings).
func TransformValue(p Persona, v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return ""
	}
	return p.Transform(s)
}

func selectorOrGlobal(sel embellish.Selector) embellish.Selector {
	if sel == nil {
		return embellish.Global()
	}
	return sel
}

func copyInfo(in Info) Info {
	out := in
	out.Examples = append([]Example(nil), in.Examples...)
	return out
}
