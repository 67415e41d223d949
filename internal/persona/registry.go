package persona

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/apresai/personaswap/internal/embellish"
)

// ErrNotFound matches every NotFoundError.
var ErrNotFound = errors.New("persona not found")

// NotFoundError reports a lookup key that resolves to no persona.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Persona %q not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Entry binds a persona to its canonical key and aliases.
type Entry struct {
	Key     string
	Aliases []string
	Persona Persona
}

// Registry resolves names and aliases to personas. It is read-only after
// construction.
type Registry struct {
	entries []Entry
	byAlias map[string]Persona
}

// NewRegistry builds a registry from entries. Keys and aliases are
// normalized; a duplicate alias is a programming error and panics.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byAlias: make(map[string]Persona),
	}
	for _, e := range entries {
		for _, a := range append([]string{e.Key}, e.Aliases...) {
			n := Normalize(a)
			if _, dup := r.byAlias[n]; dup {
				panic(fmt.Sprintf("persona: duplicate alias %q", n))
			}
			r.byAlias[n] = e.Persona
		}
		r.entries = append(r.entries, e)
	}
	return r
}

// Default returns the four built-in personas drawing from sel.
func Default(sel embellish.Selector) *Registry {
	return NewRegistry(
		Entry{Key: "shakespeare", Aliases: []string{"bard", "williamshakespeare"}, Persona: NewShakespeare(sel)},
		Entry{Key: "yoda", Aliases: []string{"sage", "masteryoda"}, Persona: NewSage(sel)},
		Entry{Key: "musk", Aliases: []string{"elon", "elonmusk"}, Persona: NewHype(sel)},
		Entry{Key: "sherlock", Aliases: []string{"holmes", "sherlockholmes"}, Persona: NewDetective(sel)},
	)
}

// Normalize lower-cases key and drops whitespace, '-' and '_', so
// "Elon Musk", "elon_musk" and "ElonMusk" all read "elonmusk".
func Normalize(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(key))
}

// Resolve returns the persona for key or a *NotFoundError.
func (r *Registry) Resolve(key string) (Persona, error) {
	if p, ok := r.byAlias[Normalize(key)]; ok {
		return p, nil
	}
	return nil, &NotFoundError{Key: key}
}

// List returns persona metadata in registration order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Persona.Info())
	}
	return out
}

// Aliases maps each canonical key to its sorted aliases.
func (r *Registry) Aliases() map[string][]string {
	out := make(map[string][]string, len(r.entries))
	for _, e := range r.entries {
		aliases := append([]string(nil), e.Aliases...)
		sort.Strings(aliases)
		out[e.Key] = aliases
	}
	return out
}

// Keys returns the canonical keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Key)
	}
	return out
}
