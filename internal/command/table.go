// Package command maps recognized text onto actions.
//
// Matching is deliberately simple: an exact phrase wins, otherwise the first
// entry (in declaration order) whose phrase occurs anywhere in the text, and
// optionally a phonetic comparison as a last resort.
package command

import (
	"context"
	"fmt"
	"strings"
)

// Action performs a matched command. text is the normalized utterance.
type Action func(ctx context.Context, text string) error

// Entry binds a trigger phrase to an action.
type Entry struct {
	Phrase string
	Name   string // action name, shared by synonyms
	Action Action
}

// Table is an ordered, immutable list of entries.
type Table struct {
	entries  []Entry
	phonetic *phoneticMatcher
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithPhonetic enables the phonetic fallback with the given Jaro-Winkler
// threshold in (0, 1].
func WithPhonetic(threshold float64) TableOption {
	return func(t *Table) { t.phonetic = newPhoneticMatcher(threshold) }
}

// NewTable normalizes phrases and rejects empty or duplicate ones.
func NewTable(entries []Entry, opts ...TableOption) (*Table, error) {
	t := &Table{entries: make([]Entry, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		e.Phrase = normalize(e.Phrase)
		if e.Phrase == "" {
			return nil, fmt.Errorf("command %q has an empty phrase", e.Name)
		}
		if seen[e.Phrase] {
			return nil, fmt.Errorf("duplicate command phrase %q", e.Phrase)
		}
		if e.Action == nil {
			return nil, fmt.Errorf("command %q has no action", e.Phrase)
		}
		seen[e.Phrase] = true
		t.entries = append(t.entries, e)
	}
	for _, o := range opts {
		o(t)
	}
	if t.phonetic != nil {
		t.phonetic.index(t.entries)
	}
	return t, nil
}

// Match resolves text to at most one entry.
func (t *Table) Match(text string) (Entry, bool) {
	text = normalize(text)
	if text == "" {
		return Entry{}, false
	}
	for _, e := range t.entries {
		if e.Phrase == text {
			return e, true
		}
	}
	for _, e := range t.entries {
		if strings.Contains(text, e.Phrase) {
			return e, true
		}
	}
	if t.phonetic != nil {
		if i, ok := t.phonetic.match(text); ok {
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// Process matches text and runs the entry's action. It reports whether a
// command matched; the error comes from the action.
func (t *Table) Process(ctx context.Context, text string) (Entry, bool, error) {
	e, ok := t.Match(text)
	if !ok {
		return Entry{}, false, nil
	}
	return e, true, e.Action(ctx, normalize(text))
}

// Phrases lists trigger phrases in declaration order.
func (t *Table) Phrases() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Phrase
	}
	return out
}

// Entries returns a copy of the table.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
