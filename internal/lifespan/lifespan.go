// Package lifespan holds the species life stage table loaded at startup.
package lifespan

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxChoices is the number of suggestions Discord accepts in an autocomplete response.
const MaxChoices = 25

var ErrUnknownSpecies = errors.New("unknown species")

// Stage is a named life stage starting at a minimum age in weeks.
type Stage struct {
	Title  string `json:"title"`
	MinAge int    `json:"minAge"`
}

// Entry is the life stage breakdown of one species.
type Entry struct {
	Species    string  `json:"species"`
	LifeStages []Stage `json:"lifeStages"`
}

// Table is the read-only list of known species.
type Table struct {
	entries []Entry
}

// Load reads the table from a JSON file. Stages are sorted by minimum age.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lifespans: %w", err)
	}
	return Parse(data)
}

// Parse decodes a table from its JSON representation.
func Parse(data []byte) (*Table, error) {
	var entries []Entry
	if err := sonic.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode lifespans: %w", err)
	}
	return New(entries), nil
}

// New builds a table from the given entries.
func New(entries []Entry) *Table {
	table := &Table{entries: make([]Entry, 0, len(entries))}
	for _, entry := range entries {
		stages := slices.Clone(entry.LifeStages)
		slices.SortStableFunc(stages, func(a, b Stage) int { return a.MinAge - b.MinAge })
		table.entries = append(table.entries, Entry{Species: entry.Species, LifeStages: stages})
	}
	return table
}

// Len returns the number of species in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Find returns the entry of a species, ignoring case.
func (t *Table) Find(species string) (Entry, error) {
	for _, entry := range t.entries {
		if strings.EqualFold(entry.Species, strings.TrimSpace(species)) {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSpecies, species)
}

// Search returns the species whose name contains query, ignoring case,
// capped at MaxChoices results in table order.
func (t *Table) Search(query string) []Entry {
	query = strings.ToLower(query)
	matches := []Entry{}
	for _, entry := range t.entries {
		if strings.Contains(strings.ToLower(entry.Species), query) {
			matches = append(matches, entry)
			if len(matches) == MaxChoices {
				break
			}
		}
	}
	return matches
}

// DisplayName returns the species name in title case.
func DisplayName(species string) string {
	return cases.Title(language.English).String(species)
}
