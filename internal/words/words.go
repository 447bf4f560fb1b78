// internal/words/words.go
//
// Dataset management for the game engine.
//
// Responsibilities:
//   - Load the ordered category list from a configured file or fall back to the
//     embedded default dataset.
//   - Expose read-only accessors (category by index, word counts, totals).
//
// Dataset formats:
//   - JSON: [{"name": "...", "words": ["most associated", "...", "least"]}, ...]
//   - TOML: [[category]] tables with `name` and `words` keys.
//
// Word order is rank order: index 0 is rank 1, the word most associated with the
// category's hidden targets. The dataset is immutable after Load.

package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/robalobadob/contexto/assets"
)

// Category is a named, ordered word list defining one puzzle's ranking universe.
type Category struct {
	Name  string   `json:"name" toml:"name"`
	Words []string `json:"words" toml:"words"`
}

// Dataset is the immutable, ordered collection of categories.
type Dataset struct {
	categories []Category
}

// tomlDataset mirrors the TOML file layout.
type tomlDataset struct {
	Category []Category `toml:"category"`
}

// ErrEmptyDataset is returned when a dataset has no categories at all.
var ErrEmptyDataset = errors.New("words: dataset has no categories")

// Load reads the dataset from path, or the embedded default when path is empty.
// The file extension selects the decoder (.toml, otherwise JSON).
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Parse(assets.Categories())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(raw)
	}
	return Parse(raw)
}

// Parse decodes a JSON dataset.
func Parse(raw []byte) (*Dataset, error) {
	var cats []Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, fmt.Errorf("words: decode json: %w", err)
	}
	return New(cats)
}

// ParseTOML decodes a TOML dataset.
func ParseTOML(raw []byte) (*Dataset, error) {
	var td tomlDataset
	if err := toml.Unmarshal(raw, &td); err != nil {
		return nil, fmt.Errorf("words: decode toml: %w", err)
	}
	return New(td.Category)
}

// New builds a Dataset from categories, trimming surrounding whitespace from words.
// Empty categories are kept: the round controller cascades past them.
func New(cats []Category) (*Dataset, error) {
	if len(cats) == 0 {
		return nil, ErrEmptyDataset
	}
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = Category{
			Name: strings.TrimSpace(c.Name),
			Words: lo.Map(c.Words, func(w string, _ int) string {
				return strings.TrimSpace(w)
			}),
		}
		if out[i].Name == "" {
			out[i].Name = fmt.Sprintf("Categoria %d", i+1)
		}
	}
	return &Dataset{categories: out}, nil
}

// Len returns the number of categories.
func (d *Dataset) Len() int { return len(d.categories) }

// Category returns the category at idx and whether it exists.
func (d *Dataset) Category(idx int) (Category, bool) {
	if idx < 0 || idx >= len(d.categories) {
		return Category{}, false
	}
	return d.categories[idx], true
}

// WordCount returns the number of words in category idx (0 if out of range).
func (d *Dataset) WordCount(idx int) int {
	c, ok := d.Category(idx)
	if !ok {
		return 0
	}
	return len(c.Words)
}

// TotalWords returns the number of words across all categories.
func (d *Dataset) TotalWords() int {
	return lo.SumBy(d.categories, func(c Category) int { return len(c.Words) })
}

// Categories returns a copy of the category list.
func (d *Dataset) Categories() []Category {
	return append([]Category(nil), d.categories...)
}

// Stats returns counts of loaded data: (categories, words).
func (d *Dataset) Stats() (categories int, words int) {
	return d.Len(), d.TotalWords()
}
