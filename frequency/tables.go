// Package frequency loads the per-language token frequency tables produced by
// the offline corpus analysis. Scores are normalized around 1.0: below 1 the
// token starts fewer words than average, above 1 more.
package frequency

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
)

// DefaultScore is used for every token of a language without a score file.
const DefaultScore = 1.0

// Tables holds the token scores of one language, keyed by token width.
type Tables struct {
	byWidth map[int]map[string]float64
}

// Score returns the normalized frequency score for a token. The token width is
// its rune count. Unknown tokens and widths score DefaultScore.
func (t *Tables) Score(token string) float64 {
	if t == nil {
		return DefaultScore
	}
	scores, ok := t.byWidth[utf8.RuneCountInString(token)]
	if !ok {
		return DefaultScore
	}
	score, ok := scores[token]
	if !ok {
		return DefaultScore
	}
	return score
}

// NewTables builds tables from width-keyed token scores.
func NewTables(byWidth map[int]map[string]float64) *Tables {
	return &Tables{byWidth: byWidth}
}

// Uniform returns a table scoring every token at DefaultScore.
func Uniform() *Tables {
	return &Tables{}
}

// Load reads a score file. The file maps token width (as a string key) to a
// token→score object.
func Load(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading score file: %w", err)
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing score file %s: %w", path, err)
	}

	byWidth := make(map[int]map[string]float64, len(parsed))
	for key, scores := range parsed {
		width, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("error parsing token width %q in %s: %w", key, path, err)
		}
		byWidth[width] = scores
	}
	return &Tables{byWidth: byWidth}, nil
}

// Set lazily loads and caches the score tables of all languages from a
// directory of scores_<code>.json files. A missing or unreadable file degrades
// to a uniform table.
type Set struct {
	dir    string
	logger *logging.Logger

	mu     sync.Mutex
	tables map[language.Language]*Tables
}

func NewSet(dir string, logger *logging.Logger) *Set {
	if logger == nil {
		logger = logging.Default()
	}
	return &Set{
		dir:    dir,
		logger: logger,
		tables: make(map[language.Language]*Tables),
	}
}

// Table returns the score tables for a language, loading them on first use.
func (s *Set) Table(l language.Language) *Tables {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[l]; ok {
		return t
	}

	path := filepath.Join(s.dir, fmt.Sprintf("scores_%s.json", l.Code()))
	t, err := Load(path)
	if err != nil {
		s.logger.Warn("no score table for language, using uniform scores", "language", l.Code(), "error", err.Error())
		t = Uniform()
	}
	s.tables[l] = t
	return t
}
