package language

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher validates that a token looks like a playable word. The global check
// runs against the transliterated base-Latin form of the word; the
// per-language checks run against the accented form.
type Matcher struct {
	stripAccents transform.Transformer
	replacer     *strings.Replacer
}

func NewMatcher() *Matcher {
	return &Matcher{
		stripAccents: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		// letters that do not decompose to a base-Latin form
		replacer: strings.NewReplacer(
			"ß", "ss",
			"æ", "ae",
			"œ", "oe",
			"ø", "o",
			"ð", "d",
			"þ", "th",
			"đ", "d",
			"ł", "l",
			"ħ", "h",
			"ı", "i",
		),
	}
}

// Transliterate maps an accented word to its base-Latin form.
func (m *Matcher) Transliterate(word string) string {
	word = m.replacer.Replace(word)
	out, _, err := transform.String(m.stripAccents, word)
	if err != nil {
		return word
	}
	return out
}

// IsGameInput reports whether the message content is word-shaped at all:
// every transliterated character is a base-Latin letter or a hyphen. Anything
// else is chatter, not game input.
func (m *Matcher) IsGameInput(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range m.Transliterate(word) {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

// Matches reports whether the word fits the global pattern in its
// transliterated form and at least one of the given languages' patterns in
// its accented form.
func (m *Matcher) Matches(word string, langs []Language) bool {
	if word == "" {
		return false
	}
	if !enPattern.MatchString(m.Transliterate(word)) {
		return false
	}
	for _, l := range langs {
		if p := l.Pattern(); p != nil && p.MatchString(word) {
			return true
		}
	}
	return false
}
