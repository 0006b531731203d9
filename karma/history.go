package karma

// History is a bounded list of a player's recent accepted words, most recent
// last. It is in-memory only; starting empty after a restart merely biases
// short-term scoring.
type History struct {
	limit int
	words []string
}

func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Append records a word, evicting the oldest entries beyond the limit.
func (h *History) Append(word string) {
	h.words = append(h.words, word)
	if len(h.words) > h.limit {
		h.words = h.words[len(h.words)-h.limit:]
	}
}

// Words returns the recorded words, most recent last. The returned slice must
// not be mutated.
func (h *History) Words() []string {
	return h.words
}
