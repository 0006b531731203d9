// Package karma scores word choices. Picking up a rare leading token earns
// karma, leaving a rare trailing token for the next player costs it, and
// repeatedly ending on the same token decays the gain.
package karma

import (
	"math"

	"github.com/wickedwords/word-chain-bot/frequency"
)

const (
	dropRate     = 0.33
	lastTokenBias = 0.7
	adaptExponent = 0.5
	adaptRise     = 0.025
)

// LeadToken returns the first width runes of a word. Shorter words return as a
// whole.
func LeadToken(word string, width int) string {
	r := []rune(word)
	if len(r) <= width {
		return word
	}
	return string(r[:width])
}

// TrailToken returns the last width runes of a word. Shorter words return as a
// whole.
func TrailToken(word string, width int) string {
	r := []rune(word)
	if len(r) <= width {
		return word
	}
	return string(r[len(r)-width:])
}

// Decay computes a factor in (-1, 2] from an occurrence score of history words
// ending on the same token. A fresh token scores close to 1, a token repeated
// over and over approaches -1.
func Decay(n float64) float64 {
	return 2*math.Exp(-n*dropRate) - 1
}

func adapt(score float64) float64 {
	return math.Pow(score, adaptExponent) + adaptRise
}

// Base computes the karma gain or loss of a word from the frequency scores of
// its leading and trailing tokens, usually a value close to 0.
func Base(word string, width int, scores *frequency.Tables) float64 {
	leadScore := adapt(scores.Score(LeadToken(word, width)))
	trailScore := adapt(scores.Score(TrailToken(word, width)))

	// no loss for a common leading token: the previous word dictated it
	leadKarma := (leadScore - 1) * -1
	if leadKarma < 0 {
		leadKarma = 0
	}
	trailKarma := trailScore - 1

	return leadKarma + trailKarma*lastTokenBias
}

// Calculate computes the total karma change for a word given the player's
// recent words, most recent last. Only positive base karma decays with
// repeated trailing tokens; losses are passed through untouched.
func Calculate(word string, width int, scores *frequency.Tables, history []string) float64 {
	trail := TrailToken(word, width)

	var n float64
	for i, prev := range history {
		if TrailToken(prev, width) == trail {
			n += 2 * float64(len(history)-i) / float64(len(history))
		}
	}

	base := Base(word, width, scores)
	if base > 0 {
		return Decay(n) * base
	}
	return base
}
