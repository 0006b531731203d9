package game

import (
	"context"
	"unicode/utf8"
)

// Verdict is what the word validity gate can decide without network I/O.
type Verdict int

const (
	// VerdictUnknown means no list or cache knows the word; only an external
	// lookup can decide.
	VerdictUnknown Verdict = iota
	// VerdictWhitelisted short-circuits every other check.
	VerdictWhitelisted
	// VerdictBlacklisted rejects the word outright.
	VerdictBlacklisted
	// VerdictCacheHit means the word was confirmed valid before.
	VerdictCacheHit
)

// globalTwoLetterBlacklist bans two-letter inputs that make the chain
// degenerate into loops, regardless of server lists.
var globalTwoLetterBlacklist = wordSet(
	"aa", "ee", "ii", "oo", "uu",
	"xx", "yy", "zz",
	"qi", "xi", "xu", "za",
	"ab", "ba", "ca", "da", "ea",
)

// globalNLetterBlacklist bans longer inputs that slipped into external
// dictionaries but are not playable words.
var globalNLetterBlacklist = wordSet(
	"aaa", "zzz", "xxx",
	"asdf", "qwerty", "asdfgh",
	"aaaa", "abab", "abcd",
	"lmao", "lmfao", "idk", "smh",
)

// globalThreeLetterWhitelist is the closed set of allowed three-letter words.
// A three-letter word absent from this set is treated as blacklisted.
var globalThreeLetterWhitelist = wordSet(
	"ace", "act", "add", "age", "ago", "aid", "aim", "air", "all", "and",
	"ant", "any", "ape", "apt", "arc", "are", "arm", "art", "ash", "ask",
	"ate", "awe", "axe", "bad", "bag", "ban", "bar", "bat", "bay", "bed",
	"bee", "beg", "bet", "bid", "big", "bin", "bit", "boa", "bog", "bow",
	"box", "boy", "bud", "bug", "bun", "bus", "but", "buy", "cab", "can",
	"cap", "car", "cat", "cow", "cry", "cub", "cue", "cup", "cut", "dam",
	"day", "den", "dew", "did", "die", "dig", "dim", "dip", "dog", "dot",
	"dry", "dub", "due", "dug", "dye", "ear", "eat", "ebb", "eel", "egg",
	"ego", "elf", "elk", "elm", "emu", "end", "era", "erg", "eve", "ewe",
	"eye", "fan", "far", "fat", "fax", "fee", "few", "fig", "fin", "fir",
	"fit", "fix", "flu", "fly", "foe", "fog", "for", "fox", "fry", "fun",
	"fur", "gap", "gas", "gel", "gem", "get", "gig", "gin", "got", "gum",
	"gun", "gut", "guy", "gym", "had", "ham", "has", "hat", "hay", "hen",
	"her", "hew", "hex", "hid", "him", "hip", "his", "hit", "hoe", "hog",
	"hop", "hot", "how", "hub", "hue", "hug", "hum", "hut", "ice", "icy",
	"ill", "imp", "ink", "inn", "ion", "ire", "irk", "its", "ivy", "jab",
	"jam", "jar", "jaw", "jay", "jet", "jig", "job", "jog", "jot", "joy",
	"jug", "keg", "key", "kid", "kin", "kit", "lab", "lag", "lap", "law",
	"lay", "leg", "let", "lid", "lie", "lip", "lit", "log", "lot", "low",
	"mad", "man", "map", "mat", "may", "men", "mix", "mob", "mop", "mud",
	"mug", "nag", "nap", "net", "new", "nil", "nod", "not", "now", "nun",
	"nut", "oak", "oar", "oat", "odd", "ode", "off", "oil", "old", "one",
	"orb", "ore", "our", "out", "owe", "owl", "own", "pad", "pan", "paw",
	"pay", "pea", "peg", "pen", "pet", "pie", "pig", "pin", "pit", "ply",
	"pod", "pot", "pry", "pub", "pug", "pun", "pup", "put", "rag", "ram",
	"ran", "rat", "raw", "ray", "red", "rib", "rid", "rig", "rim", "rip",
	"rob", "rod", "roe", "rot", "row", "rub", "rug", "rum", "run", "rut",
	"rye", "sad", "sag", "sap", "saw", "say", "sea", "see", "set", "sew",
	"she", "shy", "sin", "sip", "sir", "sit", "six", "ski", "sky", "sly",
	"sob", "son", "sow", "soy", "spa", "spy", "sub", "sue", "sum", "sun",
	"tab", "tag", "tan", "tap", "tar", "tax", "tea", "ten", "the", "tie",
	"tin", "tip", "toe", "ton", "top", "tow", "toy", "try", "tub", "tug",
	"two", "urn", "use", "van", "vat", "vet", "vex", "vie", "vow", "wag",
	"war", "was", "wax", "way", "web", "wed", "wet", "who", "why", "wig",
	"win", "wit", "woe", "wok", "won", "woo", "wry", "yak", "yam", "yan",
	"yap", "yes", "yet", "yew", "you", "zap", "zip", "zoo",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// globallyBlacklisted applies the lists shared by every server: the
// two-letter blacklist, the N-letter blacklist, and the rule that a
// three-letter word must be on the global whitelist.
func globallyBlacklisted(word string) bool {
	if _, ok := globalTwoLetterBlacklist[word]; ok {
		return true
	}
	if _, ok := globalNLetterBlacklist[word]; ok {
		return true
	}
	if utf8.RuneCountInString(word) == 3 {
		if _, ok := globalThreeLetterWhitelist[word]; !ok {
			return true
		}
	}
	return false
}

// checkWord decides word validity without network I/O. The per-server
// whitelist dominates every blacklist; the cache only answers for the
// server's enabled languages.
func checkWord(ctx context.Context, tx Tx, serverID int64, word string, languages []string) (Verdict, error) {
	whitelisted, err := tx.IsWordWhitelisted(ctx, serverID, word)
	if err != nil {
		return VerdictUnknown, err
	}
	if whitelisted {
		return VerdictWhitelisted, nil
	}

	if globallyBlacklisted(word) {
		return VerdictBlacklisted, nil
	}
	blacklisted, err := tx.IsWordBlacklisted(ctx, serverID, word)
	if err != nil {
		return VerdictUnknown, err
	}
	if blacklisted {
		return VerdictBlacklisted, nil
	}

	cached, err := tx.IsWordCached(ctx, word, languages)
	if err != nil {
		return VerdictUnknown, err
	}
	if cached {
		return VerdictCacheHit, nil
	}
	return VerdictUnknown, nil
}
