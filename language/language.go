package language

import (
	"fmt"
	"regexp"
)

// Language is an ISO 639-1 code for a language the game can chain words in.
type Language string

const (
	English        Language = "en"
	French         Language = "fr"
	German         Language = "de"
	Dutch          Language = "nl"
	Luxembourgish  Language = "lb"
	Spanish        Language = "es"
	Portuguese     Language = "pt"
	Italian        Language = "it"
	Catalan        Language = "ca"
	Galician       Language = "gl"
	Danish         Language = "da"
	Norwegian      Language = "no"
	Swedish        Language = "sv"
	Icelandic      Language = "is"
	Faroese        Language = "fo"
	Polish         Language = "pl"
	Czech          Language = "cs"
	Slovak         Language = "sk"
	Slovene        Language = "sl"
	Croatian       Language = "hr"
	Bosnian        Language = "bs"
	Serbian        Language = "sr"
	Hungarian      Language = "hu"
	Romanian       Language = "ro"
	Albanian       Language = "sq"
	Irish          Language = "ga"
	ScottishGaelic Language = "gd"
	Welsh          Language = "cy"
	Breton         Language = "br"
	Basque         Language = "eu"
	Maltese        Language = "mt"
	Turkish        Language = "tr"
)

// buildPattern assembles the shared word shape: a start class, any number of
// middle characters or separators, and an end class. Words shorter than two
// characters never match and are handled by the caller.
func buildPattern(start, middle, end string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^(%s)(%s)*(%s)$`, start, middle, end))
}

var (
	enPattern = buildPattern(`[a-z]`, `[-]|[a-z]`, `[a-z]`)
	frPattern = buildPattern(`[a-zàâæçéèêëîïôœùûüÿ]`, `[-]|[a-zàâæçéèêëîïôœùûüÿ]`, `[a-zàâæçéèêëîïôœùûüÿ]`)
	dePattern = buildPattern(`[a-zäöü]`, `[-]|[a-zäöüß]`, `[a-zäöüß]`)
	nlPattern = buildPattern(`[a-zéèëç]`, `[-]|[a-zéèëç]`, `[a-zéèëç]`)
	esPattern = buildPattern(`[a-záéíóúüñ]`, `[-]|[a-záéíóúüñ]`, `[a-záéíóúüñ]`)
	ptPattern = buildPattern(`[a-záâãàçéêíóôõú]`, `[-]|[a-záâãàçéêíóôõú]`, `[a-záâãàçéêíóôõú]`)
	itPattern = buildPattern(`[a-zàèéìíîòóùú]`, `[-]|[a-zàèéìíîòóùú]`, `[a-zàèéìíîòóùú]`)
	// north germanic (danish, norwegian)
	nnPattern = buildPattern(`[a-zæøå]`, `[-]|[a-zæøå]`, `[a-zæøå]`)
	svPattern = buildPattern(`[a-zåäö]`, `[a-zåäö]`, `[a-zåäö]`)
	// icelandic and faroese
	isPattern = buildPattern(`[a-záéíóúýþæö]`, `[-]|[a-záéíóúýþæöð]`, `[a-záéíóúýþæöð]`)
	plPattern = buildPattern(`[a-ząćęłńóśźż]`, `[-]|[a-ząćęłńóśźż]`, `[a-ząćęłńóśźż]`)
	// czech and slovak
	csPattern = buildPattern(`[a-záčďéěíňóřšťůýž]`, `[-]|[a-záčďéěíňóřšťůýž]`, `[a-záčďéěíňóřšťůýž]`)
	// south slavic (slovene, croatian, bosnian, serbian)
	ssPattern = buildPattern(`[a-zčćđšž]`, `[-]|[a-zčćđšž]`, `[a-zčćđšž]`)
	huPattern = buildPattern(`[a-záéíóöőúüű]`, `[-]|[a-záéíóöőúüű]`, `[a-záéíóöőúüű]`)
	roPattern = buildPattern(`[a-zăâîșț]`, `[-]|[a-zăâîșț]`, `[a-zăâîșț]`)
	sqPattern = buildPattern(`[a-zëç]`, `[-]|[a-zëç]`, `[a-zëç]`)
	gaPattern = buildPattern(`[a-záéíóú]`, `[-]|[a-záéíóú]`, `[a-záéíóú]`)
	gdPattern = buildPattern(`[a-zàèìòù]`, `[-]|[a-zàèìòù]`, `[a-zàèìòù]`)
	cyPattern = buildPattern(`[a-zâêîôûŷ]`, `[-]|[a-zâêîôûŷ]`, `[a-zâêîôûŷ]`)
	mtPattern = buildPattern(`[a-zċġħż]`, `[-]|[a-zċġħż]`, `[a-zċġħż]`)
	trPattern = buildPattern(`[a-zçğıöşü]`, `[-]|[a-zçğıöşü]`, `[a-zçğıöşü]`)
)

var patterns = map[Language]*regexp.Regexp{
	English:        enPattern,
	French:         frPattern,
	German:         dePattern,
	Dutch:          nlPattern,
	Luxembourgish:  dePattern,
	Spanish:        esPattern,
	Portuguese:     ptPattern,
	Italian:        itPattern,
	Catalan:        frPattern,
	Galician:       frPattern,
	Danish:         nnPattern,
	Norwegian:      nnPattern,
	Swedish:        svPattern,
	Icelandic:      isPattern,
	Faroese:        isPattern,
	Polish:         plPattern,
	Czech:          csPattern,
	Slovak:         csPattern,
	Slovene:        ssPattern,
	Croatian:       ssPattern,
	Bosnian:        ssPattern,
	Serbian:        ssPattern,
	Hungarian:      huPattern,
	Romanian:       roPattern,
	Albanian:       sqPattern,
	Irish:          gaPattern,
	ScottishGaelic: gdPattern,
	Welsh:          cyPattern,
	Breton:         frPattern,
	Basque:         esPattern,
	Maltese:        mtPattern,
	Turkish:        trPattern,
}

// Code returns the ISO 639-1 code.
func (l Language) Code() string {
	return string(l)
}

// Pattern returns the allowed-word pattern for the language.
func (l Language) Pattern() *regexp.Regexp {
	return patterns[l]
}

// Valid reports whether the language is one the game supports.
func (l Language) Valid() bool {
	_, ok := patterns[l]
	return ok
}

// FromCode resolves a language from its ISO 639-1 code.
func FromCode(code string) (Language, error) {
	l := Language(code)
	if !l.Valid() {
		return "", fmt.Errorf("no language found for code %q", code)
	}
	return l, nil
}

// All returns every supported language.
func All() []Language {
	langs := make([]Language, 0, len(patterns))
	for l := range patterns {
		langs = append(langs, l)
	}
	return langs
}
