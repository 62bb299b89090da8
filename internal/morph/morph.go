// Package morph derives inflected English word forms from base forms.
//
// Every function is deterministic: irregular words are looked up in static
// exception tables and everything else follows the regular suffix rules.
// Multi-word nouns inflect their last word; multi-word verbs inflect their
// first word ("run away" -> "runs away").
package morph

import (
	"strings"
)

// =============================================================================
// EXCEPTION TABLES
// =============================================================================

var irregularPlurals = map[string]string{
	"person":     "people",
	"man":        "men",
	"woman":      "women",
	"child":      "children",
	"mouse":      "mice",
	"goose":      "geese",
	"foot":       "feet",
	"tooth":      "teeth",
	"ox":         "oxen",
	"sheep":      "sheep",
	"deer":       "deer",
	"fish":       "fish",
	"moose":      "moose",
	"species":    "species",
	"series":     "series",
	"cactus":     "cacti",
	"fungus":     "fungi",
	"octopus":    "octopi",
	"criterion":  "criteria",
	"phenomenon": "phenomena",
	"die":        "dice",
	"louse":      "lice",
	"leaf":       "leaves",
	"wolf":       "wolves",
	"knife":      "knives",
	"wife":       "wives",
	"life":       "lives",
	"elf":        "elves",
	"dwarf":      "dwarves",
	"half":       "halves",
	"shelf":      "shelves",
	"thief":      "thieves",
	"hero":       "heroes",
	"potato":     "potatoes",
	"tomato":     "tomatoes",
	"echo":       "echoes",
	"quiz":       "quizzes",
	"bus":        "buses",
	"gas":        "gases",
	"plus":       "pluses",
	"lens":       "lenses",
	"bias":       "biases",
	"atlas":      "atlases",
	"canvas":     "canvases",
	"bonus":      "bonuses",
	"campus":     "campuses",
	"circus":     "circuses",
	"virus":      "viruses",
	"status":     "statuses",
}

// Stems ending in a sibilant and a silent e. Their -s forms look like a
// sibilant stem plus -es.
var silentESibilants = []string{"ache", "cache", "niche", "psyche", "avalanche", "moustache", "mustache"}

var irregularSingulars = invert(irregularPlurals)

// Verbs whose third person or gerund is not derivable by the regular rules.
var irregularThirdPerson = map[string]string{
	"be":   "is",
	"have": "has",
	"do":   "does",
	"go":   "goes",
}

var irregularGerunds = map[string]string{
	"be":       "being",
	"see":      "seeing",
	"flee":     "fleeing",
	"agree":    "agreeing",
	"die":      "dying",
	"lie":      "lying",
	"tie":      "tying",
	"vie":      "vying",
	"dye":      "dyeing",
	"hoe":      "hoeing",
	"toe":      "toeing",
	"canoe":    "canoeing",
	"age":      "ageing",
	"singe":    "singeing",
	"visit":    "visiting",
	"open":     "opening",
	"listen":   "listening",
	"happen":   "happening",
	"offer":    "offering",
	"enter":    "entering",
	"bother":   "bothering",
	"gather":   "gathering",
	"wonder":   "wondering",
	"answer":   "answering",
	"remember": "remembering",
	"travel":   "traveling",
	"cancel":   "canceling",
	"limit":    "limiting",
	"edit":     "editing",
	"credit":   "crediting",
	"exit":     "exiting",
	"orbit":    "orbiting",
	"inhabit":  "inhabiting",
	"prohibit": "prohibiting",
	"benefit":  "benefiting",
	"fix":      "fixing",
	"mix":      "mixing",
	"box":      "boxing",
	"follow":   "following",
	"show":     "showing",
	"know":     "knowing",
	"play":     "playing",
	"enjoy":    "enjoying",
}

// Gerunds whose base cannot be recovered by stripping -ing.
var irregularGerundBases = func() map[string]string {
	m := invert(irregularGerunds)
	// Ambiguous regular-looking cases.
	m["loving"] = "love"
	m["hating"] = "hate"
	m["liking"] = "like"
	m["making"] = "make"
	m["taking"] = "take"
	m["having"] = "have"
	m["giving"] = "give"
	m["living"] = "live"
	m["serving"] = "serve"
	m["chasing"] = "chase"
	m["owning"] = "own"
	m["using"] = "use"
	m["riding"] = "ride"
	m["hiding"] = "hide"
	m["writing"] = "write"
	m["trading"] = "trade"
	m["leaving"] = "leave"
	m["fearing"] = "fear"
	m["eating"] = "eat"
	m["meeting"] = "meet"
	m["needing"] = "need"
	m["feeding"] = "feed"
	m["seeing"] = "see"
	m["hunting"] = "hunt"
	m["admiring"] = "admire"
	m["despising"] = "despise"
	m["marrying"] = "marry"
	m["dating"] = "date"
	m["guarding"] = "guard"
	m["helping"] = "help"
	m["rescuing"] = "rescue"
	m["employing"] = "employ"
	m["caring"] = "care"
	return m
}()

var vowelSoundExceptions = map[string]string{
	"hour":       "an",
	"honest":     "an",
	"honor":      "an",
	"heir":       "an",
	"unicorn":    "a",
	"university": "a",
	"unique":     "a",
	"user":       "a",
	"one":        "a",
	"european":   "a",
	"uniform":    "a",
	"useful":     "a",
	"usual":      "a",
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// =============================================================================
// NOUNS
// =============================================================================

// Plural returns the plural of a singular noun phrase, inflecting the last word.
func Plural(words []string) []string {
	return mapLast(words, pluralWord)
}

// Singular returns the singular of a plural noun phrase, inflecting the last word.
func Singular(words []string) []string {
	return mapLast(words, singularWord)
}

func pluralWord(w string) string {
	lw := strings.ToLower(w)
	if p, ok := irregularPlurals[lw]; ok {
		return matchCase(w, p)
	}
	switch {
	case hasAnySuffix(lw, "s", "x", "z", "ch", "sh"):
		return w + "es"
	case strings.HasSuffix(lw, "y") && len(lw) > 1 && !isVowel(lw[len(lw)-2]):
		return w[:len(w)-1] + "ies"
	default:
		return w + "s"
	}
}

func singularWord(w string) string {
	lw := strings.ToLower(w)
	if s, ok := irregularSingulars[lw]; ok {
		return matchCase(w, s)
	}
	switch {
	case strings.HasSuffix(lw, "ies") && len(lw) > 3:
		return w[:len(w)-3] + "y"
	case addedEs(lw):
		return w[:len(w)-2]
	case strings.HasSuffix(lw, "ss"):
		return w
	case strings.HasSuffix(lw, "s") && len(lw) > 1:
		return w[:len(w)-1]
	default:
		return w
	}
}

// LooksPlural reports whether the last word of a noun phrase is plausibly plural.
func LooksPlural(words []string) bool {
	if len(words) == 0 {
		return false
	}
	lw := strings.ToLower(words[len(words)-1])
	if _, ok := irregularSingulars[lw]; ok {
		return true
	}
	if _, ok := irregularPlurals[lw]; ok {
		return false
	}
	return strings.HasSuffix(lw, "s") && !strings.HasSuffix(lw, "ss")
}

// IndefiniteArticle returns "a" or "an" for the word that follows it.
func IndefiniteArticle(next string) string {
	lw := strings.ToLower(next)
	if lw == "" {
		return "a"
	}
	if article, ok := vowelSoundExceptions[lw]; ok {
		return article
	}
	if isVowel(lw[0]) {
		return "an"
	}
	return "a"
}

// =============================================================================
// VERBS
// =============================================================================

// Forms holds every inflection of a verb phrase.
type Forms struct {
	Base        []string // "chase", "be friends with"
	ThirdPerson []string // "chases", "is friends with"
	Plural      []string // "chase", "are friends with"
	Gerund      []string // "chasing", "being friends with"
}

// VerbForms derives every form from a base verb phrase.
func VerbForms(base []string) Forms {
	f := Forms{Base: clone(base)}
	if len(base) > 0 && isCopula(base[0]) {
		f.ThirdPerson = ReplaceCopula(base, "is")
		f.Plural = ReplaceCopula(base, "are")
		f.Gerund = ReplaceCopula(base, "being")
		return f
	}
	f.ThirdPerson = mapFirst(base, ThirdPerson)
	f.Plural = clone(base)
	f.Gerund = mapFirst(base, Gerund)
	return f
}

// ReplaceCopula swaps a leading form of "to be" for the given copula form.
// Phrases that do not start with a copula are returned unchanged.
func ReplaceCopula(words []string, copula string) []string {
	out := clone(words)
	if len(out) > 0 && isCopula(out[0]) {
		out[0] = copula
	}
	return out
}

func isCopula(w string) bool {
	switch strings.ToLower(w) {
	case "be", "is", "are", "being":
		return true
	}
	return false
}

// ThirdPerson returns the third-person singular present of a base verb.
func ThirdPerson(base string) string {
	lb := strings.ToLower(base)
	if v, ok := irregularThirdPerson[lb]; ok {
		return v
	}
	switch {
	case hasAnySuffix(lb, "s", "x", "z", "ch", "sh", "o"):
		return base + "es"
	case strings.HasSuffix(lb, "y") && len(lb) > 1 && !isVowel(lb[len(lb)-2]):
		return base[:len(base)-1] + "ies"
	default:
		return base + "s"
	}
}

// BaseFromThirdPerson inverts ThirdPerson.
func BaseFromThirdPerson(word string) string {
	lw := strings.ToLower(word)
	for base, third := range irregularThirdPerson {
		if third == lw {
			return base
		}
	}
	switch {
	case strings.HasSuffix(lw, "ies") && len(lw) > 3:
		return word[:len(word)-3] + "y"
	case addedEs(lw), strings.HasSuffix(lw, "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lw, "s") && !strings.HasSuffix(lw, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

// Gerund returns the -ing form of a base verb.
func Gerund(base string) string {
	lb := strings.ToLower(base)
	if g, ok := irregularGerunds[lb]; ok {
		return g
	}
	switch {
	case strings.HasSuffix(lb, "ie"):
		return base[:len(base)-2] + "ying"
	case strings.HasSuffix(lb, "ee"), strings.HasSuffix(lb, "ye"), strings.HasSuffix(lb, "oe"):
		return base + "ing"
	case strings.HasSuffix(lb, "e") && len(lb) > 2:
		return base[:len(base)-1] + "ing"
	case doublesFinalConsonant(lb):
		return base + base[len(base)-1:] + "ing"
	default:
		return base + "ing"
	}
}

// BaseFromGerund inverts Gerund. Ambiguous cases come from the exception table;
// otherwise doubled consonants are undone and the -ing is stripped.
func BaseFromGerund(word string) string {
	lw := strings.ToLower(word)
	if b, ok := irregularGerundBases[lw]; ok {
		return b
	}
	if !strings.HasSuffix(lw, "ing") || len(lw) <= 4 {
		return word
	}
	stem := word[:len(word)-3]
	ls := strings.ToLower(stem)
	switch {
	case strings.HasSuffix(ls, "y") && len(ls) > 1 && !isVowel(ls[len(ls)-2]) && len(ls) <= 3:
		return stem[:len(stem)-1] + "ie"
	case len(ls) >= 2 && ls[len(ls)-1] == ls[len(ls)-2] && !isVowel(ls[len(ls)-1]) && !hasAnySuffix(ls, "ll", "ss", "ff", "zz"):
		return stem[:len(stem)-1]
	default:
		return stem
	}
}

// IsGerund reports whether the head of a phrase looks like an -ing form.
func IsGerund(words []string) bool {
	return len(words) > 0 && strings.HasSuffix(strings.ToLower(words[0]), "ing")
}

// BaseFromGerundPhrase inverts the head of a gerund phrase, handling "being".
func BaseFromGerundPhrase(words []string) []string {
	if len(words) > 0 && strings.EqualFold(words[0], "being") {
		return ReplaceCopula(words, "be")
	}
	return mapFirst(words, BaseFromGerund)
}

// BaseFromThirdPersonPhrase inverts the head of a third-person phrase.
func BaseFromThirdPersonPhrase(words []string) []string {
	if len(words) > 0 && strings.EqualFold(words[0], "is") {
		return ReplaceCopula(words, "be")
	}
	return mapFirst(words, BaseFromThirdPerson)
}

// doublesFinalConsonant applies the consonant-vowel-consonant rule for short
// verbs ("run" -> "running", "stop" -> "stopping").
func doublesFinalConsonant(w string) bool {
	n := len(w)
	if n < 3 || n > 4 {
		return false
	}
	last := w[n-1]
	if isVowel(last) || last == 'w' || last == 'x' || last == 'y' {
		return false
	}
	return isVowel(w[n-2]) && !isVowel(w[n-3])
}

// =============================================================================
// HELPERS
// =============================================================================

// addedEs reports whether a word's -es ending was added to a sibilant stem
// ("watches", "boxes", "buzzes") rather than being a silent e plus -s
// ("freezes", "aches").
func addedEs(lw string) bool {
	for _, stem := range silentESibilants {
		if strings.HasSuffix(lw, stem+"s") {
			return false
		}
	}
	return hasAnySuffix(lw, "sses", "xes", "zzes", "ches", "shes")
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func matchCase(original, replacement string) string {
	if original != "" && original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}

func clone(words []string) []string {
	out := make([]string, len(words))
	copy(out, words)
	return out
}

func mapLast(words []string, f func(string) string) []string {
	out := clone(words)
	if len(out) > 0 {
		out[len(out)-1] = f(out[len(out)-1])
	}
	return out
}

func mapFirst(words []string, f func(string) string) []string {
	out := clone(words)
	if len(out) > 0 {
		out[0] = f(out[0])
	}
	return out
}
