package resolver

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	punctRe      = regexp.MustCompile(`[^\w\s\-']`)
	spaceRe      = regexp.MustCompile(`\s+`)
	correctionRe = regexp.MustCompile(`\b(actually|instead|change|make that|switch)\b`)
)

// fillerWords are dropped before matching. They carry intent, not item
// identity.
var fillerWords = map[string]struct{}{
	"i": {}, "i'd": {}, "i'll": {}, "id": {}, "ill": {},
	"like": {}, "want": {}, "need": {}, "get": {}, "have": {},
	"please": {}, "the": {}, "some": {}, "of": {}, "me": {},
	"to": {}, "can": {}, "could": {}, "may": {},
	// "remove all X" reads the same as "remove X": no explicit count
	// means the whole line goes.
	"all": {},
}

// quantityWords maps spoken counts to integers. "a" and "an" read as one,
// "dozen" as twelve.
var quantityWords = map[string]int{
	"one": 1, "a": 1, "an": 1, "single": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "dozen": 12,
}

// Normalize lowercases the text, strips punctuation except hyphens and
// apostrophes, removes correction phrases, and collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = correctionRe.ReplaceAllString(text, " ")
	text = punctRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Tokenize splits normalized text into words.
func Tokenize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

// ExtractQuantity pulls the leading count out of a normalized phrase and
// returns the remaining tokens. A phrase with no count reads as quantity 1.
func ExtractQuantity(tokens []string) (int, []string) {
	for i, tok := range tokens {
		if n, ok := quantityWords[tok]; ok {
			// "a dozen" reads as twelve, not one.
			if (tok == "a" || tok == "an") && i+1 < len(tokens) {
				if _, next := quantityWords[tokens[i+1]]; next {
					continue
				}
			}
			return n, removeToken(tokens, i)
		}
		if n, err := strconv.Atoi(tok); err == nil && n > 0 {
			return n, removeToken(tokens, i)
		}
	}
	return 1, tokens
}

// stripFiller drops polite phrasing so "i'd like a coffee please" and
// "coffee" match the same alias.
func stripFiller(tokens []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if _, skip := fillerWords[tok]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// singularize trims a plural "s" so "coffees" can still hit the "coffee"
// alias. Words ending in "ss" (like "glass") are left alone.
func singularize(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

func removeToken(tokens []string, i int) []string {
	out := make([]string, 0, len(tokens)-1)
	out = append(out, tokens[:i]...)
	return append(out, tokens[i+1:]...)
}

// containsPhrase reports whether phrase appears in text on word boundaries.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || text[start-1] == ' '
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}
