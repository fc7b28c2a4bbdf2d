package resolver

// Score measures how well an input phrase matches a candidate alias using
// token overlap (Sørensen-Dice over word sets). It is pure and symmetric:
// the same pair always yields the same score. 1.0 is an exact token match,
// 0.0 is no overlap.
func Score(input, alias string) float64 {
	a := tokenSet(input)
	b := tokenSet(alias)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b))
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[singularize(tok)] = struct{}{}
	}
	return set
}
