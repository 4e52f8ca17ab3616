package extract

// Rule is one named step of a first-match chain.
type Rule[In any] struct {
	Name  string
	Match func(In) (string, bool)
}

// FirstMatch evaluates rules in order and stops at the first one that matches.
func FirstMatch[In any](in In, rules []Rule[In]) (value, rule string, ok bool) {
	for _, r := range rules {
		if v, ok := r.Match(in); ok {
			return v, r.Name, true
		}
	}
	return "", "", false
}
