package routes

import "sort"

// Orderer decides the visiting order of distinct delivery addresses.
type Orderer interface {
	Order(addresses []string) []string
}

// AlphabeticalOrderer visits addresses in lexicographic order. It does not
// look at distances.
type AlphabeticalOrderer struct{}

func (AlphabeticalOrderer) Order(addresses []string) []string {
	out := append([]string(nil), addresses...)
	sort.Strings(out)
	return out
}
