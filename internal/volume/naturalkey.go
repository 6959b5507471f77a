package volume

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numberPattern matches integers and decimals such as "9" or "9.5".
// Only ASCII digits count; signs, exponents and other scripts' digits are
// treated as text.
var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Token is one element of a SortKey: either lower-cased text or a number.
type Token struct {
	Text    string
	Number  float64
	Numeric bool
}

// SortKey is the natural-order comparison key of a filename.
type SortKey []Token

// NaturalKey splits name into alternating text and number tokens so that
// embedded numbers compare by value: "Chap 9" < "Chap 9.5" < "Chap 10".
// Text is case-folded. Empty pieces are dropped.
func NaturalKey(name string) SortKey {
	var key SortKey
	last := 0
	for _, loc := range numberPattern.FindAllStringIndex(name, -1) {
		if loc[0] > last {
			key = append(key, textToken(name[last:loc[0]]))
		}
		key = append(key, numberToken(name[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(name) {
		key = append(key, textToken(name[last:]))
	}
	return key
}

func textToken(s string) Token {
	return Token{Text: strings.ToLower(s)}
}

func numberToken(s string) Token {
	// The pattern guarantees a parseable value; "10." parses as 10.
	// Digit runs too long for a float64 keep the +Inf ParseFloat returns.
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return textToken(s)
	}
	return Token{Number: n, Numeric: true}
}

// Compare returns -1, 0 or +1 comparing two tokens.
// Numbers sort before text when the kinds differ.
func (t Token) Compare(o Token) int {
	switch {
	case t.Numeric && o.Numeric:
		switch {
		case t.Number < o.Number:
			return -1
		case t.Number > o.Number:
			return 1
		}
		return 0
	case t.Numeric:
		return -1
	case o.Numeric:
		return 1
	default:
		return strings.Compare(t.Text, o.Text)
	}
}

// Compare returns -1, 0 or +1 comparing two keys token by token.
// A key that is a prefix of the other sorts first.
func (k SortKey) Compare(o SortKey) int {
	for i := 0; i < len(k) && i < len(o); i++ {
		if c := k[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(o):
		return -1
	case len(k) > len(o):
		return 1
	}
	return 0
}

// SortNames sorts filenames in natural order. The sort is stable.
func SortNames(names []string, order Order) {
	keys := make([]SortKey, len(names))
	for i, n := range names {
		keys[i] = NaturalKey(n)
	}
	idx := stableOrder(keys, order)
	sorted := make([]string, len(names))
	for i, j := range idx {
		sorted[i] = names[j]
	}
	copy(names, sorted)
}

// SortEntries sorts entries by the natural key of their base names.
func SortEntries(entries []*FileEntry, order Order) {
	keys := make([]SortKey, len(entries))
	for i, e := range entries {
		keys[i] = NaturalKey(e.Name())
	}
	idx := stableOrder(keys, order)
	sorted := make([]*FileEntry, len(entries))
	for i, j := range idx {
		sorted[i] = entries[j]
	}
	copy(entries, sorted)
}

// stableOrder returns the permutation that sorts keys. Descending order is a
// stable sort with the comparison reversed, so equal keys keep their input
// order in both directions.
func stableOrder(keys []SortKey, order Order) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := keys[idx[a]].Compare(keys[idx[b]])
		if order == OrderDesc {
			return c > 0
		}
		return c < 0
	})
	return idx
}
