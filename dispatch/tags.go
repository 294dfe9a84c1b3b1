package dispatch

import (
	"sort"
	"strings"
)

// Tags is a set of labels describing a handler's current situation.
// Conditions carry tags too: a (condition, event) pair is only active
// while the condition's tags are a subset of the handler's.
type Tags map[string]struct{}

// NewTags builds a tag set from the given names.
func NewTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Has reports whether name is in the set.
func (t Tags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Add inserts the given names.
func (t Tags) Add(names ...string) {
	for _, n := range names {
		t[n] = struct{}{}
	}
}

// SubsetOf reports whether every tag in t is also in other.
func (t Tags) SubsetOf(other Tags) bool {
	for n := range t {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same tags.
func (t Tags) Equal(other Tags) bool {
	return len(t) == len(other) && t.SubsetOf(other)
}

func (t Tags) String() string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}
