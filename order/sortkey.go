package order

import (
	"fmt"
	"strings"
)

// SortKey is one ordering term of a group: a property name and the
// direction in which records of the group are ordered by it.
type SortKey struct {
	Key   string `json:"key"`
	Order Which  `json:"order"`
}

func NewSortKey(o Which, key string) SortKey {
	return SortKey{Key: key, Order: o}
}

// ParseSortKey parses "name", "name asc", "name desc", "+name" or "-name".
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortKey{}, fmt.Errorf("empty sort key")
	}
	switch s[0] {
	case '+':
		return parseKeyName(s[1:], Asc)
	case '-':
		return parseKeyName(s[1:], Desc)
	}
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return SortKey{Key: fields[0], Order: Asc}, nil
	case 2:
		which, err := Parse(fields[1])
		if err != nil {
			return SortKey{}, err
		}
		return SortKey{Key: fields[0], Order: which}, nil
	}
	return SortKey{}, fmt.Errorf("malformed sort key: %q", s)
}

func parseKeyName(s string, which Which) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t") {
		return SortKey{}, fmt.Errorf("malformed sort key name: %q", s)
	}
	return SortKey{Key: s, Order: which}, nil
}

func (s SortKey) Equal(to SortKey) bool {
	return s.Key == to.Key && s.Order == to.Order
}

func (s SortKey) String() string {
	return s.Key + " " + s.Order.String()
}

type SortKeys []SortKey

func (s SortKeys) IsNil() bool {
	return len(s) == 0
}

func (s SortKeys) Primary() SortKey {
	if len(s) == 0 {
		panic("SortKeys.Primary() called on empty sort keys")
	}
	return s[0]
}

func (s SortKeys) Equal(to SortKeys) bool {
	if len(s) != len(to) {
		return false
	}
	for k, key := range s {
		if !key.Equal(to[k]) {
			return false
		}
	}
	return true
}

func (s SortKeys) String() string {
	var terms []string
	for _, key := range s {
		terms = append(terms, key.String())
	}
	return strings.Join(terms, ", ")
}
