package query

import (
	"net/url"
	"slices"
	"strings"
)

// Recognized search keys. Any other key names a custom attribute.
const (
	KeySearch        = "search"
	KeyUsername      = "username"
	KeyEmail         = "email"
	KeyFirstName     = "firstName"
	KeyLastName      = "lastName"
	KeyExact         = "exact"
	KeyEmailVerified = "emailVerified"
	KeyEnabled       = "enabled"
)

// MatchAll is the free text value that disables free text filtering.
const MatchAll = "*"

var recognizedKeys = map[string]struct{}{
	KeySearch:        {},
	KeyUsername:      {},
	KeyEmail:         {},
	KeyFirstName:     {},
	KeyLastName:      {},
	KeyExact:         {},
	KeyEmailVerified: {},
	KeyEnabled:       {},
}

// IsRecognized reports whether key is one of the fixed search keys.
func IsRecognized(key string) bool {
	_, ok := recognizedKeys[key]
	return ok
}

// Criteria is a search request. Keys keep their first insertion order, which
// fixes the order custom attribute predicates are emitted in.
type Criteria struct {
	keys   []string
	values map[string]string

	// FirstResult is the row offset; values <= 0 mean no offset.
	FirstResult int
	// MaxResults is the row limit; values <= 0 mean no limit.
	MaxResults int
}

// NewCriteria returns empty criteria.
func NewCriteria() *Criteria {
	return &Criteria{values: map[string]string{}}
}

// CriteriaFromMap builds criteria from m, ordering keys lexically.
func CriteriaFromMap(m map[string]string) *Criteria {
	c := NewCriteria()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// CriteriaFromValues builds criteria from query string values. Only the first
// value of each key is used and keys listed in skip are ignored.
func CriteriaFromValues(v url.Values, skip ...string) *Criteria {
	m := make(map[string]string, len(v))
	for k, vals := range v {
		if len(vals) == 0 || slices.Contains(skip, k) {
			continue
		}
		m[k] = vals[0]
	}
	return CriteriaFromMap(m)
}

// Set stores value under key and returns c for chaining.
func (c *Criteria) Set(key, value string) *Criteria {
	if c.values == nil {
		c.values = map[string]string{}
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// SetBool stores a boolean flag.
func (c *Criteria) SetBool(key string, value bool) *Criteria {
	if value {
		return c.Set(key, "true")
	}
	return c.Set(key, "false")
}

// Get returns the value stored under key.
func (c *Criteria) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Criteria) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (c *Criteria) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// Len returns the number of keys.
func (c *Criteria) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Exact reports whether field predicates use equality.
func (c *Criteria) Exact() bool {
	return c.flag(KeyExact)
}

func (c *Criteria) flag(key string) bool {
	v, _ := c.Get(key)
	return parseBool(v)
}

// WithPagination returns a copy of c with the given offset and limit.
func (c *Criteria) WithPagination(firstResult, maxResults int) *Criteria {
	cp := NewCriteria()
	if c != nil {
		for _, k := range c.keys {
			cp.Set(k, c.values[k])
		}
	}
	cp.FirstResult = firstResult
	cp.MaxResults = maxResults
	return cp
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
