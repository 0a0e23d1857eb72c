package query_test

import (
	"net/url"
	"testing"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/stretchr/testify/assert"
)

func TestCriteria(t *testing.T) {
	t.Run("KeepsFirstInsertionOrder", func(t *testing.T) {
		c := query.NewCriteria().Set("b", "1").Set("a", "2").Set("b", "3")
		assert.Equal(t, []string{"b", "a"}, c.Keys())
		v, ok := c.Get("b")
		assert.True(t, ok)
		assert.Equal(t, "3", v)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("ExactParsing", func(t *testing.T) {
		assert.False(t, query.NewCriteria().Exact())
		assert.True(t, query.NewCriteria().Set(query.KeyExact, "TRUE").Exact())
		assert.False(t, query.NewCriteria().Set(query.KeyExact, "1").Exact())
	})

	t.Run("WithPaginationCopies", func(t *testing.T) {
		c := query.NewCriteria().Set(query.KeyUsername, "bob")
		cp := c.WithPagination(5, 10)
		cp.Set(query.KeyEmail, "x")
		assert.Equal(t, 0, c.FirstResult)
		assert.Equal(t, 0, c.MaxResults)
		assert.False(t, c.Has(query.KeyEmail))
		assert.Equal(t, 5, cp.FirstResult)
		assert.Equal(t, 10, cp.MaxResults)
		assert.True(t, cp.Has(query.KeyUsername))
	})

	t.Run("NilIsEmpty", func(t *testing.T) {
		var c *query.Criteria
		assert.False(t, c.Has(query.KeySearch))
		assert.Nil(t, c.Keys())
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, 1, c.WithPagination(1, 0).FirstResult)
	})

	t.Run("FromValuesSortsAndSkips", func(t *testing.T) {
		v := url.Values{}
		v.Set("team", "x")
		v.Set("department", "eng")
		v.Set("first", "10")
		v.Add("username", "a")
		v.Add("username", "b")
		c := query.CriteriaFromValues(v, "first", "max")
		assert.Equal(t, []string{"department", "team", "username"}, c.Keys())
		got, _ := c.Get("username")
		assert.Equal(t, "a", got)
	})

	t.Run("IsRecognized", func(t *testing.T) {
		for _, k := range []string{"search", "username", "email", "firstName", "lastName", "exact", "emailVerified", "enabled"} {
			assert.True(t, query.IsRecognized(k), k)
		}
		assert.False(t, query.IsRecognized("department"))
	})
}
