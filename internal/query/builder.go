// Package query turns search criteria into parameterized SQL plans against the
// external user schema. Caller supplied values only ever reach a plan as bind
// parameters; the statement text holds placeholders, column names and
// operators, plus table names taken from configuration.
package query

import (
	"errors"
	"fmt"
	"strings"
)

const (
	basePredicate = "1=1"
	orderBy       = "username ASC"
	userColumns   = "id, username, email, first_name, last_name, enabled, email_verified"
)

// fieldColumns lists the named field keys in emission order.
var fieldColumns = []struct {
	key    string
	column string
}{
	{KeyUsername, "username"},
	{KeyEmail, "email"},
	{KeyFirstName, "first_name"},
	{KeyLastName, "last_name"},
}

// freeTextColumns are matched against every free text term.
var freeTextColumns = []string{"username", "email", "first_name", "last_name"}

// Plan is a single executable statement. It is built per call and discarded.
type Plan struct {
	// Predicate is the WHERE clause body.
	Predicate string
	// OrderBy is the ORDER BY clause body, empty for single column lookups.
	OrderBy string
	// Pagination holds the LIMIT/OFFSET clauses, if any.
	Pagination string
	// Args are the bind parameters in placeholder order. Each is a string,
	// bool or int.
	Args []any

	sql string
}

// SQL returns the full statement text.
func (p Plan) SQL() string {
	return p.sql
}

// Builder builds plans for one dialect and schema. It holds no mutable state
// and is safe for concurrent use.
type Builder struct {
	dialect Dialect
	schema  Schema
}

// NewBuilder validates the schema identifiers and returns a Builder.
func NewBuilder(dialect Dialect, schema Schema) (*Builder, error) {
	if dialect.placeholder == nil {
		return nil, errors.New("query: dialect is not initialised")
	}
	if !ValidIdentifier(schema.UsersTable) {
		return nil, fmt.Errorf("query: invalid users table name %q", schema.UsersTable)
	}
	if !ValidIdentifier(schema.AttributesTable) {
		return nil, fmt.Errorf("query: invalid attributes table name %q", schema.AttributesTable)
	}
	if schema.KeyType != "" && !ValidIdentifier(schema.KeyType) {
		return nil, fmt.Errorf("query: invalid key type %q", schema.KeyType)
	}
	return &Builder{dialect: dialect, schema: schema}, nil
}

// Dialect returns the builder's dialect.
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// Build translates criteria into a search plan. A nil criteria matches every
// record.
func (b *Builder) Build(c *Criteria) Plan {
	pb := &planBuilder{dialect: b.dialect}
	predicates := []string{basePredicate}

	if search, ok := c.Get(KeySearch); ok {
		if p := pb.freeText(search); p != "" {
			predicates = append(predicates, p)
		}
	} else {
		exact := c.Exact()
		for _, f := range fieldColumns {
			if v, ok := c.Get(f.key); ok {
				predicates = append(predicates, pb.field(f.column, v, exact))
			}
		}
		if v, ok := c.Get(KeyEmailVerified); ok {
			predicates = append(predicates, "email_verified = "+pb.bind(parseBool(v)))
		}
		if v, ok := c.Get(KeyEnabled); ok {
			predicates = append(predicates, "enabled = "+pb.bind(parseBool(v)))
		}
		for _, k := range c.Keys() {
			if IsRecognized(k) {
				continue
			}
			v, _ := c.Get(k)
			predicates = append(predicates, pb.attribute(b.schema.AttributesTable, k, v, exact))
		}
	}

	var offset, limit int
	if c != nil {
		offset, limit = c.FirstResult, c.MaxResults
	}

	plan := Plan{
		Predicate: strings.Join(predicates, " AND "),
		OrderBy:   orderBy,
	}
	plan.Pagination = pb.paginate(limit, offset)
	plan.Args = pb.args
	plan.sql = b.selectUsers(plan.Predicate, plan.OrderBy, plan.Pagination)
	return plan
}

// ByNativeKey selects the record with the given native key.
func (b *Builder) ByNativeKey(key string) Plan {
	pb := &planBuilder{dialect: b.dialect}
	ph := pb.bind(key)
	if b.dialect.castKeys && b.schema.KeyType != "" {
		ph += "::" + b.schema.KeyType
	}
	return b.single(pb, "id = "+ph)
}

// ByUsername selects the record with exactly this username.
func (b *Builder) ByUsername(username string) Plan {
	pb := &planBuilder{dialect: b.dialect}
	return b.single(pb, "username = "+pb.bind(username))
}

// ByEmail selects the record with exactly this email.
func (b *Builder) ByEmail(email string) Plan {
	pb := &planBuilder{dialect: b.dialect}
	return b.single(pb, "email = "+pb.bind(email))
}

// PasswordHash selects the stored password hash for username.
func (b *Builder) PasswordHash(username string) Plan {
	pb := &planBuilder{dialect: b.dialect}
	predicate := "username = " + pb.bind(username)
	return Plan{
		Predicate: predicate,
		Args:      pb.args,
		sql:       "SELECT password_hash FROM " + b.schema.UsersTable + " WHERE " + predicate,
	}
}

func (b *Builder) single(pb *planBuilder, predicate string) Plan {
	return Plan{
		Predicate: predicate,
		Args:      pb.args,
		sql:       b.selectUsers(predicate, "", ""),
	}
}

func (b *Builder) selectUsers(predicate, order, pagination string) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(userColumns)
	sb.WriteString(" FROM ")
	sb.WriteString(b.schema.UsersTable)
	sb.WriteString(" WHERE ")
	sb.WriteString(predicate)
	if order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}
	if pagination != "" {
		sb.WriteString(" ")
		sb.WriteString(pagination)
	}
	return sb.String()
}

type planBuilder struct {
	dialect Dialect
	args    []any
}

func (pb *planBuilder) bind(v any) string {
	pb.args = append(pb.args, v)
	return pb.dialect.placeholder(len(pb.args))
}

// freeText ORs one group per whitespace separated term; each group matches
// the term against every free text column.
func (pb *planBuilder) freeText(search string) string {
	search = strings.TrimSpace(search)
	if search == MatchAll {
		return ""
	}
	terms := strings.Fields(search)
	if len(terms) == 0 {
		return ""
	}

	groups := make([]string, 0, len(terms))
	for _, term := range terms {
		like := "%" + strings.ToLower(term) + "%"
		conds := make([]string, 0, len(freeTextColumns))
		for _, col := range freeTextColumns {
			conds = append(conds, "LOWER("+col+") LIKE "+pb.bind(like))
		}
		groups = append(groups, "("+strings.Join(conds, " OR ")+")")
	}
	return "(" + strings.Join(groups, " OR ") + ")"
}

func (pb *planBuilder) field(column, value string, exact bool) string {
	value = strings.ToLower(value)
	if exact {
		return "LOWER(" + column + ") = " + pb.bind(value)
	}
	return "LOWER(" + column + ") LIKE " + pb.bind("%"+value+"%")
}

func (pb *planBuilder) attribute(table, name, value string, exact bool) string {
	namePH := pb.bind(name)
	if exact {
		return "id IN (SELECT user_id FROM " + table + " WHERE name = " + namePH + " AND value = " + pb.bind(value) + ")"
	}
	return "id IN (SELECT user_id FROM " + table + " WHERE name = " + namePH + " AND value LIKE " + pb.bind("%"+value+"%") + ")"
}

func (pb *planBuilder) paginate(limit, offset int) string {
	var clauses []string
	if limit > 0 {
		clauses = append(clauses, "LIMIT "+pb.bind(limit))
	}
	if offset > 0 {
		if limit <= 0 && pb.dialect.unboundedLimit != "" {
			clauses = append(clauses, "LIMIT "+pb.dialect.unboundedLimit)
		}
		clauses = append(clauses, "OFFSET "+pb.bind(offset))
	}
	return strings.Join(clauses, " ")
}
