package query

import (
	"regexp"
	"strconv"
)

// Dialect captures the SQL differences between supported stores.
type Dialect struct {
	Name string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// unboundedLimit is emitted before an OFFSET when no limit is set, for
	// stores that reject a bare OFFSET.
	unboundedLimit string
	// castKeys enables the "::type" cast on native key comparisons.
	castKeys bool
}

var (
	// Postgres uses $n placeholders.
	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		castKeys:    true,
	}
	// SQLite uses ? placeholders and needs LIMIT -1 before a bare OFFSET.
	SQLite = Dialect{
		Name:           "sqlite3",
		placeholder:    func(int) string { return "?" },
		unboundedLimit: "-1",
	}
)

// DialectFor returns the dialect for a database driver name.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "postgres", "pgx", "postgresql":
		return Postgres, true
	case "sqlite3", "sqlite":
		return SQLite, true
	}
	return Dialect{}, false
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is a plain, optionally schema
// qualified, SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Schema names the external tables. It comes from configuration only.
type Schema struct {
	UsersTable      string
	AttributesTable string
	// KeyType, when set, casts the native key parameter on dialects that
	// support it (e.g. "uuid").
	KeyType string
}

// DefaultSchema is the schema of the platform database.
var DefaultSchema = Schema{
	UsersTable:      "platform.users",
	AttributesTable: "platform.user_attributes",
	KeyType:         "uuid",
}
