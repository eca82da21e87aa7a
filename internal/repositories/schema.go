package repositories

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	intconfig "railway/internal/config"
)

//go:embed schema/railway.sql
var schemaSQL string

// SchemaStatements splits the embedded DDL into single statements.
func SchemaStatements() []string {
	var out []string
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	for _, stmt := range SchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			head := stmt
			if i := strings.IndexByte(head, '('); i > 0 {
				head = strings.TrimSpace(head[:i])
			}
			return fmt.Errorf("failed to apply %q: %w", head, err)
		}
	}
	return nil
}
