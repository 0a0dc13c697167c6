package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// EnsureEnum creates a Postgres enum type if it does not exist yet.
// AutoMigrate cannot create enum types, so call this before migrating a
// model whose column uses one. Existing types are left untouched; adding a
// value later needs its own ALTER TYPE migration.
func EnsureEnum(d *gorm.DB, schema, name string, values ...string) error {
	if len(values) == 0 {
		return fmt.Errorf("enum %s.%s has no values", schema, name)
	}
	return d.Exec(enumDDL(schema, name, values)).Error
}

func enumDDL(schema, name string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf(`DO $$ BEGIN
	CREATE TYPE "%s"."%s" AS ENUM (%s);
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;`, schema, name, strings.Join(quoted, ", "))
}
