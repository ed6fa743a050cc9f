// Package sanitize empties the application tables. Used to reset staging
// and test databases.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"budgeter/pkg/database"

	"gorm.io/gorm"
)

// DefaultTables are the application tables, children first.
var DefaultTables = []string{"transactions", "categories", "budgets", "users"}

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Tables []string
	DryRun bool
	Yes    bool
	// Driver is database.DriverPostgres or database.DriverSQLite.
	Driver string
}

// Report lists what was considered and whether anything was removed.
type Report struct {
	Tables   []string
	Executed bool
}

// ParseTables splits a comma separated list and drops invalid identifiers.
func ParseTables(list string) (valid, skipped []string) {
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !nameRe.MatchString(p) {
			skipped = append(skipped, p)
			continue
		}
		valid = append(valid, p)
	}
	return valid, skipped
}

// Run truncates the existing tables among opts.Tables. Nothing is removed
// unless DryRun is false and Yes is true.
func Run(ctx context.Context, db *gorm.DB, opts Options, out io.Writer) (Report, error) {
	tables := opts.Tables
	if len(tables) == 0 {
		tables = DefaultTables
	}

	var rep Report
	for _, t := range tables {
		if !nameRe.MatchString(t) {
			fmt.Fprintf(out, "warning: skipping invalid table name '%s'\n", t)
			continue
		}
		if !db.Migrator().HasTable(t) {
			fmt.Fprintf(out, "info: table %s not found, skipping\n", t)
			continue
		}
		rep.Tables = append(rep.Tables, t)
	}
	if len(rep.Tables) == 0 {
		fmt.Fprintln(out, "no requested tables present in the database; nothing to do")
		return rep, nil
	}

	fmt.Fprintln(out, "Tables considered for truncation:")
	for _, t := range rep.Tables {
		fmt.Fprintf(out, " - %s\n", t)
	}
	if opts.DryRun {
		fmt.Fprintln(out, "dry-run enabled; no changes will be made. Use -dry-run=false -yes to execute.")
		return rep, nil
	}
	if !opts.Yes {
		fmt.Fprintln(out, "Destructive operation. Pass -yes to confirm execution. Aborting.")
		return rep, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	tx := db.WithContext(ctx)

	if opts.Driver == database.DriverPostgres {
		quoted := make([]string, 0, len(rep.Tables))
		for _, t := range rep.Tables {
			quoted = append(quoted, fmt.Sprintf("%q", t))
		}
		stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
		fmt.Fprintf(out, "Executing: %s\n", stmt)
		if err := tx.Exec(stmt).Error; err != nil {
			return rep, fmt.Errorf("truncate: %w", err)
		}
	} else {
		// sqlite has no TRUNCATE; delete in the given order inside one transaction
		err := tx.Transaction(func(tx *gorm.DB) error {
			for _, t := range rep.Tables {
				fmt.Fprintf(out, "Executing: DELETE FROM %q\n", t)
				if err := tx.Exec(fmt.Sprintf("DELETE FROM %q", t)).Error; err != nil {
					return fmt.Errorf("delete from %s: %w", t, err)
				}
			}
			return nil
		})
		if err != nil {
			return rep, err
		}
	}
	rep.Executed = true
	fmt.Fprintln(out, "Truncate completed.")
	return rep, nil
}
