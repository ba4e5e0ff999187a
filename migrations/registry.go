// Package migrations exposes the embedded receiver-secrets migration tree in
// the shape persistence layers expect: one filesystem per SQL dialect, with
// postgres at the tree root and sqlite alternatives under sqlite/.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	receivers "github.com/goliatone/go-receivers"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Source is one dialect's migration filesystem.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc hands one dialect's filesystem to the host's migrator.
type RegisterFunc func(ctx context.Context, dialect string, label string, fsys fs.FS) error

// Registration records what Register resolved and handed off.
type Registration struct {
	Label   string
	Targets []string
	Sources []Source
}

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.Label = trimmed
		}
	}
}

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(dialects ...string) Option {
	return func(r *Registration) {
		if targets := normalizeDialects(dialects); len(targets) > 0 {
			r.Targets = targets
		}
	}
}

func WithSources(sources ...Source) Option {
	return func(r *Registration) {
		kept := make([]Source, 0, len(sources))
		for _, source := range sources {
			dialect := strings.TrimSpace(strings.ToLower(source.Dialect))
			if dialect == "" || source.FS == nil {
				continue
			}
			kept = append(kept, Source{Dialect: dialect, Path: source.Path, FS: source.FS})
		}
		if len(kept) > 0 {
			r.Sources = kept
		}
	}
}

// Sources resolves the per-dialect migration filesystems from the embedded
// tree, or from the first override when one is given. Every source must hold
// at least one *.up.sql file.
func Sources(overrides ...fs.FS) ([]Source, error) {
	root := receivers.GetMigrationsFS()
	if len(overrides) > 0 && overrides[0] != nil {
		root = overrides[0]
	}

	base, basePath, err := treeRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: joinPath(basePath, "sqlite"), FS: sqliteFS},
	}
	for _, source := range sources {
		matches, globErr := fs.Glob(source.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", source.Dialect, source.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", source.Dialect, source.Path)
		}
	}
	return sources, nil
}

// Register resolves the migration sources and hands each targeted dialect to
// registerFn.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		Label:   "go-receivers",
		Targets: []string{DialectPostgres, DialectSQLite},
	}

	sources, err := Sources()
	if err != nil {
		return reg, err
	}
	reg.Sources = sources

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&reg)
	}

	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	if len(reg.Targets) == 0 {
		return reg, fmt.Errorf("migrations: validation targets are required")
	}
	if strings.TrimSpace(reg.Label) == "" {
		return reg, fmt.Errorf("migrations: source label is required")
	}
	if len(reg.Sources) == 0 {
		return reg, fmt.Errorf("migrations: sources are required")
	}

	targets := normalizeDialects(reg.Targets)
	for _, source := range reg.Sources {
		if !slices.Contains(targets, source.Dialect) {
			continue
		}
		if source.FS == nil {
			return reg, fmt.Errorf("migrations: filesystem for %s is nil", source.Dialect)
		}
		if err := registerFn(ctx, source.Dialect, reg.Label, source.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
	}
	return reg, nil
}

// treeRoot accepts either the module-root embed (data/sql/migrations nested)
// or a filesystem already rooted at the migration files.
func treeRoot(root fs.FS) (fs.FS, string, error) {
	sub, err := fs.Sub(root, "data/sql/migrations")
	if err == nil {
		return sub, "data/sql/migrations", nil
	}

	entries, readErr := fs.ReadDir(root, ".")
	if readErr == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
				return root, ".", nil
			}
		}
	}
	return nil, "", fmt.Errorf("migrations: data/sql/migrations not found: %w", err)
}

func normalizeDialects(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func joinPath(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(suffix, "/")
}
