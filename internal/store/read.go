package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pseo/internal/ir"
)

// GetPage returns the manifest row for slug, including the page body.
// Returns ErrNotFound if the slug has never been built.
func (s *Store) GetPage(ctx context.Context, slug string) (*PageRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slug, kind, page_key, content_hash, status, first_build_seq, last_build_seq, body
		FROM pages
		WHERE slug = ?
	`, slug)

	rec, err := scanPage(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", slug, err)
	}
	return rec, nil
}

// ListPages returns manifest rows matching filter, ordered by slug.
func (s *Store) ListPages(ctx context.Context, filter PageFilter) ([]PageRecord, error) {
	var where []string
	var args []any
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		if !ValidStatuses[filter.Status] {
			return nil, fmt.Errorf("list pages: invalid status %q", filter.Status)
		}
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	body := "'' AS body"
	if filter.WithBody {
		body = "body"
	}
	query := `SELECT slug, kind, page_key, content_hash, status, first_build_seq, last_build_seq, ` + body + ` FROM pages`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY slug COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRecord
	for rows.Next() {
		rec, err := scanPage(rows.Scan, filter.WithBody)
		if err != nil {
			return nil, fmt.Errorf("list pages: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return out, nil
}

// ListBuilds returns every recorded build, oldest first.
func (s *Store) ListBuilds(ctx context.Context) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, library_hash, engine_version, schema_version,
		       page_count, added, changed, unchanged, removed
		FROM builds
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(
			&b.ID, &b.Seq, &b.LibraryHash, &b.EngineVersion, &b.SchemaVersion,
			&b.Stats.Pages, &b.Stats.Added, &b.Stats.Changed, &b.Stats.Unchanged, &b.Stats.Removed,
		); err != nil {
			return nil, fmt.Errorf("list builds: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return out, nil
}

// LatestBuild returns the highest-seq build, or ErrNotFound.
func (s *Store) LatestBuild(ctx context.Context) (*Build, error) {
	builds, err := s.ListBuilds(ctx)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, fmt.Errorf("latest build: %w", ErrNotFound)
	}
	return &builds[len(builds)-1], nil
}

func scanPage(scan func(dest ...any) error, withBody bool) (*PageRecord, error) {
	var rec PageRecord
	var keyJSON, status, body string
	if err := scan(&rec.Slug, &rec.Kind, &keyJSON, &rec.ContentHash, &status, &rec.FirstBuildSeq, &rec.LastBuildSeq, &body); err != nil {
		return nil, err
	}
	rec.Status = PageStatus(status)

	if err := json.Unmarshal([]byte(keyJSON), &rec.Key); err != nil {
		return nil, fmt.Errorf("unmarshal key for %s: %w", rec.Slug, err)
	}
	if withBody {
		var page ir.Page
		if err := json.Unmarshal([]byte(body), &page); err != nil {
			return nil, fmt.Errorf("unmarshal page %s: %w", rec.Slug, err)
		}
		rec.Page = &page
	}
	return &rec, nil
}
