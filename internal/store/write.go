package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/pseo/internal/ir"
)

// RecordBuild stores the pages of one build and classifies each against the
// manifest:
//
//   - added: slug not in the manifest, or previously removed
//   - changed: content hash differs from the stored one
//   - unchanged: content hash matches
//   - removed: in the manifest but not in this build
//
// Everything happens in one transaction. The returned Build has its ID (a new
// UUID unless b.ID is set), Seq and Stats filled in. Pages must have unique
// slugs.
func (s *Store) RecordBuild(ctx context.Context, b Build, pages []*ir.Page) (Build, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("record build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&b.Seq); err != nil {
		return Build{}, fmt.Errorf("record build: next seq: %w", err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.EngineVersion == "" {
		b.EngineVersion = ir.EngineVersion
	}
	if b.SchemaVersion == "" {
		b.SchemaVersion = ir.SchemaVersion
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO builds (id, seq, library_hash, engine_version, schema_version)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.Seq, b.LibraryHash, b.EngineVersion, b.SchemaVersion); err != nil {
		return Build{}, fmt.Errorf("record build: insert build: %w", err)
	}

	existing, err := loadHashes(ctx, tx)
	if err != nil {
		return Build{}, fmt.Errorf("record build: %w", err)
	}

	stats := BuildStats{Pages: len(pages)}
	inBuild := make(map[string]bool, len(pages))

	for _, p := range pages {
		if inBuild[p.Slug] {
			return Build{}, fmt.Errorf("record build: duplicate slug %q", p.Slug)
		}
		inBuild[p.Slug] = true

		status := StatusAdded
		if prev, ok := existing[p.Slug]; ok && prev.status != StatusRemoved {
			status = StatusUnchanged
			if prev.hash != p.ContentHash {
				status = StatusChanged
			}
		}
		switch status {
		case StatusAdded:
			stats.Added++
		case StatusChanged:
			stats.Changed++
		case StatusUnchanged:
			stats.Unchanged++
		}

		keyJSON, err := json.Marshal(p.Key)
		if err != nil {
			return Build{}, fmt.Errorf("record build: marshal key for %s: %w", p.Slug, err)
		}
		bodyJSON, err := json.Marshal(p)
		if err != nil {
			return Build{}, fmt.Errorf("record build: marshal page %s: %w", p.Slug, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages
			(slug, kind, page_key, content_hash, body, status, first_build_seq, last_build_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET
				kind = excluded.kind,
				page_key = excluded.page_key,
				content_hash = excluded.content_hash,
				body = excluded.body,
				status = excluded.status,
				last_build_seq = excluded.last_build_seq
		`,
			p.Slug,
			p.Key.Kind,
			string(keyJSON),
			p.ContentHash,
			string(bodyJSON),
			string(status),
			b.Seq,
			b.Seq,
		); err != nil {
			return Build{}, fmt.Errorf("record build: upsert %s: %w", p.Slug, err)
		}
	}

	for slug, prev := range existing {
		if inBuild[slug] || prev.status == StatusRemoved {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE pages SET status = ? WHERE slug = ?`,
			string(StatusRemoved), slug,
		); err != nil {
			return Build{}, fmt.Errorf("record build: mark %s removed: %w", slug, err)
		}
		stats.Removed++
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE builds
		SET page_count = ?, added = ?, changed = ?, unchanged = ?, removed = ?
		WHERE seq = ?
	`, stats.Pages, stats.Added, stats.Changed, stats.Unchanged, stats.Removed, b.Seq); err != nil {
		return Build{}, fmt.Errorf("record build: update stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("record build: commit: %w", err)
	}

	b.Stats = stats
	return b, nil
}

type storedHash struct {
	hash   string
	status PageStatus
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadHashes(ctx context.Context, q queryer) (map[string]storedHash, error) {
	rows, err := q.QueryContext(ctx, `SELECT slug, content_hash, status FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("load hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]storedHash)
	for rows.Next() {
		var slug, hash, status string
		if err := rows.Scan(&slug, &hash, &status); err != nil {
			return nil, fmt.Errorf("load hashes: scan: %w", err)
		}
		out[slug] = storedHash{hash: hash, status: PageStatus(status)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load hashes: %w", err)
	}
	return out, nil
}
