// Package backup implements the admin maintenance feature: sequential
// table dumps into a single JSON artifact, plus list/restore/delete.
// Artifacts go to S3-compatible object storage when configured, otherwise
// they are kept inline in the backups table.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almaluz/backend/pkg/db"
	"github.com/almaluz/backend/pkg/storage"
)

// dumpOrder is the fixed table order for dump and restore. Referential
// parents come first so restore can insert in the same order.
var dumpOrder = []string{
	"profiles",
	"products",
	"orders",
	"system_settings",
	"email_templates",
}

const artifactVersion = 1

// ErrNotFound indicates no backup row matched the id.
var ErrNotFound = errors.New("backup: backup not found")

// Backup is the metadata row describing one stored artifact.
type Backup struct {
	ID         uuid.UUID      `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	SizeBytes  int64          `json:"size_bytes"`
	TableRows  map[string]int `json:"table_rows"`
	StorageKey string         `json:"storage_key,omitempty"`
}

// artifact is the JSON document written per backup.
type artifact struct {
	Version   int                          `json:"version"`
	CreatedAt time.Time                    `json:"created_at"`
	Tables    map[string][]json.RawMessage `json:"tables"`
}

// Service performs backup and restore against the service-role pool.
type Service struct {
	pool  *pgxpool.Pool
	store storage.Storage // nil: artifacts kept inline in Postgres
	log   *slog.Logger
}

// NewService creates a backup service. store may be nil.
func NewService(pool *pgxpool.Pool, store storage.Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{pool: pool, store: store, log: log}
}

// Create dumps every table in dumpOrder into one JSON artifact and
// records a metadata row. Dumps are sequential single-pass reads; there
// is no cross-table snapshot consistency beyond what one statement gives.
func (s *Service) Create(ctx context.Context) (*Backup, error) {
	art := artifact{
		Version:   artifactVersion,
		CreatedAt: time.Now().UTC(),
		Tables:    make(map[string][]json.RawMessage, len(dumpOrder)),
	}
	counts := make(map[string]int, len(dumpOrder))

	for _, table := range dumpOrder {
		rows, err := s.dumpTable(ctx, table)
		if err != nil {
			return nil, err
		}
		art.Tables[table] = rows
		counts[table] = len(rows)
	}

	payload, err := json.Marshal(art)
	if err != nil {
		return nil, fmt.Errorf("backup: marshal artifact: %w", err)
	}

	b := &Backup{
		ID:        uuid.New(),
		CreatedAt: art.CreatedAt,
		SizeBytes: int64(len(payload)),
		TableRows: counts,
	}

	var inline []byte
	if s.store != nil {
		b.StorageKey = fmt.Sprintf("backups/%s.json", b.ID)
		err := s.store.Put(ctx, b.StorageKey, bytes.NewReader(payload), b.SizeBytes, "application/json")
		if err != nil {
			return nil, fmt.Errorf("backup: upload artifact: %w", err)
		}
	} else {
		inline = payload
	}

	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("backup: marshal counts: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO backups (id, created_at, size_bytes, table_rows, storage_key, artifact)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.CreatedAt, b.SizeBytes, countsJSON, nullable(b.StorageKey), inline)
	if err != nil {
		return nil, fmt.Errorf("backup: record metadata: %w", err)
	}

	s.log.InfoContext(ctx, "backup created",
		slog.String("backup_id", b.ID.String()),
		slog.Int64("size_bytes", b.SizeBytes),
	)
	return b, nil
}

// List returns backup metadata, newest first.
func (s *Service) List(ctx context.Context) ([]Backup, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, size_bytes, table_rows, storage_key
		 FROM backups ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("backup: list: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		var (
			b          Backup
			countsJSON []byte
			key        *string
		)
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.SizeBytes, &countsJSON, &key); err != nil {
			return nil, fmt.Errorf("backup: scan: %w", err)
		}
		if key != nil {
			b.StorageKey = *key
		}
		if len(countsJSON) > 0 {
			_ = json.Unmarshal(countsJSON, &b.TableRows)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Restore replaces the contents of every dumped table with the artifact's
// rows, inside one transaction and in dump order.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) error {
	art, err := s.loadArtifact(ctx, id)
	if err != nil {
		return err
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		// Clear in reverse order so child tables go first.
		for i := len(dumpOrder) - 1; i >= 0; i-- {
			if _, err := tx.Exec(ctx, `DELETE FROM `+dumpOrder[i]); err != nil {
				return fmt.Errorf("backup: clear %s: %w", dumpOrder[i], err)
			}
		}
		for _, table := range dumpOrder {
			for _, row := range art.Tables[table] {
				_, err := tx.Exec(ctx,
					`INSERT INTO `+table+` SELECT * FROM jsonb_populate_record(NULL::`+table+`, $1)`,
					row)
				if err != nil {
					return fmt.Errorf("backup: restore %s row: %w", table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "backup restored", slog.String("backup_id", id.String()))
	return nil
}

// Delete removes the metadata row and, best effort, the stored artifact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	var key *string
	err := s.pool.QueryRow(ctx,
		`DELETE FROM backups WHERE id = $1 RETURNING storage_key`, id).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("backup: delete: %w", err)
	}

	if key != nil && s.store != nil {
		if err := s.store.Delete(ctx, *key); err != nil {
			// Metadata is gone; an orphaned object is not worth failing over.
			s.log.WarnContext(ctx, "failed to delete backup artifact",
				slog.String("backup_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// dumpTable reads every row of one table as a JSON object.
func (s *Service) dumpTable(ctx context.Context, table string) ([]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `SELECT to_jsonb(t) FROM `+table+` t`)
	if err != nil {
		return nil, fmt.Errorf("backup: dump %s: %w", table, err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var row json.RawMessage
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("backup: dump %s: %w", table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// loadArtifact fetches the artifact document from storage or inline.
func (s *Service) loadArtifact(ctx context.Context, id uuid.UUID) (*artifact, error) {
	var (
		key    *string
		inline []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT storage_key, artifact FROM backups WHERE id = $1`, id).Scan(&key, &inline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("backup: load: %w", err)
	}

	payload := inline
	if key != nil && *key != "" {
		if s.store == nil {
			return nil, fmt.Errorf("backup: artifact %s lives in object storage but storage is not configured", *key)
		}
		rc, err := s.store.Get(ctx, *key)
		if err != nil {
			return nil, fmt.Errorf("backup: fetch artifact: %w", err)
		}
		defer rc.Close()
		payload, err = io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("backup: read artifact: %w", err)
		}
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("backup: artifact for %s is empty", id)
	}

	var art artifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return nil, fmt.Errorf("backup: parse artifact: %w", err)
	}
	return &art, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
