package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almaluz/backend/pkg/db"
)

const selectColumns = `id, name, type, subject, content, variables,
	is_active, is_system, usage_count, last_used_at, created_at, updated_at`

// Repository provides Postgres access to the email template catalog.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a template repository on the given pool. The pool
// determines the access mode: the request-scoped pool for user-facing
// CRUD, the service-role pool for system-triggered sends.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Repository{pool: pool, log: log}
}

// ActiveByType returns the most recently created active template for the
// given type, or nil when none is configured. Storage errors are logged
// and also mapped to nil: an unreadable template catalog must degrade
// into "feature not configured", never into a crashed business flow.
func (r *Repository) ActiveByType(ctx context.Context, t Type) *EmailTemplate {
	row := r.pool.QueryRow(ctx,
		`SELECT `+selectColumns+`
		 FROM email_templates
		 WHERE type = $1 AND is_active
		 ORDER BY created_at DESC
		 LIMIT 1`, t)

	tpl, err := scanTemplate(row)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.log.WarnContext(ctx, "template lookup failed",
				slog.String("type", string(t)),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return tpl
}

// ByID returns one template row.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*EmailTemplate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM email_templates WHERE id = $1`, id)

	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("templates: query by id: %w", err)
	}
	return tpl, nil
}

// IncrementUsage bumps the usage counter and last-used timestamp after a
// successful send. The read-then-write is deliberately not atomic: the
// counter is informational and a lost update under concurrent sends is
// harmless. Failures are swallowed so tracking can never downgrade a
// successful send into a failure.
func (r *Repository) IncrementUsage(ctx context.Context, id uuid.UUID) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT usage_count FROM email_templates WHERE id = $1`, id).Scan(&count)
	if err == nil {
		_, err = r.pool.Exec(ctx,
			`UPDATE email_templates
			 SET usage_count = $2, last_used_at = now(), updated_at = now()
			 WHERE id = $1`, id, count+1)
	}
	if err != nil {
		r.log.WarnContext(ctx, "template usage tracking failed",
			slog.String("template_id", id.String()),
			slog.String("error", err.Error()),
		)
	}
}

// List returns all templates, newest first.
func (r *Repository) List(ctx context.Context) ([]EmailTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM email_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("templates: list: %w", err)
	}
	defer rows.Close()

	var out []EmailTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("templates: scan: %w", err)
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

// Create inserts a new template. Activation goes through Activate so the
// single-active-per-type invariant holds.
func (r *Repository) Create(ctx context.Context, tpl *EmailTemplate) error {
	if !tpl.Type.Valid() {
		return ErrInvalidType
	}
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_templates (id, name, type, subject, content, variables, is_active, is_system)
		 VALUES ($1, $2, $3, $4, $5, $6, false, $7)`,
		tpl.ID, tpl.Name, tpl.Type, tpl.Subject, tpl.Content, tpl.Variables, tpl.IsSystem)
	if err != nil {
		return fmt.Errorf("templates: create: %w", err)
	}
	return nil
}

// Update replaces the editable fields of a template.
func (r *Repository) Update(ctx context.Context, tpl *EmailTemplate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE email_templates
		 SET name = $2, subject = $3, content = $4, variables = $5, updated_at = now()
		 WHERE id = $1`,
		tpl.ID, tpl.Name, tpl.Subject, tpl.Content, tpl.Variables)
	if err != nil {
		return fmt.Errorf("templates: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate marks one template active and deactivates its siblings of the
// same type in a single transaction, enforcing single-active-per-type.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var t Type
		if err := tx.QueryRow(ctx,
			`SELECT type FROM email_templates WHERE id = $1`, id).Scan(&t); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("templates: activate: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE email_templates SET is_active = false, updated_at = now()
			 WHERE type = $1 AND id <> $2 AND is_active`, t, id); err != nil {
			return fmt.Errorf("templates: deactivate siblings: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE email_templates SET is_active = true, updated_at = now()
			 WHERE id = $1`, id); err != nil {
			return fmt.Errorf("templates: activate: %w", err)
		}
		return nil
	})
}

// Deactivate clears the active flag on one template.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE email_templates SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("templates: deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template. System templates are protected.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var isSystem bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_system FROM email_templates WHERE id = $1`, id).Scan(&isSystem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("templates: delete: %w", err)
	}
	if isSystem {
		return ErrSystemTemplate
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("templates: delete: %w", err)
	}
	return nil
}

// scanTemplate reads one row into an EmailTemplate.
func scanTemplate(row pgx.Row) (*EmailTemplate, error) {
	var (
		tpl        EmailTemplate
		lastUsedAt *time.Time
	)
	err := row.Scan(
		&tpl.ID, &tpl.Name, &tpl.Type, &tpl.Subject, &tpl.Content, &tpl.Variables,
		&tpl.IsActive, &tpl.IsSystem, &tpl.UsageCount, &lastUsedAt,
		&tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tpl.LastUsedAt = lastUsedAt
	return &tpl, nil
}
