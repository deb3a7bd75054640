// Package accounts reads customer profile data: the joined-profile email
// used as the last recipient-resolution fallback, and the membership scan
// feeding the scheduled reminder emails.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the subset of a customer profile the notification and admin
// layers need.
type Profile struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	MembershipPlan    string     `json:"membership_plan,omitempty"`
	MembershipExpires *time.Time `json:"membership_expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Repository provides Postgres access to customer profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EmailByUserID returns the profile email for a customer, or "" when the
// profile is missing or has no email. Callers use this as the final
// fallback when the event payload carries no address.
func (r *Repository) EmailByUserID(ctx context.Context, userID uuid.UUID) string {
	var email *string
	err := r.pool.QueryRow(ctx,
		`SELECT email FROM profiles WHERE id = $1`, userID).Scan(&email)
	if err != nil || email == nil {
		return ""
	}
	return *email
}

// ExpiringMemberships lists profiles whose membership expires within the
// given window and has not expired yet, for the scheduled reminder run.
func (r *Repository) ExpiringMemberships(ctx context.Context, within time.Duration) ([]Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, full_name, membership_plan, membership_expires_at, created_at
		 FROM profiles
		 WHERE membership_expires_at IS NOT NULL
		   AND membership_expires_at > now()
		   AND membership_expires_at <= now() + $1
		   AND email IS NOT NULL`,
		within)
	if err != nil {
		return nil, fmt.Errorf("accounts: expiring memberships: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var (
			p     Profile
			email *string
			plan  *string
		)
		if err := rows.Scan(&p.ID, &email, &p.FullName, &plan, &p.MembershipExpires, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("accounts: scan: %w", err)
		}
		if email != nil {
			p.Email = *email
		}
		if plan != nil {
			p.MembershipPlan = *plan
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of customer profiles, for the admin metrics
// endpoint.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&n)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("accounts: count: %w", err)
	}
	return n, nil
}
