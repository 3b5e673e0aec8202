package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (r *SQLRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, first_name, last_name, email, is_admin
	          FROM profiles WHERE user_id = $1`

	var p domain.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.IsAdmin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (r *SQLRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, first_name, last_name, email, is_admin)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id) DO UPDATE SET
	              first_name = excluded.first_name,
	              last_name = excluded.last_name,
	              email = excluded.email,
	              is_admin = excluded.is_admin`

	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.FirstName, p.LastName, p.Email, p.IsAdmin); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
