package store

import (
	"context"
	"database/sql"
	"fmt"

	"resto-service/internal/models"
)

// GetProfile retrieves a staff profile by session identity.
func (s *Postgres) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &profile, nil
}

// GetProfileByEmail retrieves a staff profile by email.
func (s *Postgres) GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &profile, nil
}

// ListProfiles returns all staff profiles.
func (s *Postgres) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.db.SelectContext(ctx, &profiles, "SELECT * FROM profiles ORDER BY email")
	if err != nil {
		return nil, classify(err)
	}
	return profiles, nil
}

// CreateProfile inserts a staff profile and returns the persisted record.
func (s *Postgres) CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	query := `
		INSERT INTO profiles (email, role, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := s.db.GetContext(ctx, &p.ID, query, p.Email, p.Role, p.PasswordHash)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// DeleteProfile removes a staff profile.
func (s *Postgres) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return nil
}
