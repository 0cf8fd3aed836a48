package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/notify"
)

// IProfileRepository defines the store operations for user profiles.
type IProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type ProfileRepository struct {
	db       *sql.DB
	notifier *notify.Notifier
}

func NewProfileRepository(db *sql.DB, notifier *notify.Notifier) *ProfileRepository {
	return &ProfileRepository{db: db, notifier: notifier}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, role, full_name, student_id, department, year,
		                      email, phone_number, password_hash, totp_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		profile.ID,
		profile.Role,
		profile.FullName,
		profile.StudentID,
		profile.Department,
		profile.Year,
		profile.Email,
		profile.PhoneNumber,
		profile.PasswordHash,
		profile.TOTPSecret,
	).Scan(&profile.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	r.notifier.Publish(TableProfiles)
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *ProfileRepository) getOne(ctx context.Context, predicate string, arg interface{}) (*models.Profile, error) {
	query := `
		SELECT id, role, full_name, student_id, department, year,
		       email, phone_number, password_hash, totp_secret, created_at
		FROM profiles
	` + predicate

	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&profile.ID,
		&profile.Role,
		&profile.FullName,
		&profile.StudentID,
		&profile.Department,
		&profile.Year,
		&profile.Email,
		&profile.PhoneNumber,
		&profile.PasswordHash,
		&profile.TOTPSecret,
		&profile.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Update rewrites the mutable profile fields. Role and email are fixed after
// signup.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $1, student_id = $2, department = $3, year = $4, phone_number = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(
		ctx, query,
		profile.FullName,
		profile.StudentID,
		profile.Department,
		profile.Year,
		profile.PhoneNumber,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %s not found", profile.ID)
	}

	r.notifier.Publish(TableProfiles)
	return nil
}
