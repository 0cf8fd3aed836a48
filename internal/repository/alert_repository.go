package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/notify"
)

// Table names used as change-notification keys.
const (
	TableAlerts   = "alerts"
	TableProfiles = "profiles"
)

// IAlertRepository defines the store operations for alerts. The store owns
// id, status and created_at assignment; every successful mutation is
// announced on the change notifier.
type IAlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	List(ctx context.Context, typeFilter string) ([]models.Alert, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type AlertRepository struct {
	db       *sql.DB
	notifier *notify.Notifier
}

func NewAlertRepository(db *sql.DB, notifier *notify.Notifier) *AlertRepository {
	return &AlertRepository{db: db, notifier: notifier}
}

// Create inserts a new alert. The database assigns id, pending status and
// created_at; the generated values are written back onto alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (student_id, alert_type, location_lat, location_lng, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		alert.StudentID,
		alert.AlertType,
		alert.LocationLat,
		alert.LocationLng,
		alert.Description,
	).Scan(&alert.ID, &alert.Status, &alert.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	r.notifier.Publish(TableAlerts)
	return nil
}

// GetByID retrieves a single alert, or nil when it does not exist.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `
		SELECT id, student_id, alert_type, location_lat, location_lng,
		       description, status, created_at
		FROM alerts
		WHERE id = $1
	`

	alert := &models.Alert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&alert.ID,
		&alert.StudentID,
		&alert.AlertType,
		&alert.LocationLat,
		&alert.LocationLng,
		&alert.Description,
		&alert.Status,
		&alert.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}

	return alert, nil
}

// List returns alerts newest first, each joined to its submitter's profile.
// typeFilter narrows to one alert type; models.FilterAll returns everything.
func (r *AlertRepository) List(ctx context.Context, typeFilter string) ([]models.Alert, error) {
	query := `
		SELECT a.id, a.student_id, a.alert_type, a.location_lat, a.location_lng,
		       a.description, a.status, a.created_at,
		       p.full_name, p.student_id, p.department, p.year
		FROM alerts a
		LEFT JOIN profiles p ON p.id = a.student_id
	`

	args := []interface{}{}
	if typeFilter != models.FilterAll {
		query += ` WHERE a.alert_type = $1`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var fullName, studentID, department sql.NullString
		var year sql.NullInt64

		err := rows.Scan(
			&a.ID, &a.StudentID, &a.AlertType, &a.LocationLat, &a.LocationLng,
			&a.Description, &a.Status, &a.CreatedAt,
			&fullName, &studentID, &department, &year,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}

		if fullName.Valid {
			a.Student = &models.StudentInfo{
				FullName:   fullName.String,
				StudentID:  studentID.String,
				Department: department.String,
				Year:       int(year.Int64),
			}
		}

		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert rows: %w", err)
	}

	return alerts, nil
}

// UpdateStatus writes the alert's status unconditionally. Writing the value
// the row already holds is harmless and still announced, so feeds converge.
func (r *AlertRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `UPDATE alerts SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("alert %s not found", id)
	}

	r.notifier.Publish(TableAlerts)
	return nil
}
