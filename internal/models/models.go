package models

import (
	"time"
)

// Alert type constants. High and moderate alerts carry the submitter's live
// location; general complaints never do.
const (
	TypeHigh     = "high"
	TypeModerate = "moderate"
	TypeGeneral  = "general"
)

// Alert status constants. Status only ever moves between these two values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// FilterAll is the feed filter value that matches every alert type.
const FilterAll = "all"

// Alert is a student-submitted safety report. ID and CreatedAt are assigned
// by the store at insert time; AlertType and StudentID are immutable after
// creation.
type Alert struct {
	ID          string       `json:"id" db:"id"`
	StudentID   string       `json:"student_id" db:"student_id"`
	AlertType   string       `json:"alert_type" db:"alert_type"`
	LocationLat *float64     `json:"location_lat" db:"location_lat"`
	LocationLng *float64     `json:"location_lng" db:"location_lng"`
	Description *string      `json:"description" db:"description"`
	Status      string       `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	Student     *StudentInfo `json:"student,omitempty"`
}

// StudentInfo is the submitter context joined onto a feed row for display.
type StudentInfo struct {
	FullName   string `json:"full_name" db:"full_name"`
	StudentID  string `json:"student_id" db:"student_id"`
	Department string `json:"department" db:"department"`
	Year       int    `json:"year" db:"year"`
}

// AlertDraft is a validated, not-yet-persisted alert payload produced by the
// composer. The store fills in id, status and created_at on insert.
type AlertDraft struct {
	AlertType   string   `json:"alert_type"`
	Description *string  `json:"description"`
	LocationLat *float64 `json:"location_lat"`
	LocationLng *float64 `json:"location_lng"`
}

// LocationFix is a single geolocation sample. It is never persisted on its
// own; only the latest fix is held and its coordinates are copied into an
// alert at submission time.
type LocationFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"ts"`
}

// Profile roles.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

// Profile is a user account record.
type Profile struct {
	ID           string    `json:"id" db:"id"`
	Role         string    `json:"role" db:"role"`
	FullName     string    `json:"full_name" db:"full_name"`
	StudentID    string    `json:"student_id" db:"student_id"`
	Department   string    `json:"department" db:"department"`
	Year         int       `json:"year" db:"year"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	PasswordHash string    `json:"-" db:"password_hash"`
	TOTPSecret   string    `json:"-" db:"totp_secret"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ValidAlertType reports whether t is one of the three alert types.
func ValidAlertType(t string) bool {
	return t == TypeHigh || t == TypeModerate || t == TypeGeneral
}

// ValidStatus reports whether s is a recognized alert status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

// RequiresLocation reports whether alerts of type t must carry a location.
func RequiresLocation(t string) bool {
	return t == TypeHigh || t == TypeModerate
}
