package service

import (
	"fmt"

	"CampusResponseAPI/internal/models"
)

// ComposeAlert validates alert-type requirements and builds a submittable
// draft. Pure construction: no store access, so a missing location blocks
// the submission before anything is persisted.
//
// Rules per type:
//
//	high     — location required, description discarded (speed over detail)
//	moderate — location required, description optional
//	general  — location always omitted, description optional
func ComposeAlert(alertType, description string, fix *models.LocationFix) (*models.AlertDraft, error) {
	if !models.ValidAlertType(alertType) {
		return nil, fmt.Errorf("unknown alert type %q", alertType)
	}

	draft := &models.AlertDraft{AlertType: alertType}

	if models.RequiresLocation(alertType) {
		if fix == nil {
			return nil, models.ErrLocationRequired
		}
		lat, lng := fix.Lat, fix.Lng
		draft.LocationLat = &lat
		draft.LocationLng = &lng
	}

	if alertType != models.TypeHigh && description != "" {
		d := description
		draft.Description = &d
	}

	return draft, nil
}
