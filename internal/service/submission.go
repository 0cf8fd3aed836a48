package service

import (
	"context"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/repository"
)

// SubmissionService persists composed alerts under the authenticated
// identity.
type SubmissionService struct {
	repo repository.IAlertRepository
	log  *logger.Logger
}

func NewSubmissionService(repo repository.IAlertRepository, log *logger.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, log: log}
}

// Submit inserts the draft as a new alert owned by the session's user and
// returns the store-assigned alert id. Store rejections surface to the
// caller unretried; the distress UI drives any retry explicitly, since a
// duplicate alert is worse than a dropped one.
func (s *SubmissionService) Submit(ctx context.Context, draft *models.AlertDraft, session *auth.Session) (string, error) {
	if !session.Valid() {
		return "", models.ErrNotAuthenticated
	}

	alert := &models.Alert{
		StudentID:   session.UserID,
		AlertType:   draft.AlertType,
		LocationLat: draft.LocationLat,
		LocationLng: draft.LocationLng,
		Description: draft.Description,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return "", &models.PersistenceError{Op: "insert alert", Err: err}
	}

	s.log.Info("Alert %s submitted by %s (type=%s)", alert.ID, session.UserID, alert.AlertType)
	return alert.ID, nil
}
