package service

import (
	"context"
	"fmt"

	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/repository"
)

// StatusService toggles alerts between pending and completed. It never
// mutates feed state directly: the store write triggers a change
// notification and the feed refetches, keeping the store the single source
// of truth. Concurrent toggles are last-write-wins, an accepted race.
type StatusService struct {
	repo repository.IAlertRepository
	log  *logger.Logger
}

func NewStatusService(repo repository.IAlertRepository, log *logger.Logger) *StatusService {
	return &StatusService{repo: repo, log: log}
}

// SetStatus writes the target status unconditionally; writing the value the
// alert already holds is a harmless no-op, which makes the operation
// idempotent. Store rejection surfaces to the invoking staff member.
func (s *StatusService) SetStatus(ctx context.Context, alertID, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown alert status %q", status)
	}

	if err := s.repo.UpdateStatus(ctx, alertID, status); err != nil {
		return &models.PersistenceError{Op: "update alert status", Err: err}
	}

	s.log.Info("Alert %s status set to %s", alertID, status)
	return nil
}
