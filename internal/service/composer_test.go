package service

import (
	"errors"
	"testing"
	"time"

	"CampusResponseAPI/internal/models"
)

func fixAt(lat, lng float64) *models.LocationFix {
	return &models.LocationFix{Lat: lat, Lng: lng, Timestamp: time.Now()}
}

func TestComposeAlert_LocationRule(t *testing.T) {
	tests := []struct {
		alertType string
		needsFix  bool
	}{
		{models.TypeHigh, true},
		{models.TypeModerate, true},
		{models.TypeGeneral, false},
	}

	for _, tc := range tests {
		t.Run(tc.alertType, func(t *testing.T) {
			_, err := ComposeAlert(tc.alertType, "", nil)
			if tc.needsFix {
				if !errors.Is(err, models.ErrLocationRequired) {
					t.Errorf("expected ErrLocationRequired without a fix, got %v", err)
				}
			} else if err != nil {
				t.Errorf("expected success without a fix, got %v", err)
			}

			draft, err := ComposeAlert(tc.alertType, "", fixAt(37.0, -122.0))
			if err != nil {
				t.Fatalf("compose with fix failed: %v", err)
			}

			hasLocation := draft.LocationLat != nil && draft.LocationLng != nil
			if hasLocation != tc.needsFix {
				t.Errorf("location present = %v, want %v", hasLocation, tc.needsFix)
			}
		})
	}
}

func TestComposeAlert_GeneralDropsLocationEvenWithFix(t *testing.T) {
	draft, err := ComposeAlert(models.TypeGeneral, "noisy party", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	if draft.LocationLat != nil || draft.LocationLng != nil {
		t.Error("general alerts must never carry a location")
	}
	if draft.Description == nil || *draft.Description != "noisy party" {
		t.Errorf("expected description preserved, got %v", draft.Description)
	}
}

func TestComposeAlert_HighDiscardsDescription(t *testing.T) {
	draft, err := ComposeAlert(models.TypeHigh, "ignore me", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	if draft.Description != nil {
		t.Errorf("high alerts must not carry a description, got %q", *draft.Description)
	}
	if draft.LocationLat == nil || *draft.LocationLat != 37.0 {
		t.Error("expected the current fix copied onto the draft")
	}
	if draft.LocationLng == nil || *draft.LocationLng != -122.0 {
		t.Error("expected the current fix copied onto the draft")
	}
}

func TestComposeAlert_ModerateKeepsOptionalDescription(t *testing.T) {
	withDesc, err := ComposeAlert(models.TypeModerate, "smoke near the library", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if withDesc.Description == nil || *withDesc.Description != "smoke near the library" {
		t.Error("expected moderate description preserved")
	}

	withoutDesc, err := ComposeAlert(models.TypeModerate, "", fixAt(37.0, -122.0))
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if withoutDesc.Description != nil {
		t.Error("expected empty description omitted")
	}
}

func TestComposeAlert_UnknownType(t *testing.T) {
	if _, err := ComposeAlert("critical", "", fixAt(37.0, -122.0)); err == nil {
		t.Error("expected an error for an unknown alert type")
	}
}

func TestComposeAlert_PermissionDeniedScenario(t *testing.T) {
	// Sensor errored before any fix arrived: high submission must be blocked
	// at composition, before any store insert.
	_, err := ComposeAlert(models.TypeHigh, "", nil)
	if !errors.Is(err, models.ErrLocationRequired) {
		t.Fatalf("expected ErrLocationRequired, got %v", err)
	}
}
