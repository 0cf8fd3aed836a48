package service

import (
	"context"
	"fmt"
	"strings"

	"CampusResponseAPI/internal/auth"
	"CampusResponseAPI/internal/config"
	"CampusResponseAPI/internal/geo"
	"CampusResponseAPI/internal/logger"
	"CampusResponseAPI/internal/models"
	"CampusResponseAPI/internal/repository"

	"github.com/google/uuid"
)

// AccountService owns signup, login and logout. A student session also owns
// that student's location watch: login starts tracking, logout stops it, so
// the sensor subscription never outlives the session.
type AccountService struct {
	profiles repository.IProfileRepository
	tokens   *auth.Manager
	ldap     *auth.LDAPVerifier
	sso      *auth.SSOClient
	tracking *geo.Registry
	cfg      *config.AuthConfig
	log      *logger.Logger
}

func NewAccountService(
	profiles repository.IProfileRepository,
	tokens *auth.Manager,
	ldap *auth.LDAPVerifier,
	sso *auth.SSOClient,
	tracking *geo.Registry,
	cfg *config.AuthConfig,
	log *logger.Logger,
) *AccountService {
	return &AccountService{
		profiles: profiles,
		tokens:   tokens,
		ldap:     ldap,
		sso:      sso,
		tracking: tracking,
		cfg:      cfg,
		log:      log,
	}
}

type SignupRequest struct {
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
	StudentID   string `json:"student_id"`
	Department  string `json:"department"`
	Year        int    `json:"year"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// SignupResult carries the issued session plus, for TOTP-enrolled staff, the
// one-time provisioning URL for their authenticator app.
type SignupResult struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
	TOTPURL string          `json:"totp_url,omitempty"`
}

func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	if req.Role != models.RoleStudent && req.Role != models.RoleStaff {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}
	if req.Email == "" || req.FullName == "" {
		return nil, fmt.Errorf("email and full name are required")
	}

	existing, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, &models.PersistenceError{Op: "check existing profile", Err: err}
	}
	if existing != nil {
		return nil, fmt.Errorf("an account already exists for %s", req.Email)
	}

	profile := &models.Profile{
		ID:          uuid.NewString(),
		Role:        req.Role,
		FullName:    req.FullName,
		StudentID:   req.StudentID,
		Department:  req.Department,
		Year:        req.Year,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}

	// With the LDAP backend the directory owns passwords; nothing is stored
	// locally.
	if s.cfg.Backend == config.AuthBackendLocal {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		profile.PasswordHash = hash
	}

	result := &SignupResult{Profile: profile}

	if req.Role == models.RoleStaff && s.cfg.StaffTOTPEnabled {
		secret, url, err := auth.GenerateTOTPSecret(req.Email)
		if err != nil {
			return nil, err
		}
		profile.TOTPSecret = secret
		result.TOTPURL = url
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, &models.PersistenceError{Op: "create profile", Err: err}
	}

	token, err := s.tokens.IssueToken(profile)
	if err != nil {
		return nil, err
	}
	result.Token = token

	s.beginSessionTracking(profile)
	s.log.Info("New %s account created: %s", profile.Role, profile.ID)

	return result, nil
}

type LoginResult struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// Login verifies credentials against the configured backend and issues a
// session. Staff accounts enrolled in TOTP must also present a valid code.
func (s *AccountService) Login(ctx context.Context, email, password, totpCode string) (*LoginResult, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, &models.PersistenceError{Op: "look up profile", Err: err}
	}
	if profile == nil {
		return nil, models.ErrNotAuthenticated
	}

	switch s.cfg.Backend {
	case config.AuthBackendLDAP:
		if err := s.ldap.Verify(directoryUsername(profile), password); err != nil {
			s.log.Warn("Directory login failed for %s: %v", email, err)
			return nil, models.ErrNotAuthenticated
		}
	default:
		if !auth.CheckPassword(profile.PasswordHash, password) {
			return nil, models.ErrNotAuthenticated
		}
	}

	if profile.Role == models.RoleStaff && s.cfg.StaffTOTPEnabled && profile.TOTPSecret != "" {
		if !auth.VerifyTOTP(profile.TOTPSecret, totpCode) {
			return nil, models.ErrNotAuthenticated
		}
	}

	token, err := s.tokens.IssueToken(profile)
	if err != nil {
		return nil, err
	}

	s.beginSessionTracking(profile)
	s.log.Info("User %s logged in", profile.ID)

	return &LoginResult{Token: token, Profile: profile}, nil
}

// SSOLoginURL returns the identity-provider redirect, or empty when SSO is
// not configured.
func (s *AccountService) SSOLoginURL(state string) string {
	if s.sso == nil {
		return ""
	}
	return s.sso.AuthCodeURL(state)
}

// LoginSSO completes the authorization-code flow and maps the external
// identity onto an existing profile by email.
func (s *AccountService) LoginSSO(ctx context.Context, code string) (*LoginResult, error) {
	if s.sso == nil {
		return nil, fmt.Errorf("single sign-on is not enabled")
	}

	identity, err := s.sso.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, &models.PersistenceError{Op: "look up profile", Err: err}
	}
	if profile == nil {
		return nil, fmt.Errorf("no account registered for %s", identity.Email)
	}

	token, err := s.tokens.IssueToken(profile)
	if err != nil {
		return nil, err
	}

	s.beginSessionTracking(profile)
	s.log.Info("User %s logged in via SSO", profile.ID)

	return &LoginResult{Token: token, Profile: profile}, nil
}

// Logout revokes the session and releases the owner's location watch. Part
// of the scoped acquisition contract: the session that started tracking
// stops it on every exit path.
func (s *AccountService) Logout(session *auth.Session) {
	if session == nil {
		return
	}

	s.tokens.Revoke(session)

	if session.Role == models.RoleStudent {
		s.tracking.StopTracking(session.UserID)
	}

	s.log.Info("User %s logged out", session.UserID)
}

// GetProfile returns the caller's profile record.
func (s *AccountService) GetProfile(ctx context.Context, session *auth.Session) (*models.Profile, error) {
	if !session.Valid() {
		return nil, models.ErrNotAuthenticated
	}

	profile, err := s.profiles.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "load profile", Err: err}
	}
	if profile == nil {
		return nil, models.ErrNotAuthenticated
	}

	return profile, nil
}

type ProfileUpdateRequest struct {
	FullName    string `json:"full_name"`
	StudentID   string `json:"student_id"`
	Department  string `json:"department"`
	Year        int    `json:"year"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile rewrites the caller's mutable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, session *auth.Session, req ProfileUpdateRequest) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	profile.FullName = req.FullName
	profile.StudentID = req.StudentID
	profile.Department = req.Department
	profile.Year = req.Year
	profile.PhoneNumber = req.PhoneNumber

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, &models.PersistenceError{Op: "update profile", Err: err}
	}

	return profile, nil
}

func (s *AccountService) beginSessionTracking(profile *models.Profile) {
	if profile.Role != models.RoleStudent {
		return
	}
	if err := s.tracking.StartTracking(profile.ID); err != nil {
		// Non-fatal: the student can still log in, but high/moderate alerts
		// will be blocked until a fix arrives.
		s.log.Warn("Failed to start location tracking for %s: %v", profile.ID, err)
	}
}

func directoryUsername(profile *models.Profile) string {
	if profile.StudentID != "" {
		return profile.StudentID
	}
	if at := strings.IndexByte(profile.Email, '@'); at > 0 {
		return profile.Email[:at]
	}
	return profile.Email
}
