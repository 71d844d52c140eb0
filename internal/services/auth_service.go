package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hbapte/portfolio-api/config"
	"github.com/hbapte/portfolio-api/internal/events"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/internal/security"
	"github.com/hbapte/portfolio-api/internal/util"
	"github.com/hbapte/portfolio-api/models"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordExpired      = errors.New("password expired")
	ErrInvalidTwoFactorCode = errors.New("invalid two factor code")
)

// AuthService runs the login flow: email lookup, password check, password
// expiry, optional two-factor challenge, session issuance. Audit entries and
// notification emails are event-bus side effects; the issued session is the
// source of truth and never rolls back on their failure.
type AuthService struct {
	staff     *repositories.StaffRepository
	sessions  *repositories.SessionRepository
	twoFactor *repositories.TwoFactorTokenRepository
	hasher    repositories.PasswordHasher
	signer    security.TokenSigner
	bus       events.Bus
	logger    *slog.Logger
	cfg       config.AuthConfig
}

func NewAuthService(
	staff *repositories.StaffRepository,
	sessions *repositories.SessionRepository,
	twoFactor *repositories.TwoFactorTokenRepository,
	hasher repositories.PasswordHasher,
	signer security.TokenSigner,
	bus events.Bus,
	logger *slog.Logger,
	cfg config.AuthConfig,
) *AuthService {
	return &AuthService{
		staff:     staff,
		sessions:  sessions,
		twoFactor: twoFactor,
		hasher:    hasher,
		signer:    signer,
		bus:       bus,
		logger:    logger,
		cfg:       cfg,
	}
}

type LoginInput struct {
	Email     string
	Password  string
	Code      string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	TwoFactorRequired bool
	Staff             *models.Staff
	Token             string
	Session           *models.Session
}

// Login checks are strictly ordered: email, password, password expiry, two
// factor. Unknown email and wrong password are logged differently but both
// surface as ErrInvalidCredentials so the client cannot tell them apart.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	staff, err := s.staff.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		s.logger.Info("login attempt for unknown email", "ip", util.MaskIP(input.IPAddress))
		s.publishLoginFailed(ctx, input, "unknown email")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.Password, staff.Password) {
		s.logger.Info("login attempt with wrong password", "staff_id", staff.ID)
		s.publishLoginFailed(ctx, input, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if staff.PasswordExpired(s.cfg.PasswordMaxAge) {
		return nil, ErrPasswordExpired
	}

	if staff.IsTwoFactorEnabled {
		if input.Code == "" {
			token, err := s.twoFactor.Create(ctx, staff.Email, s.cfg.TwoFactorTTL)
			if err != nil {
				return nil, err
			}
			s.publish(ctx, events.Event{
				Type: events.TypeTwoFactorRequested,
				Payload: map[string]string{
					"email": staff.Email,
					"code":  token.Token,
				},
			})
			return &LoginResult{TwoFactorRequired: true}, nil
		}

		if err := s.twoFactor.Consume(ctx, staff.Email, input.Code); err != nil {
			if errors.Is(err, repositories.ErrInvalidTwoFactorCode) ||
				errors.Is(err, repositories.ErrTwoFactorCodeExpired) {
				s.publishLoginFailed(ctx, input, "invalid two factor code")
				return nil, ErrInvalidTwoFactorCode
			}
			return nil, err
		}
	}

	rawToken, err := s.signer.Generate(ctx, staff.ID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, repositories.CreateSessionInput{
		StaffID:     staff.ID,
		Email:       staff.Email,
		HashedToken: security.HashToken(rawToken),
		TTL:         s.cfg.SessionTTL,
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.TypeLogin,
		Payload: map[string]string{
			"email":   staff.Email,
			"staffId": staff.ID,
			"ip":      util.MaskIP(input.IPAddress),
		},
	})

	return &LoginResult{
		Staff:   staff,
		Token:   rawToken,
		Session: session,
	}, nil
}

// Authenticate resolves a raw session token to its staff member. Absent,
// expired, or orphaned sessions all yield (nil, nil, nil).
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*models.Staff, *models.Session, error) {
	if rawToken == "" {
		return nil, nil, nil
	}

	session, err := s.sessions.FindByToken(ctx, security.HashToken(rawToken))
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, nil
	}

	staff, err := s.staff.FindByID(ctx, session.StaffID)
	if err != nil {
		return nil, nil, err
	}
	if staff == nil {
		return nil, nil, nil
	}

	return staff, session, nil
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	hashed := security.HashToken(rawToken)

	session, err := s.sessions.FindByToken(ctx, hashed)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	if err := s.sessions.DeleteByToken(ctx, hashed); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type: events.TypeLogout,
		Payload: map[string]string{
			"email":   session.Email,
			"staffId": session.StaffID,
		},
	})
	return nil
}

func (s *AuthService) publishLoginFailed(ctx context.Context, input LoginInput, reason string) {
	s.publish(ctx, events.Event{
		Type: events.TypeLoginFailed,
		Payload: map[string]string{
			"email":  input.Email,
			"reason": reason,
			"ip":     util.MaskIP(input.IPAddress),
		},
	})
}

func (s *AuthService) publish(ctx context.Context, evt events.Event) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish event", "event_type", evt.Type, "error", err)
	}
}
