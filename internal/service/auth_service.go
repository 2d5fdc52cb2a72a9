package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/model"
	"github.com/iliyamo/edu-leads/internal/repository"
	"github.com/iliyamo/edu-leads/internal/utils"
)

// AdminStore is the credential store used by AuthService.
type AdminStore interface {
	Create(ctx context.Context, a *model.Admin) error
	GetByUsername(ctx context.Context, username string) (model.Admin, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// RevocationStore remembers logged-out token IDs until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig is everything AuthService needs from configuration.
type AuthConfig struct {
	SigningSecret string
	TokenTTL      time.Duration
	BcryptCost    int
	StoreTimeout  time.Duration
}

// DefaultTokenTTL is the session lifetime when AuthConfig.TokenTTL is zero.
const DefaultTokenTTL = 24 * time.Hour

// Session is the result of a successful login. Token goes into the
// session cookie and nowhere else.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Admin     model.Admin
}

// AuthService authenticates admins with stateless signed tokens.
type AuthService struct {
	cfg     AuthConfig
	admins  AdminStore
	revoked RevocationStore // nil disables logout revocation
	now     func() time.Time

	// dummyHash is compared against on unknown usernames so both failure
	// paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(cfg AuthConfig, admins AdminStore, revoked RevocationStore) (*AuthService, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	dummy, err := utils.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		cfg:       cfg,
		admins:    admins,
		revoked:   revoked,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// TokenTTL is the lifetime of issued session tokens.
func (s *AuthService) TokenTTL() time.Duration { return s.cfg.TokenTTL }

// Login checks credentials and issues a session token valid for TokenTTL.
// Unknown usernames and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, validationError(ErrMissingField, "username and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Session{}, storeError("load admin", err)
	}
	if err != nil {
		utils.VerifyPassword(s.dummyHash, password)
		return Session{}, authError(ErrInvalidCredentials, "invalid credentials")
	}
	if !utils.VerifyPassword(admin.PasswordHash, password) {
		return Session{}, authError(ErrInvalidCredentials, "invalid credentials")
	}

	principal := model.Principal{AdminID: admin.ID, Username: admin.Username, Role: admin.Role}
	tok, err := utils.NewSessionToken(s.cfg.SigningSecret, principal, s.cfg.TokenTTL, s.now())
	if err != nil {
		return Session{}, &Error{Kind: KindStore, Reason: ErrStoreFailure, Message: "issue session failed", Cause: err}
	}
	logger.Log.WithFields(logrus.Fields{"admin_id": admin.ID, "jti": tok.ID}).Info("admin logged in")
	return Session{Token: tok.Token, ExpiresAt: tok.Exp, Admin: admin}, nil
}

// VerifySession validates a token's signature, expiry and revocation
// status and returns the principal it carries.
func (s *AuthService) VerifySession(ctx context.Context, token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, authError(ErrUnauthenticated, "authentication required")
	}
	claims, err := utils.ParseSessionToken(s.cfg.SigningSecret, token, s.now())
	if err != nil {
		return model.Principal{}, authError(ErrInvalidToken, "invalid or expired session")
	}
	if s.revoked != nil && claims.ID != "" {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		defer cancel()
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Redis outages must not lock every admin out.
			logger.Log.WithError(err).WithField("jti", claims.ID).Warn("revocation lookup failed; accepting token")
		} else if revoked {
			return model.Principal{}, authError(ErrInvalidToken, "invalid or expired session")
		}
	}
	return claims.Principal(), nil
}

// Logout revokes token until its natural expiry when a revocation store is
// configured. Callers clear the cookie regardless; failures are only
// logged.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if s.revoked == nil || token == "" {
		return
	}
	now := s.now()
	claims, err := utils.ParseSessionToken(s.cfg.SigningSecret, token, now)
	if err != nil || claims.ID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.revoked.Revoke(ctx, claims.ID, claims.Expiry().Sub(now)); err != nil {
		logger.Log.WithError(err).WithField("jti", claims.ID).Warn("session revocation failed")
		return
	}
	logger.Log.WithFields(logrus.Fields{"admin_id": claims.Subject, "jti": claims.ID}).Info("admin logged out")
}

// ProvisionInput is the body of an admin provisioning request.
type ProvisionInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin"`
}

// ProvisionAdmin creates an admin. Username or email clashes return
// ErrDuplicateAdmin; the unique indexes settle concurrent attempts.
func (s *AuthService) ProvisionAdmin(ctx context.Context, in ProvisionInput) (model.Admin, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = model.NormalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if err := checkStruct(in); err != nil {
		return model.Admin{}, err
	}
	if in.Role == "" {
		in.Role = model.DefaultAdminRole
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	dup := &Error{Kind: KindDuplicate, Reason: ErrDuplicateAdmin, Message: "an admin with this username or email already exists"}
	exists, err := s.admins.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return model.Admin{}, storeError("check admin", err)
	}
	if exists {
		return model.Admin{}, dup
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.Admin{}, validationError(ErrInvalidField, "password cannot be hashed")
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	admin := model.Admin{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := translate("create admin", s.admins.Create(ctx, &admin), "", dup); err != nil {
		return model.Admin{}, err
	}
	logger.Log.WithFields(logrus.Fields{"admin_id": admin.ID, "username": admin.Username}).Info("admin provisioned")
	return admin, nil
}

// EnsureAdmin provisions in unless its username is already taken. It is
// used to seed the configured default admin at start-up.
func (s *AuthService) EnsureAdmin(ctx context.Context, in ProvisionInput) error {
	_, err := s.ProvisionAdmin(ctx, in)
	if errors.Is(err, ErrDuplicateAdmin) {
		return nil
	}
	return err
}
