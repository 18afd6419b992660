package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	repo "github.com/oksasatya/user-accounts-service/internal/domain/repository"
	"github.com/oksasatya/user-accounts-service/pkg/helpers"
	"github.com/oksasatya/user-accounts-service/pkg/metrics"
	"github.com/oksasatya/user-accounts-service/pkg/validation"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// PasswordCipher is the reversible scheme used for stored passwords.
type PasswordCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Service struct {
	Repo      repo.UserRepository
	Cipher    PasswordCipher
	JWT       *helpers.JWTManager
	Logger    *logrus.Logger
	Sessions  repo.SessionStore
	Directory repo.UserDirectory
	Metrics   *metrics.Metrics

	EnforcePasswordPolicy bool

	// decrypted when the username is unknown so a miss costs the same
	// key derivation as a wrong password
	decoy string
}

type Option func(*Service)

func WithSessions(s repo.SessionStore) Option { return func(svc *Service) { svc.Sessions = s } }

func WithDirectory(d repo.UserDirectory) Option { return func(svc *Service) { svc.Directory = d } }

func WithMetrics(m *metrics.Metrics) Option { return func(svc *Service) { svc.Metrics = m } }

func WithPasswordPolicy(enabled bool) Option {
	return func(svc *Service) { svc.EnforcePasswordPolicy = enabled }
}

func NewService(repo repo.UserRepository, cipher PasswordCipher, jwt *helpers.JWTManager, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		Repo:                  repo,
		Cipher:                cipher,
		JWT:                   jwt,
		Logger:                logger,
		EnforcePasswordPolicy: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cipher != nil {
		s.decoy, _ = cipher.Encrypt("decoy-password")
	}
	return s
}

// UserInput is the writable part of a user record. Password is plaintext.
type UserInput struct {
	Username string
	Password string
	Branch   string
	Role     string
	Status   entity.UserStatus
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Claims    entity.Claims
	Token     string
	ExpiresAt time.Time
}

// ValidatePasswordStrength reports whether p satisfies the password policy.
func (s *Service) ValidatePasswordStrength(p string) bool {
	return validation.IsStrongPassword(p)
}

// MaxPasswordBytes keeps base64(salt|iv|tag|ciphertext) within the
// varchar(256) password column.
const MaxPasswordBytes = 150

func (s *Service) checkPassword(p string) error {
	if p == "" {
		return validationError("password is required", nil)
	}
	if len(p) > MaxPasswordBytes {
		return validationError(ErrPasswordTooLong.Error(), ErrPasswordTooLong)
	}
	if s.EnforcePasswordPolicy && !s.ValidatePasswordStrength(p) {
		return validationError(ErrWeakPassword.Error(), ErrWeakPassword)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in UserInput) (*entity.User, error) {
	if in.Username == "" {
		return nil, validationError("username is required", nil)
	}
	status := in.Status
	if status == "" {
		status = entity.StatusActive
	}
	if !status.Valid() {
		return nil, validationError(ErrInvalidStatus.Error(), ErrInvalidStatus)
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	enc, err := s.Cipher.Encrypt(in.Password)
	if err != nil {
		s.logError("encrypt password failed", err, logrus.Fields{"username": in.Username})
		return nil, validationError("Error creating user", err)
	}

	u := &entity.User{
		Username: in.Username,
		Password: enc,
		Branch:   in.Branch,
		Role:     in.Role,
		Status:   status,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		s.logError("create user failed", err, logrus.Fields{"username": in.Username})
		return nil, validationError("Error creating user", err)
	}

	s.index(ctx, u)
	s.logInfo("user created", logrus.Fields{"user_id": u.ID, "username": u.Username})
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		s.logError("list users failed", err, nil)
		return nil, validationError("Error finding users", err)
	}
	return users, nil
}

// Update overwrites username, branch, role and status. The stored ciphertext
// is replaced only when in.Password is set; an empty status keeps the
// current one.
func (s *Service) Update(ctx context.Context, id int64, in UserInput) (*entity.User, error) {
	if in.Username == "" {
		return nil, validationError("username is required", nil)
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("User not found", err)
		}
		s.logError("load user for update failed", err, logrus.Fields{"user_id": id})
		return nil, validationError("Error updating user", err)
	}

	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, validationError(ErrInvalidStatus.Error(), ErrInvalidStatus)
		}
		u.Status = in.Status
	}
	if in.Password != "" {
		if err := s.checkPassword(in.Password); err != nil {
			return nil, err
		}
		enc, err := s.Cipher.Encrypt(in.Password)
		if err != nil {
			s.logError("encrypt password failed", err, logrus.Fields{"user_id": id})
			return nil, validationError("Error updating user", err)
		}
		u.Password = enc
	}
	u.Username = in.Username
	u.Branch = in.Branch
	u.Role = in.Role

	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("User not found", err)
		}
		s.logError("update user failed", err, logrus.Fields{"user_id": id})
		return nil, validationError("Error updating user", err)
	}

	// claims embedded in outstanding tokens are stale now
	s.dropSession(ctx, id)
	s.index(ctx, u)
	s.logInfo("user updated", logrus.Fields{"user_id": u.ID, "username": u.Username})
	return u, nil
}

// Remove deletes the user; removing an unknown id succeeds.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		s.logError("delete user failed", err, logrus.Fields{"user_id": id})
		return validationError("Error deleting user", err)
	}
	s.dropSession(ctx, id)
	if s.Directory != nil {
		if err := s.Directory.Remove(ctx, id); err != nil {
			s.logWarn("directory remove failed", err, logrus.Fields{"user_id": id})
		}
	}
	s.logInfo("user deleted", logrus.Fields{"user_id": id})
	return nil
}

// Authenticate checks the credentials and issues a signed session token.
// Every failure yields the same error; the cause is only logged.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	reject := func(reason string, err error) (*AuthResult, error) {
		s.Metrics.ObserveAuth(metrics.AuthFailure)
		s.logWarn("authentication rejected", err, logrus.Fields{"username": username, "reason": reason})
		return nil, authenticationError(ErrInvalidCredentials.Error(), ErrInvalidCredentials)
	}

	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		_, _ = s.Cipher.Decrypt(s.decoy)
		if errors.Is(err, repo.ErrNotFound) {
			return reject("unknown username", nil)
		}
		return reject("lookup failed", err)
	}

	plain, err := s.Cipher.Decrypt(u.Password)
	if err != nil {
		return reject("stored password unreadable", err)
	}
	if subtle.ConstantTimeCompare([]byte(plain), []byte(password)) != 1 {
		return reject("password mismatch", nil)
	}

	claims := entity.ClaimsOf(u)
	token, exp, err := s.JWT.Generate(helpers.Claims{
		Username: claims.Username,
		UserID:   claims.UserID,
		Role:     claims.Role,
		Branch:   claims.Branch,
		Status:   string(claims.Status),
	})
	if err != nil {
		return reject("sign token failed", err)
	}

	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, claims, time.Until(exp)); err != nil {
			return reject("save session failed", err)
		}
	}

	s.Metrics.ObserveAuth(metrics.AuthSuccess)
	s.logInfo("user authenticated", logrus.Fields{"user_id": u.ID, "username": u.Username})
	return &AuthResult{Claims: claims, Token: token, ExpiresAt: exp}, nil
}

// VerifyToken validates signature and expiry and, when sessions are tracked,
// that the user's session is still alive.
func (s *Service) VerifyToken(ctx context.Context, token string) (entity.Claims, error) {
	c, err := s.JWT.Parse(token)
	if err != nil {
		s.logDebug("token rejected", err)
		return entity.Claims{}, authenticationError(ErrInvalidToken.Error(), err)
	}
	if s.Sessions != nil {
		ok, err := s.Sessions.Exists(ctx, c.UserID)
		if err != nil || !ok {
			s.logDebug("session missing", err)
			return entity.Claims{}, authenticationError(ErrInvalidToken.Error(), ErrInvalidToken)
		}
	}
	return entity.Claims{
		Username: c.Username,
		UserID:   c.UserID,
		Role:     c.Role,
		Branch:   c.Branch,
		Status:   entity.UserStatus(c.Status),
	}, nil
}

// SearchUsers queries the user directory. Without a directory it returns
// an empty result.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	if s.Directory == nil {
		return []entity.User{}, nil
	}
	switch {
	case size <= 0:
		size = defaultSearchSize
	case size > maxSearchSize:
		size = maxSearchSize
	}
	users, err := s.Directory.Search(ctx, q, size)
	if err != nil {
		s.logError("search users failed", err, nil)
		return nil, validationError("Error searching users", err)
	}
	return users, nil
}

func (s *Service) index(ctx context.Context, u *entity.User) {
	if s.Directory == nil {
		return
	}
	if err := s.Directory.Index(ctx, u); err != nil {
		s.logWarn("directory index failed", err, logrus.Fields{"user_id": u.ID})
	}
}

func (s *Service) dropSession(ctx context.Context, id int64) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.Delete(ctx, id); err != nil {
		s.logWarn("drop session failed", err, logrus.Fields{"user_id": id})
	}
}

func (s *Service) logError(msg string, err error, fields logrus.Fields) {
	if s.Logger != nil {
		helpers.LogError(s.Logger, msg, err, fields)
	}
}

func (s *Service) logWarn(msg string, err error, fields logrus.Fields) {
	if s.Logger != nil {
		helpers.LogWarn(s.Logger, msg, err, fields)
	}
}

func (s *Service) logInfo(msg string, fields logrus.Fields) {
	if s.Logger != nil {
		helpers.LogInfo(s.Logger, msg, fields)
	}
}

func (s *Service) logDebug(msg string, err error) {
	if s.Logger != nil {
		s.Logger.WithError(err).Debug(msg)
	}
}
