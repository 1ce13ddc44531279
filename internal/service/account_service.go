package service

import (
	"backend/internal/apperror"
	"backend/internal/auth"
	"backend/internal/mailer"
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Client-facing messages. Not-found and wrong-password deliberately share
// one generic message so a caller cannot probe which factor failed.
const (
	MsgBadCredentials     = "Nom d'utilisateur ou mot de passe incorrect."
	MsgUnverified         = "Veuillez vérifier votre e-mail."
	MsgAuthError          = "Erreur lors de l'authentification."
	MsgUsernameTaken      = "Nom d'utilisateur déjà pris."
	MsgEmailTaken         = "Email déjà utilisé."
	MsgVerificationFailed = "Erreur lors de l'envoi de l'email de vérification."
	MsgNotificationFailed = "Erreur lors de l'envoi de la notification par e-mail."
	MsgResetMailFailed    = "Erreur lors de l'envoi de l'email de réinitialisation."
)

// DTOs for request validation.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Telephone  string `json:"telephone"`
	Department string `json:"department"`
	// IsCalculator is honored only by the generic /api/users/register
	// endpoint, which can create either kind.
	IsCalculator bool `json:"isCalculator"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token  string
	UserID uint64
	Scopes []string
}

// UpdateRequest carries a partial profile update; nil fields are left
// untouched.
type UpdateRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Telephone *string `json:"telephone"`
	Password  *string `json:"password"`
}

// RegisterPolicy captures how one registration endpoint behaves. The
// endpoints disagree on these points on purpose; the differences are part
// of the preserved contract.
type RegisterPolicy struct {
	RoleLabel        string // fixed role tag, empty for plain users
	Verified         bool   // verified state assigned at registration
	UnifiedIndex     bool   // conflict-check against all kinds instead of just this one
	SendVerification bool   // send the verification email after persisting
}

// EventPublisher receives account lifecycle events for the dashboard feed.
type EventPublisher interface {
	Publish(event, kind, username, email string)
}

// AccountService is the identity flow for one account kind under one
// endpoint policy. Registration, login, verification, password reset and
// profile CRUD all run through it; the three kinds share this single
// implementation.
type AccountService interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	VerifyEmail(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	GetByID(ctx context.Context, id uint64) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, id uint64, req UpdateRequest) error
	Delete(ctx context.Context, id uint64) error
}

// AccountServiceConfig wires one service instance.
type AccountServiceConfig struct {
	Kind      string // client-facing kind label, e.g. "Utilisateur"
	KindKey   string // event kind key, e.g. "user"
	Policy    RegisterPolicy
	Repo      repository.AccountRepository
	Directory repository.DirectoryRepository
	Hasher    *auth.PasswordHasher
	Tokens    *auth.TokenIssuer
	Authn     auth.Authenticator
	Notifier  mailer.Notifier
	Events    EventPublisher
	Log       *logrus.Logger
}

type accountService struct {
	cfg AccountServiceConfig
}

// NewAccountService returns a new instance of AccountService.
func NewAccountService(cfg AccountServiceConfig) AccountService {
	return &accountService{cfg: cfg}
}

func (s *accountService) notFoundMsg() string {
	return fmt.Sprintf("%s non trouvé.", s.cfg.Kind)
}

// usernameExists consults either the kind's own index or the unified
// directory, per policy.
func (s *accountService) usernameExists(ctx context.Context, username string) bool {
	if s.cfg.Policy.UnifiedIndex {
		_, err := s.cfg.Directory.FindByUsername(ctx, username)
		return err == nil
	}
	_, err := s.cfg.Repo.GetByUsername(ctx, username)
	return err == nil
}

func (s *accountService) emailExists(ctx context.Context, email string) bool {
	if s.cfg.Policy.UnifiedIndex {
		_, err := s.cfg.Directory.FindByEmail(ctx, email)
		return err == nil
	}
	_, err := s.cfg.Repo.GetByEmail(ctx, email)
	return err == nil
}

func (s *accountService) Register(ctx context.Context, req RegisterRequest) error {
	if s.usernameExists(ctx, req.Username) {
		return apperror.Conflict(MsgUsernameTaken)
	}
	if s.emailExists(ctx, req.Email) {
		return apperror.Conflict(MsgEmailTaken)
	}

	hashed, err := s.cfg.Hasher.Hash(req.Password)
	if err != nil {
		return apperror.Internal(MsgAuthError)
	}

	acct := &model.Account{
		Username:   req.Username,
		Email:      req.Email,
		Telephone:  req.Telephone,
		Password:   hashed,
		Role:       s.cfg.Policy.RoleLabel,
		Department: req.Department,
		Verified:   s.cfg.Policy.Verified,
	}

	if err := s.cfg.Repo.Create(ctx, acct); err != nil {
		// Lost the race against a concurrent registration: the unique
		// index wins, report it as the same conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict(MsgUsernameTaken)
		}
		s.cfg.Log.WithError(err).Error("account insert failed")
		return apperror.Internal("Erreur lors de l'enregistrement.")
	}

	if s.cfg.Policy.SendVerification {
		if err := s.cfg.Notifier.SendVerificationEmail(ctx, acct.Email, acct.Username); err != nil {
			// The account stays persisted; only the response reports failure.
			s.cfg.Log.WithError(err).WithField("email", acct.Email).
				Error("account persisted but the verification email failed")
			return apperror.Internal(MsgVerificationFailed)
		}
	}

	s.cfg.Events.Publish("register", s.cfg.KindKey, acct.Username, acct.Email)
	return nil
}

// Login runs the full gate sequence: lookup, verification gate, password
// comparison, second authority check, token issuance, login notification.
// Each gate fails fast.
func (s *accountService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := s.cfg.Log.WithField("email", req.Email)

	acct, err := s.cfg.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Warn("login attempt for unknown email")
		return nil, apperror.Unauthorized(MsgBadCredentials)
	}

	// The verification gate is checked before the password on purpose.
	if !acct.Verified {
		log.Warn("login attempt on unverified account")
		return nil, apperror.Unverified(MsgUnverified)
	}

	if !s.cfg.Hasher.Verify(req.Password, acct.Password) {
		return nil, apperror.Unauthorized(MsgBadCredentials)
	}

	// Second authority check through the directory; its own failure cause
	// is logged but not surfaced.
	authorities, err := s.cfg.Authn.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		log.WithError(err).Error("authority check failed")
		return nil, apperror.Unauthorized(MsgAuthError)
	}
	scopes := auth.Scopes(authorities)

	token, err := s.cfg.Tokens.Issue(acct.Email, acct.ID, scopes)
	if err != nil {
		log.WithError(err).Error("token signing failed")
		return nil, apperror.Unauthorized(MsgAuthError)
	}

	if err := s.cfg.Notifier.SendLoginNotification(ctx, acct.Email, acct.Username); err != nil {
		// The token was already issued; the original contract still
		// reports the whole login as failed.
		log.WithError(err).Error("login succeeded but the notification email failed")
		return nil, apperror.Internal(MsgNotificationFailed)
	}

	s.cfg.Events.Publish("login", s.cfg.KindKey, acct.Username, acct.Email)
	log.WithField("scopes", scopes).Info("login succeeded")

	return &LoginResult{Token: token, UserID: acct.ID, Scopes: scopes}, nil
}

// VerifyEmail flips the verification gate. Re-verifying an already
// verified account succeeds silently.
func (s *accountService) VerifyEmail(ctx context.Context, email string) error {
	acct, err := s.cfg.Repo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NotFound(s.notFoundMsg())
	}

	acct.Verified = true
	if err := s.cfg.Repo.Update(ctx, acct); err != nil {
		s.cfg.Log.WithError(err).Error("verification update failed")
		return apperror.Internal("Erreur lors de la vérification.")
	}

	s.cfg.Events.Publish("verify", s.cfg.KindKey, acct.Username, acct.Email)
	return nil
}

// ForgotPassword replaces the stored hash with a fresh random password and
// mails the plaintext. The replacement is not rolled back when the mail
// fails.
func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	acct, err := s.cfg.Repo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.NotFound(s.notFoundMsg())
	}

	newPassword, err := auth.GenerateRandomPassword()
	if err != nil {
		s.cfg.Log.WithError(err).Error("password generation failed")
		return apperror.Internal(MsgResetMailFailed)
	}

	hashed, err := s.cfg.Hasher.Hash(newPassword)
	if err != nil {
		return apperror.Internal(MsgResetMailFailed)
	}

	acct.Password = hashed
	if err := s.cfg.Repo.Update(ctx, acct); err != nil {
		s.cfg.Log.WithError(err).Error("password update failed")
		return apperror.Internal(MsgResetMailFailed)
	}

	if err := s.cfg.Notifier.SendPasswordResetEmail(ctx, acct.Email, newPassword); err != nil {
		s.cfg.Log.WithError(err).WithField("email", acct.Email).
			Error("password changed but the reset email failed")
		return apperror.Internal(MsgResetMailFailed)
	}

	return nil
}

func (s *accountService) GetByID(ctx context.Context, id uint64) (*model.Account, error) {
	acct, err := s.cfg.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound(s.notFoundMsg())
	}
	return acct, nil
}

func (s *accountService) List(ctx context.Context) ([]model.Account, error) {
	accts, err := s.cfg.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Erreur lors de la récupération des comptes.")
	}
	return accts, nil
}

func (s *accountService) Update(ctx context.Context, id uint64, req UpdateRequest) error {
	acct, err := s.cfg.Repo.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound(s.notFoundMsg())
	}

	if req.Username != nil && *req.Username != acct.Username {
		if s.usernameExists(ctx, *req.Username) {
			return apperror.Conflict(MsgUsernameTaken)
		}
		acct.Username = *req.Username
	}

	if req.Email != nil && *req.Email != acct.Email {
		if s.emailExists(ctx, *req.Email) {
			return apperror.Conflict(MsgEmailTaken)
		}
		acct.Email = *req.Email
	}

	if req.Telephone != nil {
		acct.Telephone = *req.Telephone
	}

	if req.Password != nil {
		hashed, err := s.cfg.Hasher.Hash(*req.Password)
		if err != nil {
			return apperror.Internal("Erreur lors de la mise à jour.")
		}
		acct.Password = hashed
	}

	if err := s.cfg.Repo.Update(ctx, acct); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict(MsgUsernameTaken)
		}
		s.cfg.Log.WithError(err).Error("profile update failed")
		return apperror.Internal("Erreur lors de la mise à jour.")
	}
	return nil
}

func (s *accountService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.cfg.Repo.GetByID(ctx, id); err != nil {
		return apperror.NotFound(s.notFoundMsg())
	}
	if err := s.cfg.Repo.Delete(ctx, id); err != nil {
		s.cfg.Log.WithError(err).Error("account delete failed")
		return apperror.Internal("Erreur lors de la suppression.")
	}
	return nil
}
