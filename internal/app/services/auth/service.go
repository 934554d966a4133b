package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/policies"
	"tourhub/internal/app/validation"
	"tourhub/internal/domain/authz"
	"tourhub/internal/domain/shared/apperr"
	domainuser "tourhub/internal/domain/user"
	"tourhub/internal/domain/verification"
)

const defaultCodeTTL = 10 * time.Minute

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type Service struct {
	Users      domainuser.Repository
	Passwords  policies.PasswordHasher
	Tokens     policies.TokenIssuer
	Codes      verification.CodeStore
	Mailer     policies.Mailer
	Validator  *validation.Validator
	CodeTTL    time.Duration
	CodeSource io.Reader
	Logger     *slog.Logger
	Now        func() time.Time
}

func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.AuthResult{}, err
	}
	if err := s.validate(req); err != nil {
		return dto.AuthResult{}, err
	}
	role, err := domainuser.ParseRole(req.Role)
	if err != nil || role == domainuser.RoleAdmin {
		return dto.AuthResult{}, apperr.Validation("validation failed", apperr.FieldError{Field: "role", Message: "must be one of customer provider"})
	}
	hash, err := s.Passwords.Hash(req.Password)
	if err != nil {
		return dto.AuthResult{}, err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return dto.AuthResult{}, apperr.Validation(err.Error())
	}
	if err := s.Users.Save(ctx, user); err != nil {
		if errors.Is(err, domainuser.ErrEmailAlreadyUsed) {
			return dto.AuthResult{}, apperr.Conflict("email already registered", err)
		}
		return dto.AuthResult{}, err
	}
	result, err := s.issue(user)
	if err != nil {
		return dto.AuthResult{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.AuthResult{}, err
	}
	if err := s.validate(req); err != nil {
		return dto.AuthResult{}, err
	}
	user, err := s.Users.ByEmail(ctx, domainuser.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return dto.AuthResult{}, invalidCredentials()
		}
		return dto.AuthResult{}, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, req.Password); err != nil {
		return dto.AuthResult{}, invalidCredentials()
	}
	result, err := s.issue(user)
	if err != nil {
		return dto.AuthResult{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return result, nil
}

// Me returns the profile of an authenticated actor.
func (s *Service) Me(ctx context.Context, actor authz.Actor) (dto.User, error) {
	if !actor.Authenticated() {
		return dto.User{}, apperr.Unauthenticated("authentication required")
	}
	user, err := s.Users.ByID(ctx, domainuser.ID(actor.ID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return dto.User{}, apperr.Unauthenticated("account no longer exists")
		}
		return dto.User{}, err
	}
	return dto.MapUser(user), nil
}

// SendVerificationCode stores a fresh code for a registered email and hands it
// to the mailer. A new code replaces any earlier one.
func (s *Service) SendVerificationCode(ctx context.Context, req dto.SendCodeRequest) error {
	if s.Codes == nil || s.Mailer == nil {
		return errors.New("auth: verification code store and mailer required")
	}
	if err := s.validate(req); err != nil {
		return err
	}
	email := domainuser.NormalizeEmail(req.Email)
	if _, err := s.Users.ByEmail(ctx, email); err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return apperr.NotFound("user not found", err)
		}
		return err
	}
	code, err := verification.NewCode(s.CodeSource)
	if err != nil {
		return err
	}
	if err := s.Codes.Put(ctx, verification.EmailKey(email), code, s.codeTTL()); err != nil {
		return err
	}
	if err := s.Mailer.SendVerificationCode(ctx, email, code); err != nil {
		return apperr.ExternalProvider("could not send verification code", err)
	}
	if s.Logger != nil {
		s.Logger.Info("verification code issued", "email", email, "ttl", s.codeTTL())
	}
	return nil
}

// VerifyCode consumes a matching code and marks the email verified.
func (s *Service) VerifyCode(ctx context.Context, req dto.VerifyCodeRequest) (dto.User, error) {
	if s.Codes == nil {
		return dto.User{}, errors.New("auth: verification code store required")
	}
	if err := s.validate(req); err != nil {
		return dto.User{}, err
	}
	email := domainuser.NormalizeEmail(req.Email)
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return dto.User{}, apperr.NotFound("user not found", err)
		}
		return dto.User{}, err
	}
	if err := verification.Check(ctx, s.Codes, verification.EmailKey(email), req.Code); err != nil {
		if errors.Is(err, verification.ErrCodeNotFound) || errors.Is(err, verification.ErrCodeMismatch) {
			return dto.User{}, apperr.Validation("invalid or expired code", apperr.FieldError{Field: "code", Message: "is invalid or expired"})
		}
		return dto.User{}, err
	}
	user.MarkVerified(s.now())
	if err := s.Users.Save(ctx, user); err != nil {
		return dto.User{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("email verified", "user_id", user.ID)
	}
	return dto.MapUser(user), nil
}

func (s *Service) issue(user *domainuser.User) (dto.AuthResult, error) {
	token, expiresAt, err := s.Tokens.Issue(authz.Actor{ID: string(user.ID), Role: user.Role})
	if err != nil {
		return dto.AuthResult{}, err
	}
	return dto.AuthResult{Token: token, ExpiresAt: expiresAt, User: dto.MapUser(user)}, nil
}

func (s *Service) validate(v any) error {
	if s.Validator == nil {
		return nil
	}
	return s.Validator.Struct(v)
}

func (s *Service) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return defaultCodeTTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token issuer required")
	default:
		return nil
	}
}

func invalidCredentials() error {
	return &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "invalid email or password", Err: ErrInvalidCredentials}
}
