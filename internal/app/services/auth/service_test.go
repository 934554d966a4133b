package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourhub/internal/app/dto"
	"tourhub/internal/app/validation"
	"tourhub/internal/domain/authz"
	"tourhub/internal/domain/shared/apperr"
	"tourhub/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(actor authz.Actor) (string, time.Time, error) {
	return "token-" + actor.ID + "-" + string(actor.Role), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), nil
}

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) SendVerificationCode(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type fixture struct {
	svc    *Service
	mailer *mailerMock
	clock  *time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	mailer := &mailerMock{}
	svc := &Service{
		Users:      memory.NewUserRepository(),
		Passwords:  plainHasher{},
		Tokens:     stubIssuer{},
		Codes:      memory.NewCodeStore(func() time.Time { return *clock }),
		Mailer:     mailer,
		Validator:  validation.New(),
		CodeTTL:    10 * time.Minute,
		CodeSource: strings.NewReader(strings.Repeat("\x01", 64)),
		Now:        func() time.Time { return *clock },
	}
	return &fixture{svc: svc, mailer: mailer, clock: clock}
}

func (f *fixture) register(t *testing.T, email, role string) dto.AuthResult {
	t.Helper()
	out, err := f.svc.Register(context.Background(), dto.RegisterRequest{Email: email, Password: "s3cret-pass", Name: "Ana", Role: role})
	require.NoError(t, err)
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	out := f.register(t, "Ana@Example.com", "")
	assert.Equal(t, "ana@example.com", out.User.Email)
	assert.Equal(t, "customer", out.User.Role)
	assert.Equal(t, "token-"+out.User.ID+"-customer", out.Token)

	_, err := f.svc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "another-pass", Name: "Ana"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = f.svc.Register(ctx, dto.RegisterRequest{Email: "root@example.com", Password: "another-pass", Name: "Root", Role: "admin"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	login, err := f.svc.Login(ctx, dto.LoginRequest{Email: "ANA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, login.User.ID)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestMe(t *testing.T) {
	f := setup(t)
	out := f.register(t, "prov@example.com", "provider")

	me, err := f.svc.Me(context.Background(), authz.Actor{ID: out.User.ID, Role: "provider"})
	require.NoError(t, err)
	assert.Equal(t, "provider", me.Role)

	_, err = f.svc.Me(context.Background(), authz.Anonymous)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestVerificationCodeFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "")

	var sent string
	f.mailer.On("SendVerificationCode", mock.Anything, "ana@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(2) }).
		Return(nil)

	require.NoError(t, f.svc.SendVerificationCode(ctx, dto.SendCodeRequest{Email: "ana@example.com"}))
	require.Len(t, sent, 6)

	wrong := "000000"
	if sent == wrong {
		wrong = "111111"
	}
	_, err := f.svc.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "ana@example.com", Code: wrong})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	user, err := f.svc.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "ana@example.com", Code: sent})
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)

	_, err = f.svc.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "ana@example.com", Code: sent})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "codes are single use")
}

func TestVerificationCodeExpires(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.register(t, "ana@example.com", "")

	var sent string
	f.mailer.On("SendVerificationCode", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.String(2) }).
		Return(nil)
	require.NoError(t, f.svc.SendVerificationCode(ctx, dto.SendCodeRequest{Email: "ana@example.com"}))

	*f.clock = f.clock.Add(11 * time.Minute)
	_, err := f.svc.VerifyCode(ctx, dto.VerifyCodeRequest{Email: "ana@example.com", Code: sent})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = f.svc.SendVerificationCode(ctx, dto.SendCodeRequest{Email: "ghost@example.com"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
