//go:build !integration

package user

import (
	"campusEvents/domain"
	"campusEvents/pkg/utils"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

const testVerificationKey = "0123456789abcdef"

type memUserRepo struct {
	users  map[uint]domain.User
	nextID uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uint]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *memUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) UpdateEmailVerification(_ context.Context, id uint, v bool) error {
	u := r.users[id]
	u.IsVerified = v
	r.users[id] = u
	return nil
}

type captureMailer struct {
	to      string
	message string
	err     error
}

func (m *captureMailer) SendEmail(_ context.Context, _, toEmail, _, message string) error {
	m.to = toEmail
	m.message = message
	return m.err
}

type memTokens struct {
	sessions map[string]domain.Session
	lookup   map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{sessions: map[string]domain.Session{}, lookup: map[string]string{}}
}

func (m *memTokens) StoreToken(_ context.Context, s domain.Session, _ time.Duration) error {
	if prev, ok := m.sessions[s.UserID]; ok {
		delete(m.lookup, prev.Token)
	}
	m.sessions[s.UserID] = s
	m.lookup[s.Token] = s.UserID
	return nil
}

func (m *memTokens) GetTokenData(_ context.Context, userID string) (*domain.Session, error) {
	s, ok := m.sessions[userID]
	if !ok {
		return nil, errors.New("token not found")
	}
	return &s, nil
}

func (m *memTokens) ValidateToken(_ context.Context, token string) (string, error) {
	id, ok := m.lookup[token]
	if !ok {
		return "", errors.New("token not found or expired")
	}
	return id, nil
}

func (m *memTokens) DeleteToken(_ context.Context, userID, token string) error {
	delete(m.sessions, userID)
	delete(m.lookup, token)
	return nil
}

type fixture struct {
	repo   *memUserRepo
	mailer *captureMailer
	tokens *memTokens
	svc    *userService
}

func newFixture() *fixture {
	utils.InitJWT("test-secret", time.Hour)
	f := &fixture{repo: newMemUserRepo(), mailer: &captureMailer{}, tokens: newMemTokens()}
	f.svc = NewUserService(f.repo, validator.New(), f.mailer, f.tokens, testVerificationKey, "http://localhost:8080")
	return f
}

func (f *fixture) registerVerified(t *testing.T, email string) domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), &domain.User{FullName: "Ada", Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.repo.UpdateEmailVerification(context.Background(), u.ID, true); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return u
}

func TestRegister_DefaultsAndNormalises(t *testing.T) {
	f := newFixture()

	u, err := f.svc.Register(context.Background(), &domain.User{
		FullName:  "Ada",
		Email:     "ada@uni.test",
		Password:  "secret1",
		Interests: []string{" Music", "music", "TECH", ""},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != domain.RoleStudent {
		t.Fatalf("role = %q, want student", u.Role)
	}
	if !reflect.DeepEqual([]string(u.Interests), []string{"music", "tech"}) {
		t.Fatalf("interests = %v", u.Interests)
	}
	if u.Password != "" {
		t.Fatal("password hash leaked")
	}
	if f.repo.users[u.ID].IsVerified {
		t.Fatal("new user should not be verified")
	}
	if f.mailer.to != "ada@uni.test" || !strings.Contains(f.mailer.message, "/api/v1/users/email-verification/") {
		t.Fatalf("verification mail = %q to %q", f.mailer.message, f.mailer.to)
	}
}

func TestRegister_Rules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, &domain.User{Email: "nope", Password: "secret1"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad email: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Register(ctx, &domain.User{Email: "a@uni.test", Password: "123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short password: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Register(ctx, &domain.User{Email: "a@uni.test", Password: "secret1", Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("admin self-registration: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Register(ctx, &domain.User{Email: "a@uni.test", Password: "secret1", Role: domain.RoleOrganiser}); err != nil {
		t.Fatalf("organiser registration: %v", err)
	}
	if _, err := f.svc.Register(ctx, &domain.User{Email: "a@uni.test", Password: "secret1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email: expected ErrConflict, got %v", err)
	}
}

func TestRegister_MailFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.mailer.err = errors.New("mailjet down")

	if _, err := f.svc.Register(context.Background(), &domain.User{Email: "a@uni.test", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func TestVerifyEmail_RoundTrip(t *testing.T) {
	f := newFixture()
	u, err := f.svc.Register(context.Background(), &domain.User{Email: "ada@uni.test", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	idx := strings.Index(f.mailer.message, "/email-verification/")
	code := f.mailer.message[idx+len("/email-verification/"):]
	code = code[:strings.Index(code, "</br>")]

	if err := f.svc.VerifyEmail(context.Background(), code); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !f.repo.users[u.ID].IsVerified {
		t.Fatal("user not verified")
	}
	if err := f.svc.VerifyEmail(context.Background(), code); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("second verification: expected ErrValidation, got %v", err)
	}
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Register(context.Background(), &domain.User{Email: "ada@uni.test", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	link, err := f.svc.verificationLink("ada@uni.test")
	if err != nil {
		t.Fatalf("verificationLink: %v", err)
	}
	code := link[strings.LastIndex(link, "/")+1:]

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	if err := f.svc.VerifyEmail(context.Background(), code); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for an expired link, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, &domain.User{Email: "new@uni.test", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := f.svc.Login(ctx, "new@uni.test", "secret1", "", ""); err == nil {
		t.Fatal("unverified login should fail")
	}

	u := f.registerVerified(t, "ada@uni.test")
	if _, _, err := f.svc.Login(ctx, "ada@uni.test", "wrong", "", ""); err == nil {
		t.Fatal("wrong password should fail")
	}

	token, got, err := f.svc.Login(ctx, "ada@uni.test", "secret1", "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID || got.Password != "" {
		t.Fatalf("user = %+v", got)
	}

	claims, err := utils.ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.Role != domain.RoleStudent {
		t.Fatalf("role claim = %q", claims.Role)
	}

	id, err := f.svc.ValidateTokenFromRedis(ctx, token)
	if err != nil || id != claims.UserID {
		t.Fatalf("ValidateTokenFromRedis = %q, %v", id, err)
	}
	if s := f.tokens.sessions[id]; s.IPAddress != "10.0.0.1" || s.UserAgent != "test-agent" {
		t.Fatalf("session = %+v", s)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.registerVerified(t, "ada@uni.test")

	token, _, err := f.svc.Login(ctx, "ada@uni.test", "secret1", "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	fresh, _, err := f.svc.RefreshToken(ctx, token, "", "")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if _, err := f.svc.ValidateTokenFromRedis(ctx, token); err == nil {
		t.Fatal("old token still valid after refresh")
	}
	if _, _, err := f.svc.RefreshToken(ctx, token, "", ""); err == nil {
		t.Fatal("refreshing a revoked token should fail")
	}

	if err := f.svc.Logout(ctx, u.ID, fresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.ValidateTokenFromRedis(ctx, fresh); err == nil {
		t.Fatal("token still valid after logout")
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.registerVerified(t, "ada@uni.test")

	interests := []string{"Art", "art", "Chess"}
	got, err := f.svc.UpdateUser(ctx, u.ID, UpdateInput{FullName: "Ada L", Interests: &interests})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.FullName != "Ada L" || !reflect.DeepEqual([]string(got.Interests), []string{"art", "chess"}) {
		t.Fatalf("user = %+v", got)
	}

	got, err = f.svc.UpdateUser(ctx, u.ID, UpdateInput{FullName: "Ada"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(got.Interests) != 2 {
		t.Fatal("nil interests should leave them untouched")
	}

	if _, err := f.svc.UpdateUser(ctx, u.ID, UpdateInput{Password: "123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("short password: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.UpdateUser(ctx, 999, UpdateInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture()
	u := f.registerVerified(t, "ada@uni.test")

	if err := f.svc.DeleteUser(context.Background(), u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := f.svc.DeleteUser(context.Background(), u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
