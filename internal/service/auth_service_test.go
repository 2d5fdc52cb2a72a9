package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthTest(t *testing.T) (*AuthService, *memAdmins, *memRevocations) {
	t.Helper()
	admins := &memAdmins{}
	revs := &memRevocations{}
	svc, err := NewAuthService(AuthConfig{SigningSecret: "test-secret", BcryptCost: bcrypt.MinCost}, admins, revs)
	require.NoError(t, err)
	_, err = svc.ProvisionAdmin(context.Background(), ProvisionInput{Username: "admin", Email: "Admin@Example.com", Password: "admin123"})
	require.NoError(t, err)
	return svc, admins, revs
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(AuthConfig{}, &memAdmins{}, nil)
	assert.Error(t, err)
}

func TestProvisionAdminHashesAndDefaults(t *testing.T) {
	_, admins, _ := newAuthTest(t)

	require.Len(t, admins.admins, 1)
	a := admins.admins[0]
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "admin@example.com", a.Email)
	assert.Equal(t, "admin", a.Role)
	assert.NotEqual(t, "admin123", a.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("admin123")))
}

func TestProvisionAdminRejectsDuplicates(t *testing.T) {
	svc, _, _ := newAuthTest(t)
	ctx := context.Background()

	_, err := svc.ProvisionAdmin(ctx, ProvisionInput{Username: "admin", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateAdmin)
	assert.Equal(t, KindDuplicate, kindOf(err))

	_, err = svc.ProvisionAdmin(ctx, ProvisionInput{Username: "other", Email: "ADMIN@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateAdmin)

	// Usernames are case-sensitive.
	_, err = svc.ProvisionAdmin(ctx, ProvisionInput{Username: "Admin", Email: "second@example.com", Password: "secret1", Role: "admin"})
	assert.NoError(t, err)
}

func TestProvisionAdminValidation(t *testing.T) {
	svc, _, _ := newAuthTest(t)

	_, err := svc.ProvisionAdmin(context.Background(), ProvisionInput{Username: "x", Password: "secret1"})
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, KindValidation, kindOf(err))

	_, err = svc.ProvisionAdmin(context.Background(), ProvisionInput{Username: "x", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestProvisionAdminOnlyAcceptsAdminRole(t *testing.T) {
	svc, admins, _ := newAuthTest(t)

	_, err := svc.ProvisionAdmin(context.Background(), ProvisionInput{Username: "owner", Email: "owner@example.com", Password: "secret1", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, KindValidation, kindOf(err))
	assert.Len(t, admins.admins, 1)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, admins, _ := newAuthTest(t)

	require.NoError(t, svc.EnsureAdmin(context.Background(), ProvisionInput{Username: "admin", Email: "admin@example.com", Password: "admin123"}))
	assert.Len(t, admins.admins, 1)
}

func TestLoginScenario(t *testing.T) {
	svc, _, _ := newAuthTest(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, KindAuthentication, kindOf(err))

	_, err = svc.Login(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "admin", sess.Admin.Username)

	p, err := svc.VerifySession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Admin.ID, p.AdminID)
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, "admin", p.Role)
}

func TestLoginRequiresBothFields(t *testing.T) {
	svc, _, _ := newAuthTest(t)

	_, err := svc.Login(context.Background(), "", "admin123")
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = svc.Login(context.Background(), "admin", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestLoginStoreFailureIsNotAnAuthError(t *testing.T) {
	svc, admins, _ := newAuthTest(t)
	admins.err = context.DeadlineExceeded

	_, err := svc.Login(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindStore, kindOf(err))
}

func TestVerifySessionLifetime(t *testing.T) {
	svc, _, _ := newAuthTest(t)
	ctx := context.Background()
	issued := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), sess.ExpiresAt)

	for _, at := range []time.Time{issued, issued.Add(23*time.Hour + 59*time.Minute + 59*time.Second)} {
		svc.now = func() time.Time { return at }
		_, err := svc.VerifySession(ctx, sess.Token)
		assert.NoError(t, err, "at %s", at)
	}
	for _, at := range []time.Time{issued.Add(24 * time.Hour), issued.Add(25 * time.Hour)} {
		svc.now = func() time.Time { return at }
		_, err := svc.VerifySession(ctx, sess.Token)
		assert.ErrorIs(t, err, ErrInvalidToken, "at %s", at)
	}
}

func TestVerifySessionSubSecondIssue(t *testing.T) {
	svc, _, revs := newAuthTest(t)
	ctx := context.Background()
	issued := time.Date(2026, 1, 10, 8, 0, 0, 900*int(time.Millisecond), time.UTC)
	svc.now = func() time.Time { return issued }

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour), sess.ExpiresAt)

	svc.now = func() time.Time { return issued.Add(24*time.Hour - 500*time.Millisecond) }
	_, err = svc.VerifySession(ctx, sess.Token)
	assert.NoError(t, err)

	svc.Logout(ctx, sess.Token)
	require.Len(t, revs.revoked, 1)
	for _, ttl := range revs.revoked {
		assert.Equal(t, 500*time.Millisecond, ttl)
	}
}

func TestVerifySessionErrors(t *testing.T) {
	svc, _, _ := newAuthTest(t)
	ctx := context.Background()

	_, err := svc.VerifySession(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.VerifySession(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewAuthService(AuthConfig{SigningSecret: "other-secret", BcryptCost: bcrypt.MinCost}, &memAdmins{}, nil)
	require.NoError(t, err)
	_, err = other.ProvisionAdmin(ctx, ProvisionInput{Username: "admin", Email: "a@x.com", Password: "admin123"})
	require.NoError(t, err)
	forged, err := other.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	_, err = svc.VerifySession(ctx, forged.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesUntilExpiry(t *testing.T) {
	svc, _, revs := newAuthTest(t)
	ctx := context.Background()
	issued := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	svc.Logout(ctx, sess.Token)
	require.Len(t, revs.revoked, 1)
	for _, ttl := range revs.revoked {
		assert.Equal(t, 23*time.Hour, ttl)
	}

	_, err = svc.VerifySession(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutToleratesMissingStoreAndBadTokens(t *testing.T) {
	svc, err := NewAuthService(AuthConfig{SigningSecret: "s", BcryptCost: bcrypt.MinCost}, &memAdmins{}, nil)
	require.NoError(t, err)
	svc.Logout(context.Background(), "anything")

	svc2, _, revs := newAuthTest(t)
	svc2.Logout(context.Background(), "")
	svc2.Logout(context.Background(), "garbage")
	assert.Empty(t, revs.revoked)
}

func TestVerifySessionFailsOpenWhenRevocationStoreIsDown(t *testing.T) {
	svc, _, revs := newAuthTest(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	revs.err = errors.New("redis: connection refused")
	_, err = svc.VerifySession(ctx, sess.Token)
	assert.NoError(t, err)
}
