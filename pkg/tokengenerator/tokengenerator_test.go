package tokengenerator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/testutil"
)

func newTestService(opts ...TokenServiceOption) *TokenService {
	gen := NewJwtTokenGenerator("test-secret", "agroyield", "agroyield")
	return NewTokenService(gen, opts...)
}

func TestJwtTokenGenerator_RoundTrip(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "agroyield", "agroyield")
	token, expiresAt, err := gen.GenerateToken("subject-1", time.Hour, map[string]interface{}{"user_id": "u-1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := gen.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, "subject-1", claims["sub"])
	assert.NotEmpty(t, claims["jti"])

	other := NewJwtTokenGenerator("other-secret", "agroyield", "agroyield")
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestJwtTokenGenerator_Expired(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "agroyield", "agroyield")
	token, _, err := gen.GenerateToken("s", time.Minute, nil)
	require.NoError(t, err)

	gen.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = gen.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenService_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	sub := Subject{ID: uuid.New(), Email: "a@example.com", Role: "Farmers"}

	pair, err := svc.IssuePair(sub)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	_, err = svc.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token is not a refresh token")

	next, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "rotated token must not be reusable")

	claims, err := svc.generator.ParseToken(next.Access)
	require.NoError(t, err)
	assert.Equal(t, sub.ID.String(), claims["user_id"])
	assert.Equal(t, "Farmers", claims["role"])
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	pair, err := svc.IssuePair(Subject{ID: uuid.New()})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Revoke(ctx, ""), ErrTokenRequired)
	assert.ErrorIs(t, svc.Revoke(ctx, "garbage"), ErrInvalidToken)

	require.NoError(t, svc.Revoke(ctx, pair.Refresh))
	assert.ErrorIs(t, svc.Revoke(ctx, pair.Refresh), ErrInvalidToken)
}

func TestTokenService_ResetToken(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	token, err := svc.IssueResetToken(id, "fp-1")
	require.NoError(t, err)

	gotID, fp, err := svc.ParseResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "fp-1", fp)

	pair, err := svc.IssuePair(Subject{ID: id})
	require.NoError(t, err)
	_, _, err = svc.ParseResetToken(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	d := NewRedisDenylist(client)

	require.NoError(t, d.Add(ctx, "jti-1", time.Minute))
	ok, err := d.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = d.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	svc := newTestService(WithDenylist(d))
	pair, err := svc.IssuePair(Subject{ID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, pair.Refresh))
	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInMemoryDenylist_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	d := NewInMemoryDenylist()
	d.now = func() time.Time { return now }

	require.NoError(t, d.Add(ctx, "a", time.Minute))
	ok, _ := d.Contains(ctx, "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = d.Contains(ctx, "a")
	assert.False(t, ok)
}
