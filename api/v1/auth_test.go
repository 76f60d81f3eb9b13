package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shresthjindal28/gradient-library/identity"
	"github.com/shresthjindal28/gradient-library/util"
)

func TestSessionAuthenticatorApplies(t *testing.T) {
	a := &sessionAuthenticator{}
	assert.True(t, a.Applies("aaa.bbb.ccc"))
	assert.False(t, a.Applies("GRA5a21cdab-3e92-4bcb-a3ba-6d9a80f1a111DORA"))
	assert.False(t, a.Applies("not-a-token"))
}

func TestLegacyAuthenticatorApplies(t *testing.T) {
	a := &legacyAuthenticator{}
	assert.True(t, a.Applies("GRA5a21cdab-3e92-4bcb-a3ba-6d9a80f1a111DORA"))
	assert.False(t, a.Applies("aaa.bbb.ccc"))
}

func TestCheckTokenAuthUnknownShape(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.srv.checkTokenAuth(context.Background(), "garbage")
	require.Error(t, err)
	herr, ok := err.(*util.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
	assert.Equal(t, util.ERR_WRONG_AUTH_FORMAT, herr.Reason)
}

func TestCheckTokenAuthUnknownLegacyToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.srv.checkTokenAuth(context.Background(), "GRA5a21cdab-3e92-4bcb-a3ba-6d9a80f1a111DORA")
	require.Error(t, err)
	herr, ok := err.(*util.HttpError)
	require.True(t, ok)
	assert.Equal(t, util.ERR_INVALID_TOKEN, herr.Reason)
}

func TestCheckTokenAuthExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gdb, err := env.dbm.Get(ctx)
	require.NoError(t, err)

	user := &util.User{UUID: "uuid-expired", Username: "expired", Perm: util.PermLevelUser}
	require.NoError(t, gdb.Create(user).Error)

	authToken, err := env.srv.newAuthTokenForUser(ctx, user, time.Now().Add(-time.Hour), "test")
	require.NoError(t, err)

	_, err = env.srv.checkTokenAuth(ctx, authToken.Token)
	require.Error(t, err)
	herr, ok := err.(*util.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
	assert.Equal(t, util.ERR_TOKEN_EXPIRED, herr.Reason)
}

func TestCheckTokenAuthResolvesUser(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	gdb, err := env.dbm.Get(ctx)
	require.NoError(t, err)

	user := &util.User{UUID: "uuid-live", Username: "live", Perm: util.PermLevelUser}
	require.NoError(t, gdb.Create(user).Error)

	authToken, err := env.srv.newAuthTokenForUser(ctx, user, time.Now().Add(time.Hour), "test")
	require.NoError(t, err)

	got, err := env.srv.checkTokenAuth(ctx, authToken.Token)
	require.NoError(t, err)
	assert.Equal("live", got.Username)
	assert.Equal(authToken.Token, got.AuthToken.Token)

	// second call is served from the cache
	cached, ok := env.srv.cacher.Get(authToken.Token)
	require.True(t, ok)
	assert.Same(got, cached.(*util.User))
}

func TestCheckTokenAuthEvictsExpiredCacheEntry(t *testing.T) {
	env := newTestEnv(t)

	stale := &util.User{UUID: "uuid-stale", Username: "stale"}
	stale.AuthToken = util.AuthToken{Expiry: time.Now().Add(-time.Minute)}
	env.srv.cacher.Add("garbage", stale)

	_, err := env.srv.checkTokenAuth(context.Background(), "garbage")
	require.Error(t, err)

	_, ok := env.srv.cacher.Get("garbage")
	assert.False(t, ok)
}

func TestSessionAuthenticatorMapsRoles(t *testing.T) {
	assert := assert.New(t)
	env := newTestEnv(t)
	ctx := context.Background()

	userTok := mintSessionToken(t, "user_1", "user@example.com", "member", time.Now().Add(time.Hour))
	u, err := env.srv.checkTokenAuth(ctx, userTok)
	require.NoError(t, err)
	assert.Equal("user_1", u.UUID)
	assert.Equal("user@example.com", u.Username)
	assert.Equal(util.PermLevelUser, u.Perm)

	adminTok := mintSessionToken(t, "user_2", "admin@example.com", identity.RoleAdmin, time.Now().Add(time.Hour))
	a, err := env.srv.checkTokenAuth(ctx, adminTok)
	require.NoError(t, err)
	assert.Equal(util.PermLevelAdmin, a.Perm)
}

func TestSessionAuthenticatorRejectsTamperedToken(t *testing.T) {
	env := newTestEnv(t)

	tok := mintSessionToken(t, "user_1", "user@example.com", "member", time.Now().Add(time.Hour))
	tampered := tok + "x"

	_, err := env.srv.checkTokenAuth(context.Background(), tampered)
	require.Error(t, err)
	herr, ok := err.(*util.HttpError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
	assert.Equal(t, util.ERR_INVALID_TOKEN, herr.Reason)
}

func TestExtractAuthRejections(t *testing.T) {
	env := newTestEnv(t)

	// no header at all
	rec := env.request(t, http.MethodGet, "/viewer", "", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), util.ERR_AUTH_MISSING)
}
