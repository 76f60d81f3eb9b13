package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shresthjindal28/gradient-library/config"
)

const testSecret = "test-session-secret"

func mintSession(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifySession(t *testing.T) {
	assert := assert.New(t)
	c := NewClient(config.Auth{SessionSecret: testSecret})

	token := mintSession(t, testSecret, jwt.MapClaims{
		"sub":   "user_2abc",
		"email": "a@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	sess, err := c.VerifySession(token)
	require.NoError(t, err)
	assert.Equal("user_2abc", sess.UserID)
	assert.Equal("a@example.com", sess.Email)
	assert.Equal(RoleAdmin, sess.Role)
	assert.WithinDuration(time.Now().Add(time.Hour), sess.Expiry, time.Minute)
}

func TestVerifySessionRejectsBadSignature(t *testing.T) {
	c := NewClient(config.Auth{SessionSecret: testSecret})

	token := mintSession(t, "some-other-secret", jwt.MapClaims{
		"sub": "user_2abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := c.VerifySession(token)
	assert.Error(t, err)
}

func TestVerifySessionRejectsExpired(t *testing.T) {
	c := NewClient(config.Auth{SessionSecret: testSecret})

	token := mintSession(t, testSecret, jwt.MapClaims{
		"sub": "user_2abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := c.VerifySession(token)
	assert.Error(t, err)
}

func TestVerifySessionRejectsMissingSubject(t *testing.T) {
	c := NewClient(config.Auth{SessionSecret: testSecret})

	token := mintSession(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := c.VerifySession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestListUsers(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/users", r.URL.Path)
		assert.Equal("Bearer mgmt-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"user_1","first_name":"Ada","last_name":"L","created_at":1700000000,"email_addresses":[{"email_address":"ada@example.com"}]}]`))
	}))
	defer srv.Close()

	c := NewClient(config.Auth{ProviderAPIURL: srv.URL, ProviderAPIKey: "mgmt-key"})
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal("user_1", users[0].ID)
	assert.Equal("ada@example.com", users[0].Email)
}

func TestListUsersUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(config.Auth{ProviderAPIURL: srv.URL, ProviderAPIKey: "mgmt-key"})
	_, err := c.ListUsers(context.Background())
	assert.Error(t, err)
}
