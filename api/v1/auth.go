package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/xerrors"
	"gorm.io/gorm"

	"github.com/shresthjindal28/gradient-library/db"
	"github.com/shresthjindal28/gradient-library/identity"
	"github.com/shresthjindal28/gradient-library/metrics"
	"github.com/shresthjindal28/gradient-library/util"
)

// Authenticator is one strategy in the ordered authentication chain. Applies
// is a cheap shape check; Authenticate does the real verification.
type Authenticator interface {
	Applies(token string) bool
	Authenticate(ctx context.Context, token string) (*util.User, error)
}

// sessionAuthenticator resolves identity provider session tokens.
type sessionAuthenticator struct {
	idp *identity.Client
}

func (a *sessionAuthenticator) Applies(token string) bool {
	return strings.Count(token, ".") == 2
}

func (a *sessionAuthenticator) Authenticate(ctx context.Context, token string) (*util.User, error) {
	sess, err := a.idp.VerifySession(token)
	if err != nil {
		return nil, &util.HttpError{
			Code:    http.StatusUnauthorized,
			Reason:  util.ERR_INVALID_TOKEN,
			Details: err.Error(),
		}
	}

	perm := util.PermLevelUser
	if sess.Role == identity.RoleAdmin {
		perm = util.PermLevelAdmin
	}

	// session principals are not rows in the users table; synthesize one
	u := &util.User{
		UUID:     sess.UserID,
		Username: sess.Email,
		Perm:     perm,
	}
	u.AuthToken = util.AuthToken{Expiry: sess.Expiry}
	return u, nil
}

// legacyAuthenticator resolves self-issued api tokens against the database.
type legacyAuthenticator struct {
	db *db.Manager
}

func (a *legacyAuthenticator) Applies(token string) bool {
	return util.IsLegacyToken(token)
}

func (a *legacyAuthenticator) Authenticate(ctx context.Context, token string) (*util.User, error) {
	gdb, err := a.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var authToken util.AuthToken
	tokenHash := util.GetTokenHash(token)
	if err := gdb.First(&authToken, "token = ? OR token_hash = ?", token, tokenHash).Error; err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &util.HttpError{
				Code:    http.StatusUnauthorized,
				Reason:  util.ERR_INVALID_TOKEN,
				Details: "api key does not exist",
			}
		}
		return nil, err
	}

	if authToken.Expiry.Before(time.Now()) {
		return nil, &util.HttpError{
			Code:    http.StatusUnauthorized,
			Reason:  util.ERR_TOKEN_EXPIRED,
			Details: fmt.Sprintf("token for user %d expired %s", authToken.User, authToken.Expiry),
		}
	}

	var user util.User
	if err := gdb.First(&user, "id = ?", authToken.User).Error; err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &util.HttpError{
				Code:    http.StatusUnauthorized,
				Reason:  util.ERR_INVALID_TOKEN,
				Details: "no user exists for the specified api key",
			}
		}
		return nil, err
	}

	user.AuthToken = authToken
	return &user, nil
}

func (s *apiV1) checkTokenAuth(ctx context.Context, token string) (*util.User, error) {
	cached, ok := s.cacher.Get(token)
	if ok && cached != nil {
		user, ok := cached.(*util.User)
		if !ok {
			return nil, xerrors.Errorf("value in user auth cache was not a user (got %T)", cached)
		}
		if !user.AuthToken.Expiry.IsZero() && user.AuthToken.Expiry.Before(time.Now()) {
			s.cacher.Remove(token)
		} else {
			return user, nil
		}
	}

	for _, a := range s.authenticators {
		if !a.Applies(token) {
			continue
		}
		user, err := a.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		s.cacher.Add(token, user)
		return user, nil
	}

	return nil, &util.HttpError{
		Code:    http.StatusUnauthorized,
		Reason:  util.ERR_WRONG_AUTH_FORMAT,
		Details: "token matches no supported authentication scheme",
	}
}

func (s *apiV1) AuthRequired(level int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {

			//	Check first if the Token is available. We should not continue if the
			//	token isn't even available.
			auth, err := util.ExtractAuth(c)
			if err != nil {
				return err
			}

			ctx, span := s.tracer.Start(c.Request().Context(), "authCheck")
			defer span.End()
			c.SetRequest(c.Request().WithContext(ctx))

			u, err := s.checkTokenAuth(ctx, auth)
			if err != nil {
				metrics.AuthFailures.Inc()
				return err
			}

			span.SetAttributes(attribute.String("user", u.UUID))

			if u.Perm >= level {
				c.Set("user", u)
				return next(c)
			}

			s.log.Warnw("user not authorized", "user", u.UUID, "perm", u.Perm, "required", level)

			return &util.HttpError{
				Code:    http.StatusForbidden,
				Reason:  util.ERR_NOT_AUTHORIZED,
				Details: "user not authorized",
			}
		}
	}
}

func withUser(f func(echo.Context, *util.User) error) func(echo.Context) error {
	return func(c echo.Context) error {
		u, ok := c.Get("user").(*util.User)
		if !ok {
			return &util.HttpError{
				Code:    http.StatusUnauthorized,
				Reason:  util.ERR_INVALID_AUTH,
				Details: "endpoint not called with proper authentication",
			}
		}
		return f(c, u)
	}
}

func (s *apiV1) newAuthTokenForUser(ctx context.Context, user *util.User, expiry time.Time, label string) (*util.AuthToken, error) {
	gdb, err := s.DB.Get(ctx)
	if err != nil {
		return nil, err
	}

	token := "GRA" + uuid.New().String() + "DORA"
	authToken := &util.AuthToken{
		Token:     token,
		TokenHash: util.GetTokenHash(token),
		Label:     label,
		User:      user.ID,
		Expiry:    expiry,
	}
	if err := gdb.Create(authToken).Error; err != nil {
		return nil, err
	}
	return authToken, nil
}
