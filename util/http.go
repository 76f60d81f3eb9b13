package util

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("util")

const (
	ERR_INVALID_TOKEN        = "ERR_INVALID_TOKEN"
	ERR_TOKEN_EXPIRED        = "ERR_TOKEN_EXPIRED"
	ERR_AUTH_MISSING         = "ERR_AUTH_MISSING"
	ERR_WRONG_AUTH_FORMAT    = "ERR_WRONG_AUTH_FORMAT"
	ERR_INVALID_AUTH         = "ERR_INVALID_AUTH"
	ERR_AUTH_MISSING_BEARER  = "ERR_AUTH_MISSING_BEARER"
	ERR_NOT_AUTHORIZED       = "ERR_NOT_AUTHORIZED"
	ERR_USERNAME_TAKEN       = "ERR_USERNAME_TAKEN"
	ERR_USER_CREATION_FAILED = "ERR_USER_CREATION_FAILED"
	ERR_USER_NOT_FOUND       = "ERR_USER_NOT_FOUND"
	ERR_INVALID_PASSWORD     = "ERR_INVALID_PASSWORD"
	ERR_INVALID_INPUT        = "ERR_INVALID_INPUT"
	ERR_GRADIENT_NOT_FOUND   = "ERR_GRADIENT_NOT_FOUND"
	ERR_IMAGE_NOT_FOUND      = "ERR_IMAGE_NOT_FOUND"
	ERR_UPLOAD_FAILED        = "ERR_UPLOAD_FAILED"
	ERR_STORAGE_UNAVAILABLE  = "ERR_STORAGE_UNAVAILABLE"
)

type HttpError struct {
	Code    int    `json:"code,omitempty"`
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

func (he HttpError) Error() string {
	if he.Details == "" {
		return he.Reason
	}
	return he.Reason + ": " + he.Details
}

const (
	PermLevelUser  = 2
	PermLevelAdmin = 10
)

var legacyTokenPattern = regexp.MustCompile("^GRA(.+)DORA$")

// IsLegacyToken reports whether tok has the shape of a self-issued api
// token: a uuid body wrapped in the GRA/DORA markers.
func IsLegacyToken(tok string) bool {
	if !legacyTokenPattern.MatchString(tok) {
		return false
	}

	uuidStr := strings.TrimSuffix(strings.TrimPrefix(tok, "GRA"), "DORA")
	_, err := uuid.Parse(uuidStr)
	return err == nil
}

func ExtractAuth(c echo.Context) (string, error) {
	auth := c.Request().Header.Get("Authorization")
	//	undefined will be the auth value if the GRADORA_TOKEN cookie is removed.
	if auth == "" || auth == "undefined" {
		return "", &HttpError{
			Code:   http.StatusForbidden,
			Reason: ERR_AUTH_MISSING,
		}
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 {
		return "", &HttpError{
			Code:   http.StatusForbidden,
			Reason: ERR_INVALID_AUTH,
		}
	}

	if parts[0] != "Bearer" {
		return "", &HttpError{
			Code:   http.StatusForbidden,
			Reason: ERR_AUTH_MISSING_BEARER,
		}
	}
	return parts[1], nil
}

func ErrorHandler(err error, ctx echo.Context) {
	log.Errorf("handler error: %s", err)
	var herr *HttpError
	if xerrors.As(err, &herr) {
		res := map[string]string{
			"error": herr.Reason,
		}
		if herr.Details != "" {
			res["details"] = herr.Details
		}
		ctx.JSON(herr.Code, res)
		return
	}

	var echoErr *echo.HTTPError
	if xerrors.As(err, &echoErr) {
		ctx.JSON(echoErr.Code, map[string]interface{}{
			"error": echoErr.Message,
		})
		return
	}

	// TODO: returning all errors out to the user smells potentially bad
	_ = ctx.JSON(500, map[string]interface{}{
		"error": err.Error(),
	})
}

type Binder struct{}

func (b Binder) Bind(i interface{}, c echo.Context) error {
	defaultBinder := new(echo.DefaultBinder)
	if err := defaultBinder.Bind(i, c); err != nil {
		return &HttpError{
			Code:    http.StatusBadRequest,
			Reason:  ERR_INVALID_INPUT,
			Details: err.Error(),
		}
	}
	return nil
}

func WithMultipartFormDataChecker(f func(echo.Context) error) func(echo.Context) error {
	return func(c echo.Context) error {
		if !strings.HasPrefix(c.Request().Header.Get("Content-Type"), "multipart/form-data") {
			return &HttpError{
				Code:    http.StatusBadRequest,
				Reason:  ERR_INVALID_INPUT,
				Details: "this endpoint only accepts multipart/form-data requests",
			}
		}
		return f(c)
	}
}
