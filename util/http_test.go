package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type isLegacyTokenTest struct {
	inpAuthStr string
	expected   bool
}

var legacyTokenTests = []isLegacyTokenTest{
	{"GRAsomethingDORA", false},
	{"GRAsomething", false},
	{"GRA6054be81-a71f-436a-a09d-33338bbc9066dDORA", false}, // invalid uuid length
	{"GRA6054be81-a71f-436a-a09d-8e68bbc9066dDORA", true},
	{"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1XzEifQ.sig", false},
}

func TestIsLegacyToken(t *testing.T) {
	for _, test := range legacyTokenTests {
		assert.Equal(t, test.expected, IsLegacyToken(test.inpAuthStr))
	}
}

func newAuthCtx(header string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/gradients", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestExtractAuth(t *testing.T) {
	assert := assert.New(t)

	tok, err := ExtractAuth(newAuthCtx("Bearer GRA6054be81-a71f-436a-a09d-8e68bbc9066dDORA"))
	assert.NoError(err)
	assert.Equal("GRA6054be81-a71f-436a-a09d-8e68bbc9066dDORA", tok)

	for header, reason := range map[string]string{
		"":            ERR_AUTH_MISSING,
		"undefined":   ERR_AUTH_MISSING,
		"Bearer":      ERR_INVALID_AUTH,
		"Basic xyz":   ERR_AUTH_MISSING_BEARER,
		"Bearer a b":  ERR_INVALID_AUTH,
	} {
		_, err := ExtractAuth(newAuthCtx(header))
		if assert.Error(err, "header %q", header) {
			herr, ok := err.(*HttpError)
			if assert.True(ok) {
				assert.Equal(reason, herr.Reason)
				assert.Equal(http.StatusForbidden, herr.Code)
			}
		}
	}
}

func TestTokenHashStable(t *testing.T) {
	a := GetTokenHash("GRA6054be81-a71f-436a-a09d-8e68bbc9066dDORA")
	b := GetTokenHash("GRA6054be81-a71f-436a-a09d-8e68bbc9066dDORA")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, GetTokenHash("other"))
}

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := GetPasswordHash("hunter2")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}
