package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/shresthjindal28/gradient-library/config"
)

var log = logging.Logger("identity")

var ErrInvalidSession = xerrors.New("invalid identity provider session")

const RoleAdmin = "admin"

// Session is a verified identity provider session: the principal behind an
// externally issued bearer token.
type Session struct {
	UserID string
	Email  string
	Role   string
	Expiry time.Time
}

// User is the shape the provider's management API returns for one account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CreatedAt int64  `json:"createdAt"`
}

type Client struct {
	secret []byte
	issuer string
	apiURL string
	apiKey string
	hc     *http.Client
}

func NewClient(cfg config.Auth) *Client {
	return &Client{
		secret: []byte(cfg.SessionSecret),
		issuer: cfg.SessionIssuer,
		apiURL: strings.TrimSuffix(cfg.ProviderAPIURL, "/"),
		apiKey: cfg.ProviderAPIKey,
		hc:     &http.Client{Timeout: 15 * time.Second},
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// VerifySession cryptographically verifies a session token and resolves the
// principal it names. Token shape alone is never treated as proof of
// validity.
func (c *Client) VerifySession(token string) (*Session, error) {
	claims := &sessionClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	sess := &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		sess.Expiry = claims.ExpiresAt.Time
	}
	return sess, nil
}

// provider wire format for the management API
type providerUser struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CreatedAt      int64  `json:"created_at"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// ListUsers fetches every account known to the identity provider. Used by
// the admin dashboard only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	if c.apiURL == "" || c.apiKey == "" {
		return nil, xerrors.New("identity provider management api is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/users", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider user listing failed: %s", resp.Status)
	}

	var raw []providerUser
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(raw))
	for _, u := range raw {
		out := User{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			CreatedAt: u.CreatedAt,
		}
		if len(u.EmailAddresses) > 0 {
			out.Email = u.EmailAddresses[0].EmailAddress
		}
		users = append(users, out)
	}
	return users, nil
}
