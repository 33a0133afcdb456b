// Package google adapts the Google Workspace Admin SDK directory API. It
// authenticates as a service account with domain-wide delegation: a signed
// JWT assertion is exchanged for a bearer token impersonating the admin.
package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = string(domain.PlatformGoogleWorkspace)
	baseURL      = "https://admin.googleapis.com/admin/directory/v1"
	tokenURL     = "https://oauth2.googleapis.com/token"
	scopeUsers   = "https://www.googleapis.com/auth/admin.directory.user"
	// refreshWindow forces a new token this long before the old one expires.
	refreshWindow = 60 * time.Second

	passwordLength  = 16
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)

// Adapter implements ports.Directory.
type Adapter struct {
	client     *rest.Client
	customerID string
	log        zerolog.Logger
}

// New parses the service-account key and builds the adapter. Key material
// arrives via the environment with escaped newlines and optional quotes.
func New(cfg config.GoogleConfig, log zerolog.Logger) (*Adapter, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(normalizePrivateKey(cfg.PrivateKey)))
	if err != nil {
		return nil, fmt.Errorf("%w: google workspace: parse private key: %v", domain.ErrNotConfigured, err)
	}

	src := &assertionTokenSource{
		serviceAccount: cfg.ServiceAccountEmail,
		subject:        cfg.AdminEmail,
		key:            key,
		http:           &http.Client{Timeout: 15 * time.Second},
	}
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, src, refreshWindow)

	return &Adapter{
		client:     rest.New(platformName, baseURL, rest.TokenSourceAuth(ts), log),
		customerID: cfg.CustomerID,
		log:        log.With().Str("platform", platformName).Logger(),
	}, nil
}

type directoryUser struct {
	ID           string `json:"id"`
	PrimaryEmail string `json:"primaryEmail"`
	Suspended    bool   `json:"suspended"`
	Name         struct {
		GivenName  string `json:"givenName"`
		FamilyName string `json:"familyName"`
		FullName   string `json:"fullName"`
	} `json:"name"`
}

func (u directoryUser) toAccount() *ports.Account {
	status := "active"
	if u.Suspended {
		status = "suspended"
	}
	return &ports.Account{
		ID:        u.ID,
		Email:     u.PrimaryEmail,
		FirstName: u.Name.GivenName,
		LastName:  u.Name.FamilyName,
		Status:    status,
	}
}

// FindByEmail returns (nil, nil) when no account exists at the address.
func (a *Adapter) FindByEmail(ctx context.Context, email string) (*ports.Account, error) {
	var user directoryUser
	err := a.client.GetJSON(ctx, "/users/"+url.PathEscape(email), nil, &user)
	if rest.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.toAccount(), nil
}

// Create provisions a directory account. New accounts must rotate the
// password at first login.
func (a *Adapter) Create(ctx context.Context, in ports.CreateAccountInput) (*ports.Account, error) {
	password := in.Password
	if password == "" {
		password = randomPassword()
	}

	body := map[string]any{
		"primaryEmail": in.Email,
		"name": map[string]string{
			"givenName":  in.FirstName,
			"familyName": in.LastName,
		},
		"password":                  password,
		"changePasswordAtNextLogin": true,
	}

	var user directoryUser
	if err := a.client.PostJSON(ctx, "/users", body, &user); err != nil {
		return nil, err
	}
	a.log.Info().Str("email", in.Email).Str("user_id", user.ID).Msg("directory account created")
	return user.toAccount(), nil
}

// Delete removes the account; an already-absent account is a success so
// offboarding retries stay safe.
func (a *Adapter) Delete(ctx context.Context, email string) error {
	err := a.client.Delete(ctx, "/users/"+url.PathEscape(email), nil)
	if rest.IsNotFound(err) {
		a.log.Info().Str("email", email).Msg("directory account already absent")
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Info().Str("email", email).Msg("directory account deleted")
	return nil
}

// List returns all directory accounts for the customer, ordered by email.
func (a *Adapter) List(ctx context.Context) ([]ports.Account, error) {
	query := url.Values{
		"customer":   {a.customerID},
		"maxResults": {"500"},
		"orderBy":    {"email"},
	}
	var resp struct {
		Users []directoryUser `json:"users"`
	}
	if err := a.client.GetJSON(ctx, "/users", query, &resp); err != nil {
		return nil, err
	}
	accounts := make([]ports.Account, 0, len(resp.Users))
	for _, u := range resp.Users {
		accounts = append(accounts, *u.toAccount())
	}
	return accounts, nil
}

// assertionTokenSource mints bearer tokens by signing a JWT assertion with
// the service-account key and exchanging it at the Google token endpoint.
// oauth2.ReuseTokenSourceWithExpiry provides the caching on top.
type assertionTokenSource struct {
	serviceAccount string
	subject        string
	key            *rsa.PrivateKey
	http           *http.Client
}

func (s *assertionTokenSource) Token() (*oauth2.Token, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.serviceAccount,
		"sub":   s.subject,
		"scope": scopeUsers,
		"aud":   tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("google workspace: sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	resp, err := s.http.PostForm(tokenURL, form)
	if err != nil {
		return nil, &domain.UpstreamError{Platform: platformName, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Platform: platformName, StatusCode: resp.StatusCode,
			Message: "token exchange failed"}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("google workspace: decode token: %w", err)
	}
	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      now.Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}

// normalizePrivateKey undoes the escaping environment files apply to PEM
// blocks: literal \n sequences and wrapping quotes.
func normalizePrivateKey(raw string) string {
	key := strings.ReplaceAll(raw, `\n`, "\n")
	return strings.Trim(key, `"`)
}

func randomPassword() string {
	max := big.NewInt(int64(len(passwordCharset)))
	b := make([]byte, passwordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back
			// to a fixed offset rather than returning a short password.
			n = big.NewInt(int64(i) % max.Int64())
		}
		b[i] = passwordCharset[n.Int64()]
	}
	return string(b)
}
