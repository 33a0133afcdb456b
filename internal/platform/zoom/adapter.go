// Package zoom adapts the Zoom REST API using server-to-server OAuth: the
// account-credentials grant yields short-lived bearer tokens that are cached
// and refreshed ahead of expiry.
package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = string(domain.PlatformZoom)
	baseURL      = "https://api.zoom.us/v2"
	tokenURL     = "https://zoom.us/oauth/token"
	// licensedUserType is Zoom's "Licensed" account type.
	licensedUserType = 2

	refreshWindow = 60 * time.Second
)

// Adapter implements ports.Video.
type Adapter struct {
	client       *rest.Client
	licenseLimit int
	log          zerolog.Logger
}

// New builds the adapter with a cached, self-refreshing token source.
func New(cfg config.ZoomConfig, log zerolog.Logger) *Adapter {
	src := &accountCredentialsSource{
		accountID:    cfg.AccountID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, src, refreshWindow)

	return &Adapter{
		client:       rest.New(platformName, baseURL, rest.TokenSourceAuth(ts), log),
		licenseLimit: cfg.LicenseLimit,
		log:          log.With().Str("platform", platformName).Logger(),
	}
}

type zoomUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      int    `json:"type"`
	Status    string `json:"status"`
}

func (u zoomUser) toAccount() *ports.Account {
	return &ports.Account{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Status:    u.Status,
	}
}

// FindByEmail returns (nil, nil) when Zoom does not know the address.
func (a *Adapter) FindByEmail(ctx context.Context, email string) (*ports.Account, error) {
	var user zoomUser
	err := a.client.GetJSON(ctx, "/users/"+url.PathEscape(email), nil, &user)
	if rest.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.toAccount(), nil
}

// Create provisions a licensed user.
func (a *Adapter) Create(ctx context.Context, in ports.CreateAccountInput) (*ports.Account, error) {
	body := map[string]any{
		"action": "create",
		"user_info": map[string]any{
			"email":      in.Email,
			"type":       licensedUserType,
			"first_name": in.FirstName,
			"last_name":  in.LastName,
		},
	}
	var user zoomUser
	if err := a.client.PostJSON(ctx, "/users", body, &user); err != nil {
		return nil, err
	}
	a.log.Info().Str("email", in.Email).Str("user_id", user.ID).Msg("video account created")
	return user.toAccount(), nil
}

// Delete removes the user permanently (action=delete, not deactivate). An
// absent user is success.
func (a *Adapter) Delete(ctx context.Context, emailOrID string) error {
	err := a.client.Delete(ctx, "/users/"+url.PathEscape(emailOrID), url.Values{"action": {"delete"}})
	if rest.IsNotFound(err) {
		a.log.Info().Str("user", emailOrID).Msg("video account already absent")
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Info().Str("user", emailOrID).Msg("video account deleted")
	return nil
}

// LicenseInfo counts licensed seats in use. Zoom does not expose the seat
// ceiling via this API, so the ceiling comes from configuration; a zero
// limit reports availability as unknown-but-open.
func (a *Adapter) LicenseInfo(ctx context.Context) (*domain.LicenseInfo, error) {
	query := url.Values{"status": {"active"}, "page_size": {"300"}}
	var resp struct {
		TotalRecords int        `json:"total_records"`
		Users        []zoomUser `json:"users"`
	}
	if err := a.client.GetJSON(ctx, "/users", query, &resp); err != nil {
		return nil, err
	}

	used := 0
	for _, u := range resp.Users {
		if u.Type == licensedUserType {
			used++
		}
	}

	return &domain.LicenseInfo{
		Platform:             domain.PlatformZoom,
		TotalSeats:           a.licenseLimit,
		UsedSeats:            used,
		HasAvailableLicenses: a.licenseLimit == 0 || used < a.licenseLimit,
	}, nil
}

// accountCredentialsSource implements the Zoom account_credentials grant,
// which the stock clientcredentials config cannot express.
type accountCredentialsSource struct {
	accountID    string
	clientID     string
	clientSecret string
	http         *http.Client
}

func (s *accountCredentialsSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {"account_credentials"},
		"account_id": {s.accountID},
	}
	req, err := http.NewRequest(http.MethodPost, tokenURL+"?"+form.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("zoom: build token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Platform: platformName, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Platform: platformName, StatusCode: resp.StatusCode,
			Message: "authentication failed"}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("zoom: decode token: %w", err)
	}
	return &oauth2.Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}
