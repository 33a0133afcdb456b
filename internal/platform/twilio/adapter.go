// Package twilio adapts the Twilio REST API for number provisioning and call
// logs. The core API is form-encoded under /2010-04-01; messaging-service and
// A2P campaign operations live on the separate messaging host.
package twilio

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
	"github.com/tjr-trades/staffops/internal/infrastructure/config"
	"github.com/tjr-trades/staffops/internal/platform/rest"
)

const (
	platformName = string(domain.PlatformTwilio)

	coreBaseURL      = "https://api.twilio.com"
	messagingBaseURL = "https://messaging.twilio.com/v1"

	pageSize = 100
)

// Adapter implements ports.Telephony.
type Adapter struct {
	core       *rest.Client
	messaging  *rest.Client
	accountSID string
	serviceSID string
	campaign   string
	log        zerolog.Logger
}

func New(cfg config.TwilioConfig, log zerolog.Logger) *Adapter {
	auth := rest.BasicAuth(cfg.AccountSID, cfg.AuthToken)
	return &Adapter{
		core:       rest.New(platformName, coreBaseURL, auth, log),
		messaging:  rest.New(platformName, messagingBaseURL, auth, log),
		accountSID: cfg.AccountSID,
		serviceSID: cfg.MessagingServiceSID,
		campaign:   cfg.CampaignSID,
		log:        log.With().Str("platform", platformName).Logger(),
	}
}

func (a *Adapter) accountPath(suffix string) string {
	return "/2010-04-01/Accounts/" + a.accountSID + suffix
}

type incomingNumber struct {
	SID          string `json:"sid"`
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
}

func (n incomingNumber) toDomain() domain.PhoneNumber {
	return domain.PhoneNumber{
		SID:          n.SID,
		Number:       n.PhoneNumber,
		FriendlyName: n.FriendlyName,
	}
}

// SearchAvailable lists purchasable local numbers in the area code.
func (a *Adapter) SearchAvailable(ctx context.Context, areaCode string, limit int) ([]domain.AvailableNumber, error) {
	if limit <= 0 {
		limit = 20
	}
	query := url.Values{
		"AreaCode": {areaCode},
		"PageSize": {strconv.Itoa(limit)},
	}
	var resp struct {
		AvailablePhoneNumbers []struct {
			PhoneNumber  string `json:"phone_number"`
			FriendlyName string `json:"friendly_name"`
		} `json:"available_phone_numbers"`
	}
	if err := a.core.GetJSON(ctx, a.accountPath("/AvailablePhoneNumbers/US/Local.json"), query, &resp); err != nil {
		return nil, err
	}
	if len(resp.AvailablePhoneNumbers) == 0 {
		return nil, fmt.Errorf("%w: no local numbers in area code %s", domain.ErrNoInventory, areaCode)
	}

	out := make([]domain.AvailableNumber, 0, len(resp.AvailablePhoneNumbers))
	for _, n := range resp.AvailablePhoneNumbers {
		out = append(out, domain.AvailableNumber{Number: n.PhoneNumber, FriendlyName: n.FriendlyName})
	}
	return out, nil
}

// Purchase buys the number and labels it with the friendly name.
func (a *Adapter) Purchase(ctx context.Context, number, friendlyName string) (*domain.PhoneNumber, error) {
	form := url.Values{
		"PhoneNumber":  {number},
		"FriendlyName": {friendlyName},
	}
	var bought incomingNumber
	if err := a.core.PostForm(ctx, a.accountPath("/IncomingPhoneNumbers.json"), form, &bought); err != nil {
		return nil, err
	}
	a.log.Info().Str("number", bought.PhoneNumber).Str("sid", bought.SID).Msg("phone number purchased")
	p := bought.toDomain()
	return &p, nil
}

// AddToMessagingService attaches the number to the sender pool.
func (a *Adapter) AddToMessagingService(ctx context.Context, sid string) error {
	form := url.Values{"PhoneNumberSid": {sid}}
	err := a.messaging.PostForm(ctx, "/Services/"+a.serviceSID+"/PhoneNumbers", form, nil)
	if err != nil {
		return err
	}
	a.log.Info().Str("sid", sid).Msg("number added to messaging service")
	return nil
}

// AddToCampaign reports whether the number is covered by a verified A2P
// campaign. Numbers inherit campaign registration through the messaging
// service, so this checks the campaign state rather than posting per number.
// Without a configured campaign the number works for voice but not bulk SMS.
func (a *Adapter) AddToCampaign(ctx context.Context, sid string) (bool, error) {
	if a.campaign == "" {
		a.log.Warn().Str("sid", sid).Msg("no messaging campaign configured, number not SMS-registered")
		return false, nil
	}

	var resp struct {
		CampaignStatus string `json:"campaign_status"`
	}
	path := "/Services/" + a.serviceSID + "/Compliance/Usa2p/" + a.campaign
	err := a.messaging.GetJSON(ctx, path, nil, &resp)
	if rest.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	registered := strings.EqualFold(resp.CampaignStatus, "VERIFIED")
	if !registered {
		a.log.Warn().Str("sid", sid).Str("campaign_status", resp.CampaignStatus).Msg("campaign not verified yet")
	}
	return registered, nil
}

// Release returns the number to the carrier. An absent number is success.
func (a *Adapter) Release(ctx context.Context, sid string) error {
	err := a.core.Delete(ctx, a.accountPath("/IncomingPhoneNumbers/"+sid+".json"), nil)
	if rest.IsNotFound(err) {
		a.log.Info().Str("sid", sid).Msg("phone number already released")
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Info().Str("sid", sid).Msg("phone number released")
	return nil
}

// Update rewrites the mutable attributes of a provisioned number.
func (a *Adapter) Update(ctx context.Context, sid string, in ports.UpdateNumberInput) error {
	form := url.Values{}
	if in.FriendlyName != "" {
		form.Set("FriendlyName", in.FriendlyName)
	}
	if len(form) == 0 {
		return nil
	}
	return a.core.PostForm(ctx, a.accountPath("/IncomingPhoneNumbers/"+sid+".json"), form, nil)
}

// ListAll walks every page of the provisioned inventory.
func (a *Adapter) ListAll(ctx context.Context) ([]domain.PhoneNumber, error) {
	var numbers []domain.PhoneNumber

	path := a.accountPath("/IncomingPhoneNumbers.json")
	query := url.Values{"PageSize": {strconv.Itoa(pageSize)}}
	for path != "" {
		var resp struct {
			IncomingPhoneNumbers []incomingNumber `json:"incoming_phone_numbers"`
			NextPageURI          string           `json:"next_page_uri"`
		}
		if err := a.core.GetJSON(ctx, path, query, &resp); err != nil {
			return nil, err
		}
		for _, n := range resp.IncomingPhoneNumbers {
			numbers = append(numbers, n.toDomain())
		}
		// next_page_uri already carries the page token query string.
		path = resp.NextPageURI
		query = nil
	}
	return numbers, nil
}

// ListCalls returns call log entries matching the filter.
func (a *Adapter) ListCalls(ctx context.Context, f ports.CallFilter) ([]domain.CallRecord, error) {
	query := url.Values{}
	if f.PhoneNumber != "" {
		query.Set("To", f.PhoneNumber)
	}
	if f.StartDate != "" {
		query.Set("StartTime>", f.StartDate)
	}
	if f.EndDate != "" {
		query.Set("StartTime<", f.EndDate)
	}
	if f.Status != "" {
		query.Set("Status", f.Status)
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = pageSize
	}
	query.Set("PageSize", strconv.Itoa(limit))

	var resp struct {
		Calls []struct {
			SID       string `json:"sid"`
			From      string `json:"from"`
			To        string `json:"to"`
			Status    string `json:"status"`
			Duration  string `json:"duration"`
			Direction string `json:"direction"`
			StartTime string `json:"start_time"`
		} `json:"calls"`
	}
	if err := a.core.GetJSON(ctx, a.accountPath("/Calls.json"), query, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.CallRecord, 0, len(resp.Calls))
	for _, c := range resp.Calls {
		seconds, _ := strconv.Atoi(c.Duration)
		records = append(records, domain.CallRecord{
			SID:       c.SID,
			From:      c.From,
			To:        c.To,
			Status:    c.Status,
			Duration:  seconds,
			Direction: c.Direction,
			StartTime: c.StartTime,
		})
	}
	return records, nil
}
