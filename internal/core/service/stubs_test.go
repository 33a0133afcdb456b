package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tjr-trades/staffops/internal/core/domain"
	"github.com/tjr-trades/staffops/internal/core/ports"
)

const (
	testDomain   = "tjr.test"
	testAreaCode = "650"
)

var testLog = zerolog.Nop()

func cloneAccount(a *ports.Account) *ports.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// --- directory ---

type stubDirectory struct {
	accounts map[string]*ports.Account
	findErr  error
	created  []string
	deleted  []string
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{accounts: map[string]*ports.Account{}}
}

func (d *stubDirectory) FindByEmail(_ context.Context, email string) (*ports.Account, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	return cloneAccount(d.accounts[email]), nil
}

func (d *stubDirectory) Create(_ context.Context, in ports.CreateAccountInput) (*ports.Account, error) {
	account := &ports.Account{
		ID:        "dir-" + in.Email,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Status:    "active",
	}
	d.accounts[in.Email] = account
	d.created = append(d.created, in.Email)
	return cloneAccount(account), nil
}

func (d *stubDirectory) Delete(_ context.Context, email string) error {
	if d.findErr != nil {
		return d.findErr
	}
	delete(d.accounts, email)
	d.deleted = append(d.deleted, email)
	return nil
}

func (d *stubDirectory) List(_ context.Context) ([]ports.Account, error) {
	var out []ports.Account
	for _, a := range d.accounts {
		out = append(out, *a)
	}
	return out, nil
}

// --- scheduling ---

type stubScheduling struct {
	members   map[string]*ports.Account
	inviteErr error
	invited   []string
	removed   []string
	license   *domain.LicenseInfo
}

func newStubScheduling() *stubScheduling {
	return &stubScheduling{members: map[string]*ports.Account{}}
}

func (s *stubScheduling) FindByEmail(_ context.Context, email string) (*ports.Account, error) {
	return cloneAccount(s.members[email]), nil
}

func (s *stubScheduling) Invite(_ context.Context, email string) (string, error) {
	if s.inviteErr != nil {
		return "", s.inviteErr
	}
	s.invited = append(s.invited, email)
	return "https://sched.test/invitations/" + email, nil
}

func (s *stubScheduling) Remove(_ context.Context, email string) error {
	delete(s.members, email)
	s.removed = append(s.removed, email)
	return nil
}

func (s *stubScheduling) LicenseInfo(_ context.Context) (*domain.LicenseInfo, error) {
	if s.license == nil {
		return &domain.LicenseInfo{Platform: domain.PlatformCalendly, HasAvailableLicenses: true}, nil
	}
	return s.license, nil
}

// --- video ---

type stubVideo struct {
	accounts   map[string]*ports.Account
	created    []string
	deleted    []string
	license    *domain.LicenseInfo
	licenseErr error
}

func newStubVideo() *stubVideo {
	return &stubVideo{accounts: map[string]*ports.Account{}}
}

func (v *stubVideo) FindByEmail(_ context.Context, email string) (*ports.Account, error) {
	return cloneAccount(v.accounts[email]), nil
}

func (v *stubVideo) Create(_ context.Context, in ports.CreateAccountInput) (*ports.Account, error) {
	account := &ports.Account{ID: "vid-" + in.Email, Email: in.Email, Status: "active"}
	v.accounts[in.Email] = account
	v.created = append(v.created, in.Email)
	return cloneAccount(account), nil
}

func (v *stubVideo) Delete(_ context.Context, emailOrID string) error {
	delete(v.accounts, emailOrID)
	v.deleted = append(v.deleted, emailOrID)
	return nil
}

func (v *stubVideo) LicenseInfo(_ context.Context) (*domain.LicenseInfo, error) {
	if v.licenseErr != nil {
		return nil, v.licenseErr
	}
	if v.license == nil {
		return &domain.LicenseInfo{Platform: domain.PlatformZoom, HasAvailableLicenses: true}, nil
	}
	return v.license, nil
}

// --- telephony ---

type stubTelephony struct {
	owned       []domain.PhoneNumber
	available   []domain.AvailableNumber
	purchaseErr error
	releaseErr  map[string]error
	callsErr    error
	listErr     error

	purchased []string
	released  []string
	msgAdded  []string
	updated   map[string]string
	calls     []domain.CallRecord
}

func newStubTelephony() *stubTelephony {
	return &stubTelephony{
		available: []domain.AvailableNumber{{Number: "+16505550100"}},
		updated:   map[string]string{},
	}
}

func (t *stubTelephony) SearchAvailable(_ context.Context, areaCode string, _ int) ([]domain.AvailableNumber, error) {
	if len(t.available) == 0 {
		return nil, domain.ErrNoInventory
	}
	var out []domain.AvailableNumber
	for _, n := range t.available {
		if strings.Contains(n.Number, areaCode) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (t *stubTelephony) Purchase(_ context.Context, number, friendlyName string) (*domain.PhoneNumber, error) {
	if t.purchaseErr != nil {
		return nil, t.purchaseErr
	}
	bought := domain.PhoneNumber{SID: "PN" + number, Number: number, FriendlyName: friendlyName}
	t.owned = append(t.owned, bought)
	t.purchased = append(t.purchased, number)
	return &bought, nil
}

func (t *stubTelephony) AddToMessagingService(_ context.Context, sid string) error {
	t.msgAdded = append(t.msgAdded, sid)
	return nil
}

func (t *stubTelephony) AddToCampaign(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (t *stubTelephony) Release(_ context.Context, sid string) error {
	if err := t.releaseErr[sid]; err != nil {
		return err
	}
	t.released = append(t.released, sid)
	return nil
}

func (t *stubTelephony) Update(_ context.Context, sid string, in ports.UpdateNumberInput) error {
	t.updated[sid] = in.FriendlyName
	for i := range t.owned {
		if t.owned[i].SID == sid {
			t.owned[i].FriendlyName = in.FriendlyName
		}
	}
	return nil
}

func (t *stubTelephony) ListAll(_ context.Context) ([]domain.PhoneNumber, error) {
	if t.listErr != nil {
		return nil, t.listErr
	}
	return append([]domain.PhoneNumber(nil), t.owned...), nil
}

func (t *stubTelephony) ListCalls(_ context.Context, _ ports.CallFilter) ([]domain.CallRecord, error) {
	if t.callsErr != nil {
		return nil, t.callsErr
	}
	return append([]domain.CallRecord(nil), t.calls...), nil
}

// --- crm ---

type stubCRM struct {
	users        []domain.CRMUser
	linkByNumber map[string]string
	listErr      error
	deleteErr    error

	created []string
	deleted []string
}

func newStubCRM() *stubCRM {
	return &stubCRM{linkByNumber: map[string]string{}}
}

func (c *stubCRM) ListUsers(_ context.Context) ([]domain.CRMUser, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]domain.CRMUser(nil), c.users...), nil
}

func (c *stubCRM) FindByEmail(_ context.Context, email string) (*domain.CRMUser, error) {
	for _, u := range c.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (c *stubCRM) Create(_ context.Context, firstName, lastName, email, role string) (*domain.CRMUser, error) {
	user := domain.CRMUser{ID: "crm-" + email, FirstName: firstName, LastName: lastName, Email: email, Role: role}
	c.users = append(c.users, user)
	c.created = append(c.created, email)
	return &user, nil
}

func (c *stubCRM) Delete(_ context.Context, id string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *stubCRM) CompareWithTelephony(_ context.Context, numbers []domain.PhoneNumber) ([]domain.NumberCRMStatus, error) {
	statuses := make([]domain.NumberCRMStatus, 0, len(numbers))
	for _, n := range numbers {
		userID, ok := c.linkByNumber[n.Number]
		status := domain.NumberCRMStatus{Number: n, InCRM: ok, LinkedUserID: userID}
		if ok {
			status.Number.LinkedUserID = userID
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// --- payments ---

type stubPayments struct {
	products       []ports.Product
	plansByProduct map[string][]ports.Plan
	deleteErr      map[string]error

	planListings int
	deleted      []string
}

func newStubPayments() *stubPayments {
	return &stubPayments{plansByProduct: map[string][]ports.Plan{}, deleteErr: map[string]error{}}
}

func (p *stubPayments) ListProducts(_ context.Context) ([]ports.Product, error) {
	return append([]ports.Product(nil), p.products...), nil
}

func (p *stubPayments) ListPlans(_ context.Context, productID string) ([]ports.Plan, error) {
	p.planListings++
	return append([]ports.Plan(nil), p.plansByProduct[productID]...), nil
}

func (p *stubPayments) DeletePlan(_ context.Context, planID string) error {
	if err := p.deleteErr[planID]; err != nil {
		return err
	}
	p.deleted = append(p.deleted, planID)
	return nil
}
