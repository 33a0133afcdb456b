package domain

import (
	"regexp"
	"strings"
)

// LinkType classifies a payment link by its pricing structure.
type LinkType string

const (
	LinkPIF        LinkType = "pif"
	LinkDeposit    LinkType = "deposit"
	LinkDeposit500 LinkType = "deposit500"
	LinkSplit      LinkType = "split"
	LinkPSplit     LinkType = "psplit"
	LinkOther      LinkType = "other"
)

// Label returns the display name for a link type.
func (t LinkType) Label() string {
	switch t {
	case LinkPIF:
		return "7k PIF"
	case LinkDeposit:
		return "Deposit $250"
	case LinkDeposit500:
		return "Deposit $500"
	case LinkSplit:
		return "3500 Split"
	case LinkPSplit:
		return "P-Split"
	default:
		return "Other"
	}
}

// CloserLink is one payment/checkout link attributed to a closer, derived by
// parsing the free-text annotation on an upstream plan record.
type CloserLink struct {
	PlanID      string   `json:"id"`
	CloserEmail string   `json:"closerEmail"`
	LinkType    LinkType `json:"linkType"`
	TypeLabel   string   `json:"linkTypeLabel"`
	Price       float64  `json:"price"`
	MemberCount int      `json:"memberCount"`
	CheckoutURL string   `json:"checkoutUrl"`
	ProductID   string   `json:"productId"`
	ProductName string   `json:"productName"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	RawNote     string   `json:"internalNotes,omitempty"`
}

// LinkClass is the (closer, type) classification extracted from a plan note.
type LinkClass struct {
	CloserEmail string
	Type        LinkType
}

// excludedNoteMarkers flag plan notes that belong to non-closer entries and
// must never be classified.
var excludedNoteMarkers = []string{"Release", "SMC Simplified"}

type linkRule struct {
	pattern *regexp.Regexp
	typ     LinkType
}

// LinkClassifier turns free-text plan annotations into closer/link-type
// pairs using an ordered first-match-wins rule list, most specific first
// (deposit500 must win over deposit).
type LinkClassifier struct {
	rules []linkRule
}

// NewLinkClassifier builds a classifier for the given employee email domain.
// The bare-email fallback rule only matches addresses on that domain.
func NewLinkClassifier(employeeDomain string) *LinkClassifier {
	return &LinkClassifier{rules: []linkRule{
		{regexp.MustCompile(`(?i)^pif-(.+@.+)$`), LinkPIF},
		{regexp.MustCompile(`(?i)^deposit500-(.+@.+)$`), LinkDeposit500},
		{regexp.MustCompile(`(?i)^deposit-(.+@.+)$`), LinkDeposit},
		{regexp.MustCompile(`(?i)^split3500-(.+@.+)$`), LinkSplit},
		{regexp.MustCompile(`(?i)^PSPLIT-(.+@.+)$`), LinkPSplit},
		{regexp.MustCompile(`(?i)^([a-z0-9-]+@` + regexp.QuoteMeta(employeeDomain) + `)$`), LinkOther},
	}}
}

// Classify parses a plan annotation. It returns nil for empty notes,
// excluded sentinel entries, and notes matching no rule; such plans are
// dropped from all grouped views.
func (c *LinkClassifier) Classify(note string) *LinkClass {
	if note == "" {
		return nil
	}
	for _, marker := range excludedNoteMarkers {
		if strings.Contains(note, marker) {
			return nil
		}
	}
	for _, rule := range c.rules {
		if m := rule.pattern.FindStringSubmatch(note); m != nil {
			return &LinkClass{
				CloserEmail: strings.ToLower(m[1]),
				Type:        rule.typ,
			}
		}
	}
	return nil
}

// CloserLinkGroup is the per-closer view of payment links.
type CloserLinkGroup struct {
	Email        string       `json:"email"`
	CloserName   string       `json:"closerName"`
	Links        []CloserLink `json:"links"`
	TotalMembers int          `json:"totalMembers"`
}

// ProductLinkGroup is the two-level product → closer view.
type ProductLinkGroup struct {
	ProductID    string            `json:"productId"`
	ProductName  string            `json:"productName"`
	Closers      []CloserLinkGroup `json:"closers"`
	TotalClosers int               `json:"totalClosers"`
	TotalLinks   int               `json:"totalLinks"`
	LinkTypes    []LinkType        `json:"linkTypes"`
}

// CloserNameFromEmail recovers a readable name from a derived work email:
// "jane-d@x.com" becomes "jane d".
func CloserNameFromEmail(email string) string {
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	return strings.ReplaceAll(local, "-", " ")
}
