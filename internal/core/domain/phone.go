package domain

import "strings"

// PhoneNumber is one provisioned number in the telephony inventory. The
// provider is authoritative; this struct is a read-only snapshot view.
type PhoneNumber struct {
	SID          string `json:"sid"`
	Number       string `json:"phoneNumber"`
	FriendlyName string `json:"friendlyName"`
	// LinkedUserID is the CRM user the number is assigned to, filled in by
	// joining the inventory against the CRM's phone-number records. Empty
	// when the CRM does not know the number.
	LinkedUserID string `json:"linkedUserId,omitempty"`
}

// InAreaCode reports whether the number belongs to the given area-code pool
// (substring match on the dialing prefix, mirroring the upstream convention).
func (p PhoneNumber) InAreaCode(areaCode string) bool {
	return areaCode != "" && strings.Contains(p.Number, areaCode)
}

// AvailableNumber is a purchasable number returned by an inventory search.
type AvailableNumber struct {
	Number       string `json:"phoneNumber"`
	FriendlyName string `json:"friendlyName,omitempty"`
}

// NumberCRMStatus is the result of comparing one telephony number against the
// CRM's records.
type NumberCRMStatus struct {
	Number       PhoneNumber `json:"number"`
	InCRM        bool        `json:"inCRM"`
	LinkedUserID string      `json:"linkedUserId,omitempty"`
}

// CallRecord is a single call log entry from the telephony platform, used
// only for read-only analytics aggregation.
type CallRecord struct {
	SID       string `json:"sid"`
	From      string `json:"from"`
	To        string `json:"to"`
	Status    string `json:"status"`
	Duration  int    `json:"duration"` // seconds
	Direction string `json:"direction"`
	StartTime string `json:"startTime"`
}
