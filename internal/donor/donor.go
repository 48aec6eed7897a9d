package donor

import (
	"errors"
	"strings"
	"time"
)

// Donor is a contact record served by the donor API. Aggregate giving
// fields are derived server-side and never editable through the form.
type Donor struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FullName       string    `json:"full_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Company        string    `json:"company,omitempty"`
	DonorStatus    string    `json:"donor_status"`
	DonorType      string    `json:"donor_type"`
	TotalGifts     float64   `json:"total_gifts"`
	TotalGiftCount int       `json:"total_gift_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayName returns the full name when the backend supplied one,
// otherwise "first last".
func (d Donor) DisplayName() string {
	if name := strings.TrimSpace(d.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Location renders "city, state" with whichever parts are present.
func (d Donor) Location() string {
	city := strings.TrimSpace(d.City)
	state := strings.TrimSpace(d.State)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}

// Create is the payload for new donor records. The three opt-out flags are
// independent; any combination is valid.
type Create struct {
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Email                  string `json:"email,omitempty"`
	Phone                  string `json:"phone,omitempty"`
	MobilePhone            string `json:"mobile_phone,omitempty"`
	WorkPhone              string `json:"work_phone,omitempty"`
	AddressLine1           string `json:"address_line_1,omitempty"`
	AddressLine2           string `json:"address_line_2,omitempty"`
	City                   string `json:"city,omitempty"`
	State                  string `json:"state,omitempty"`
	PostalCode             string `json:"postal_code,omitempty"`
	Country                string `json:"country,omitempty"`
	Company                string `json:"company,omitempty"`
	JobTitle               string `json:"job_title,omitempty"`
	PreferredContactMethod string `json:"preferred_contact_method,omitempty"`
	DoNotEmail             bool   `json:"do_not_email"`
	DoNotCall              bool   `json:"do_not_call"`
	DoNotMail              bool   `json:"do_not_mail"`
	DonorType              string `json:"donor_type,omitempty"`
	Notes                  string `json:"notes,omitempty"`
	Source                 string `json:"source,omitempty"`
}

// ErrNameRequired reports a form missing one of the two mandatory fields.
var ErrNameRequired = errors.New("first name and last name are required")

// Validate enforces the form requirements checked before any network call.
func (c Create) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return ErrNameRequired
	}
	return nil
}

// Update is the payload for editing an existing donor. The original form
// sends the complete payload on every save; the extra fields exist for
// callers that maintain richer records.
type Update struct {
	Create
	PreferredName  string `json:"preferred_name,omitempty"`
	Title          string `json:"title,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	DonorStatus    string `json:"donor_status,omitempty"`
	WealthRating   string `json:"wealth_rating,omitempty"`
	CapacityRating int    `json:"capacity_rating,omitempty"`
}
