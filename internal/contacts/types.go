// Package contacts defines the address-book records sweep reviews and the
// sparse updates it sends back to the store.
package contacts

import "strings"

// MissingValue is what the native address book reports for an unset field.
const MissingValue = "missing value"

// DeleteSentinel, used as a phone or email update value, removes the indexed entry.
const DeleteSentinel = "DELETE"

// AppendIndex, used as a phone or email update index, adds a new entry.
const AppendIndex = -1

// Contact is one address-book entry.
type Contact struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Company string  `yaml:"company,omitempty" json:"company"`
	Phones  []Phone `yaml:"phones,omitempty" json:"phones"`
	Emails  []Email `yaml:"emails,omitempty" json:"emails"`
}

// Phone is a labelled phone number.
type Phone struct {
	Label  string `yaml:"label" json:"label"`
	Number string `yaml:"number" json:"number"`
}

// Email is a labelled email address.
type Email struct {
	Label   string `yaml:"label" json:"label"`
	Address string `yaml:"address" json:"address"`
}

// Page is one bounded slice of the store's contact list.
type Page struct {
	Contacts   []Contact
	TotalCount int
	HasMore    bool
}

// Result is the store's answer to a mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CompanyName returns the company with the missing-value marker mapped to "".
func (c Contact) CompanyName() string {
	if strings.EqualFold(strings.TrimSpace(c.Company), MissingValue) {
		return ""
	}
	return c.Company
}

// Clone returns a deep copy so callers can mutate phones and emails freely.
func (c Contact) Clone() Contact {
	out := c
	if c.Phones != nil {
		out.Phones = append([]Phone(nil), c.Phones...)
	}
	if c.Emails != nil {
		out.Emails = append([]Email(nil), c.Emails...)
	}
	return out
}

// DisplayName falls back to a placeholder for unnamed entries.
func (c Contact) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" && !strings.EqualFold(name, MissingValue) {
		return name
	}
	return "(no name)"
}
