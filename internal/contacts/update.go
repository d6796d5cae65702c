package contacts

import (
	"fmt"
	"strings"

	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// Field names one editable part of a contact.
type Field string

const (
	FieldName    Field = "name"
	FieldCompany Field = "company"
	FieldPhone   Field = "phone"
	FieldEmail   Field = "email"
)

// ParseField converts user input into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldName, FieldCompany, FieldPhone, FieldEmail:
		return f, nil
	}
	return "", sweeperrors.Invalidf("unknown field %q", s)
}

// Indexed addresses one entry of an ordered phone or email list.
type Indexed struct {
	Index int
	Value string
}

// Update is a sparse, single-purpose change to a contact. Nil fields are
// left untouched by the store.
type Update struct {
	Name    *string
	Company *string
	Phone   *Indexed
	Email   *Indexed
}

// NewUpdate builds an Update touching exactly one field. index is only
// meaningful for phone and email.
func NewUpdate(field Field, value string, index int) Update {
	switch field {
	case FieldName:
		return Update{Name: &value}
	case FieldCompany:
		return Update{Company: &value}
	case FieldPhone:
		return Update{Phone: &Indexed{Index: index, Value: value}}
	case FieldEmail:
		return Update{Email: &Indexed{Index: index, Value: value}}
	}
	return Update{}
}

// IsEmpty reports whether the update touches nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Company == nil && u.Phone == nil && u.Email == nil
}

// Validate rejects updates the store would refuse or that would blank a
// required field.
func (u Update) Validate() error {
	if u.IsEmpty() {
		return sweeperrors.Invalidf("update has no fields")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return sweeperrors.Invalidf("Name cannot be empty")
	}
	if u.Phone != nil {
		if u.Phone.Index < AppendIndex {
			return sweeperrors.Wrap(sweeperrors.ErrOutOfRange, fmt.Sprintf("phone index %d", u.Phone.Index))
		}
		if strings.TrimSpace(u.Phone.Value) == "" {
			return sweeperrors.Invalidf("Phone number cannot be empty")
		}
		if u.Phone.Index == AppendIndex && u.Phone.Value == DeleteSentinel {
			return sweeperrors.Invalidf("cannot delete a phone number that does not exist")
		}
	}
	if u.Email != nil {
		if u.Email.Index < AppendIndex {
			return sweeperrors.Wrap(sweeperrors.ErrOutOfRange, fmt.Sprintf("email index %d", u.Email.Index))
		}
		if strings.TrimSpace(u.Email.Value) == "" {
			return sweeperrors.Invalidf("Email address cannot be empty")
		}
		if u.Email.Index == AppendIndex && u.Email.Value == DeleteSentinel {
			return sweeperrors.Invalidf("cannot delete an email address that does not exist")
		}
	}
	return nil
}

// Apply mutates c to reflect a confirmed update. Phone and email indexes
// past the end of the list are rejected with ErrOutOfRange.
func (c *Contact) Apply(u Update) error {
	if u.Phone != nil {
		if err := checkIndex("phone", *u.Phone, len(c.Phones)); err != nil {
			return err
		}
	}
	if u.Email != nil {
		if err := checkIndex("email", *u.Email, len(c.Emails)); err != nil {
			return err
		}
	}

	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Company != nil {
		c.Company = *u.Company
	}
	if p := u.Phone; p != nil {
		switch {
		case p.Value == DeleteSentinel:
			c.Phones = append(c.Phones[:p.Index:p.Index], c.Phones[p.Index+1:]...)
		case p.Index == AppendIndex:
			c.Phones = append(c.Phones, Phone{Label: "mobile", Number: p.Value})
		default:
			c.Phones[p.Index].Number = p.Value
		}
	}
	if e := u.Email; e != nil {
		switch {
		case e.Value == DeleteSentinel:
			c.Emails = append(c.Emails[:e.Index:e.Index], c.Emails[e.Index+1:]...)
		case e.Index == AppendIndex:
			c.Emails = append(c.Emails, Email{Label: "home", Address: e.Value})
		default:
			c.Emails[e.Index].Address = e.Value
		}
	}
	return nil
}

func checkIndex(what string, entry Indexed, length int) error {
	index := entry.Index
	if index == AppendIndex && entry.Value != DeleteSentinel {
		return nil
	}
	if index < 0 || index >= length {
		return sweeperrors.Wrap(sweeperrors.ErrOutOfRange, fmt.Sprintf("%s index %d of %d", what, index, length))
	}
	return nil
}
