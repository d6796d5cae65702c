package review

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// FilterKind selects what a filter inspects.
type FilterKind string

const (
	// KindText matches name or company, case-insensitively.
	KindText FilterKind = "text"
	// KindPhone matches phone numbers with whitespace removed.
	KindPhone FilterKind = "phone"
)

// FilterMode selects whether a match keeps or hides a contact.
type FilterMode string

const (
	ModeInclude FilterMode = "include"
	ModeExclude FilterMode = "exclude"
)

// ParseFilterKind converts user input into a FilterKind.
func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindText, KindPhone:
		return k, nil
	}
	return "", sweeperrors.Invalidf("filter kind must be one of: text, phone; got %q", s)
}

// ParseFilterMode converts user input into a FilterMode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeInclude, ModeExclude:
		return m, nil
	}
	return "", sweeperrors.Invalidf("filter mode must be one of: include, exclude; got %q", s)
}

// Filter is one immutable visibility predicate.
type Filter struct {
	ID    string
	Kind  FilterKind
	Mode  FilterMode
	Value string
}

// NewFilter validates and builds a filter with a fresh id. The value is
// trimmed; an empty value is rejected.
func NewFilter(kind FilterKind, mode FilterMode, value string) (Filter, error) {
	if kind != KindText && kind != KindPhone {
		return Filter{}, sweeperrors.Invalidf("unknown filter kind %q", kind)
	}
	if mode != ModeInclude && mode != ModeExclude {
		return Filter{}, sweeperrors.Invalidf("unknown filter mode %q", mode)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Filter{}, sweeperrors.Invalidf("Filter value cannot be empty")
	}
	return Filter{
		ID:    "filter-" + uuid.NewString(),
		Kind:  kind,
		Mode:  mode,
		Value: value,
	}, nil
}

// String renders the filter as shown in the filter bar, e.g. `Phone excludes "555"`.
func (f Filter) String() string {
	field := "Name/Company"
	if f.Kind == KindPhone {
		field = "Phone"
	}
	verb := "includes"
	if f.Mode == ModeExclude {
		verb = "excludes"
	}
	return fmt.Sprintf("%s %s %q", field, verb, f.Value)
}

// sameAs reports whether two filters would have an identical effect.
func (f Filter) sameAs(o Filter) bool {
	return f.Kind == o.Kind && f.Mode == o.Mode && strings.EqualFold(f.Value, o.Value)
}

// Matches reports whether c satisfies the filter.
func (f Filter) Matches(c contacts.Contact) bool {
	var hit bool
	switch f.Kind {
	case KindText:
		needle := strings.ToLower(f.Value)
		hit = strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.CompanyName()), needle)
	case KindPhone:
		pattern := stripSpace(f.Value)
		for _, p := range c.Phones {
			if strings.Contains(stripSpace(p.Number), pattern) {
				hit = true
				break
			}
		}
	}
	if f.Mode == ModeExclude {
		return !hit
	}
	return hit
}

// Matches reports whether c satisfies every filter. An empty set matches
// everything.
func Matches(c contacts.Contact, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(c) {
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
