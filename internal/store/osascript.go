package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
	"github.com/chazuruo/sweep/internal/runner"
)

// Script file names expected in the osascript script directory.
const (
	scriptList   = "get_contacts.scpt"
	scriptUpdate = "update_contact.scpt"
	scriptDelete = "delete_contact.scpt"
)

// fieldSep separates fields in get_contacts.scpt output.
const fieldSep = "|||"

// Osascript is a Store that drives the native Contacts application through
// AppleScript files run by the osascript binary.
type Osascript struct {
	// Binary is the osascript executable.
	Binary string
	// ScriptDir holds get_contacts.scpt, update_contact.scpt and delete_contact.scpt.
	ScriptDir string
}

// NewOsascript returns an Osascript store.
func NewOsascript(binary, scriptDir string) *Osascript {
	if binary == "" {
		binary = "osascript"
	}
	return &Osascript{Binary: binary, ScriptDir: scriptDir}
}

// ListContacts implements Store.
func (o *Osascript) ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error) {
	if err := checkPageArgs(offset, limit); err != nil {
		return contacts.Page{}, err
	}
	out, err := o.run(ctx, "list", "", scriptList, strconv.Itoa(offset), strconv.Itoa(limit))
	if err != nil {
		return contacts.Page{}, err
	}
	page := ParseContactList(out)
	page.HasMore = offset-1+len(page.Contacts) < page.TotalCount
	return page, nil
}

// UpdateContact implements Store. Unset fields are passed as empty strings
// and unset indexes as "0", which the script treats as "leave unchanged".
func (o *Osascript) UpdateContact(ctx context.Context, id string, update contacts.Update) (contacts.Result, error) {
	if err := update.Validate(); err != nil {
		return contacts.Result{Success: false, Message: err.Error()}, nil
	}
	args := []string{id, "", "", "", "0", "", "0"}
	if update.Name != nil {
		args[1] = *update.Name
	}
	if update.Company != nil {
		args[2] = *update.Company
	}
	if update.Phone != nil {
		args[3] = update.Phone.Value
		args[4] = strconv.Itoa(update.Phone.Index)
	}
	if update.Email != nil {
		args[5] = update.Email.Value
		args[6] = strconv.Itoa(update.Email.Index)
	}
	out, err := o.run(ctx, "update", id, scriptUpdate, args...)
	if err != nil {
		return contacts.Result{}, err
	}
	return scriptResult(out), nil
}

// DeleteContact implements Store.
func (o *Osascript) DeleteContact(ctx context.Context, id string) (contacts.Result, error) {
	out, err := o.run(ctx, "delete", id, scriptDelete, id)
	if err != nil {
		return contacts.Result{}, err
	}
	return scriptResult(out), nil
}

func (o *Osascript) run(ctx context.Context, op, id, script string, args ...string) (string, error) {
	result := runner.Exec(ctx, runner.ExecConfig{
		Program: o.Binary,
		Args:    append([]string{filepath.Join(o.ScriptDir, script)}, args...),
	})
	if result.Error != nil {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = result.Error.Error()
		}
		return "", &sweeperrors.StoreError{
			Op:  op,
			ID:  id,
			Err: sweeperrors.Wrap(sweeperrors.ErrTransport, fmt.Sprintf("osascript %s: %s", script, detail)),
		}
	}
	return strings.TrimSpace(result.Stdout), nil
}

// scriptResult interprets mutation script output: success iff it starts with "Success".
func scriptResult(out string) contacts.Result {
	if strings.HasPrefix(out, "Success") {
		return contacts.Result{Success: true, Message: out}
	}
	if out == "" {
		out = "no output from script"
	}
	return contacts.Result{Success: false, Message: out}
}

// ParseContactList parses get_contacts.scpt output:
//
//	total|||name|||id|||phones|||emails|||company|||name|||id|||...
//
// where phones and emails are "label:value" pairs joined by ";". Records
// missing a name or id are skipped. HasMore is left for the caller.
func ParseContactList(raw string) contacts.Page {
	var page contacts.Page
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return page
	}

	items := strings.Split(raw, fieldSep)
	page.TotalCount, _ = strconv.Atoi(strings.TrimSpace(items[0]))

	for i := 1; i < len(items); i += 5 {
		name := strings.TrimSpace(items[i])
		id := strings.TrimSpace(field(items, i+1))
		if name == "" || id == "" {
			continue
		}
		c := contacts.Contact{
			ID:      id,
			Name:    name,
			Company: strings.TrimSpace(field(items, i+4)),
		}
		for _, p := range parsePairs(field(items, i+2), "phone") {
			c.Phones = append(c.Phones, contacts.Phone{Label: p[0], Number: p[1]})
		}
		for _, p := range parsePairs(field(items, i+3), "email") {
			c.Emails = append(c.Emails, contacts.Email{Label: p[0], Address: p[1]})
		}
		page.Contacts = append(page.Contacts, c)
	}
	return page
}

func field(items []string, i int) string {
	if i < len(items) {
		return items[i]
	}
	return ""
}

// parsePairs splits "label:value;label:value". Pairs without a value are dropped.
func parsePairs(data, defaultLabel string) [][2]string {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}
	var out [][2]string
	for _, pair := range strings.Split(data, ";") {
		label, value, ok := strings.Cut(pair, ":")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			label = defaultLabel
		}
		out = append(out, [2]string{label, value})
	}
	return out
}
