package store

import "github.com/chazuruo/sweep/internal/contacts"

// ListResponse is the JSON body of GET /api/contacts.
type ListResponse struct {
	Contacts   []contacts.Contact `json:"contacts"`
	TotalCount int                `json:"totalCount"`
	Start      int                `json:"start"`
	Limit      int                `json:"limit"`
	HasMore    bool               `json:"hasMore"`
}

// UpdateRequest is the JSON body of PATCH /api/contacts/{id}.
type UpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	Company    *string `json:"company,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	PhoneIndex *int    `json:"phoneIndex,omitempty"`
	Email      *string `json:"email,omitempty"`
	EmailIndex *int    `json:"emailIndex,omitempty"`
}

// NewUpdateRequest converts a sparse update to its wire form.
func NewUpdateRequest(u contacts.Update) UpdateRequest {
	req := UpdateRequest{Name: u.Name, Company: u.Company}
	if u.Phone != nil {
		value, index := u.Phone.Value, u.Phone.Index
		req.Phone, req.PhoneIndex = &value, &index
	}
	if u.Email != nil {
		value, index := u.Email.Value, u.Email.Index
		req.Email, req.EmailIndex = &value, &index
	}
	return req
}

// Update converts the request back to a sparse update. A phone or email
// without an index is appended.
func (r UpdateRequest) Update() contacts.Update {
	u := contacts.Update{Name: r.Name, Company: r.Company}
	if r.Phone != nil {
		u.Phone = &contacts.Indexed{Index: indexOr(r.PhoneIndex), Value: *r.Phone}
	}
	if r.Email != nil {
		u.Email = &contacts.Indexed{Index: indexOr(r.EmailIndex), Value: *r.Email}
	}
	return u
}

func indexOr(i *int) int {
	if i == nil {
		return contacts.AppendIndex
	}
	return *i
}
