package address

import "time"

// Address belongs to a user's address book. Orders never reference it
// directly; intake copies the fields onto the order.
//
// Invariant: at most one address per user has IsDefault set.
type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Province   string    `json:"province"`
	PostalCode string    `json:"postalCode"`
	Notes      string    `json:"notes,omitempty"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PatchAddressModel is a typed partial update. Nil fields are left untouched.
type PatchAddressModel struct {
	Street     *string
	City       *string
	Province   *string
	PostalCode *string
	Notes      *string
	IsDefault  *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p *PatchAddressModel) IsEmpty() bool {
	return p.Street == nil && p.City == nil && p.Province == nil &&
		p.PostalCode == nil && p.Notes == nil && p.IsDefault == nil
}
