package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids             []int64         `json:"ids,omitempty"`
	OrderNumbers    []string        `json:"orderNumbers,omitempty"`
	Statuses        []Status        `json:"statuses,omitempty"`
	PaymentStatuses []PaymentStatus `json:"paymentStatuses,omitempty"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	Limit           int             `json:"limit,omitempty"`
	Offset          int             `json:"offset,omitempty"`
}

// PatchOrderModel is a typed partial update. Nil fields are left untouched.
type PatchOrderModel struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	TrackingCode  *string
	PaidAt        *time.Time
	ShippedAt     *time.Time
	DeliveredAt   *time.Time
}

// WithStatus sets the fulfillment status on the patch.
func (p *PatchOrderModel) WithStatus(s Status) *PatchOrderModel {
	p.Status = &s
	return p
}

// WithPaymentStatus sets the payment status on the patch.
func (p *PatchOrderModel) WithPaymentStatus(s PaymentStatus) *PatchOrderModel {
	p.PaymentStatus = &s
	return p
}

// WithPaidAt stamps the payment time on the patch.
func (p *PatchOrderModel) WithPaidAt(t time.Time) *PatchOrderModel {
	p.PaidAt = &t
	return p
}

// IsEmpty reports whether the patch would change nothing.
func (p *PatchOrderModel) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.TrackingCode == nil &&
		p.PaidAt == nil && p.ShippedAt == nil && p.DeliveredAt == nil
}
