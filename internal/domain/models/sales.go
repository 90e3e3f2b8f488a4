package models

import "time"

// Customer is a storefront account as seen by staff.
type Customer struct {
	ID        FlexID    `json:"id"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	Status    string    `json:"status,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (c Customer) FullName() string {
	return firstNonEmpty(c.FirstName + " " + c.LastName)
}

func (c Customer) RecordID() string    { return c.ID.String() }
func (c Customer) RecordLabel() string { return firstNonEmpty(c.FullName(), c.Email, c.ID.String()) }

// Coupon is a discount code.
type Coupon struct {
	ID            FlexID     `json:"id"`
	Code          string     `json:"code"`
	Type          string     `json:"type,omitempty"` // percentage / fixed
	Value         float64    `json:"value"`
	MinOrderTotal float64    `json:"minOrderAmount,omitempty"`
	UsageLimit    int        `json:"usageLimit,omitempty"`
	UsedCount     int        `json:"usedCount"`
	IsActive      bool       `json:"isActive"`
	StartsAt      *time.Time `json:"startDate,omitempty"`
	ExpiresAt     *time.Time `json:"endDate,omitempty"`
}

func (c Coupon) RecordID() string    { return c.ID.String() }
func (c Coupon) RecordLabel() string { return firstNonEmpty(c.Code, c.ID.String()) }

// Review is a customer product review awaiting or past moderation.
type Review struct {
	ID           FlexID    `json:"id"`
	ProductID    FlexID    `json:"productId,omitempty"`
	ProductName  string    `json:"productName,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	Status       string    `json:"status,omitempty"` // pending / approved / rejected
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

func (r Review) RecordID() string { return r.ID.String() }
func (r Review) RecordLabel() string {
	return firstNonEmpty(r.Title, r.ProductName, "review #"+r.ID.String())
}
