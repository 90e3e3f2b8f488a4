package models

import "time"

// Attribute is a product attribute (size, color, material...).
type Attribute struct {
	ID           FlexID    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code,omitempty"`
	Type         string    `json:"type,omitempty"`
	GroupID      FlexID    `json:"groupId,omitempty"`
	GroupName    string    `json:"groupName,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsFilterable bool      `json:"isFilterable"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

func (a Attribute) RecordID() string    { return a.ID.String() }
func (a Attribute) RecordLabel() string { return firstNonEmpty(a.Name, a.Code, a.ID.String()) }

// Brand is a product brand.
type Brand struct {
	ID           FlexID    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug,omitempty"`
	LogoURL      string    `json:"logo,omitempty"`
	Website      string    `json:"website,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsFeatured   bool      `json:"isFeatured"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

func (b Brand) RecordID() string    { return b.ID.String() }
func (b Brand) RecordLabel() string { return firstNonEmpty(b.Name, b.Slug, b.ID.String()) }

// Category is a node of the category tree.
type Category struct {
	ID           FlexID    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug,omitempty"`
	ParentID     FlexID    `json:"parentId,omitempty"`
	Language     string    `json:"language,omitempty"`
	IsActive     bool      `json:"isActive"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

func (c Category) RecordID() string    { return c.ID.String() }
func (c Category) RecordLabel() string { return firstNonEmpty(c.Name, c.Slug, c.ID.String()) }
