package domain

import "time"

// Company is a customer organization tickets are raised for.
type Company struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Division is an organizational unit within a company.
type Division struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
