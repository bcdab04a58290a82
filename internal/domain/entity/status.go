package entity

import "time"

// Status is a named node in a tenant's workflow graph. The set of
// statuses in a tenant's catalog defines the valid document states;
// Slug is unique within a tenant.
type Status struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Color     string    `json:"color"`
	IsInitial bool      `json:"is_initial"`
	IsFinal   bool      `json:"is_final"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
