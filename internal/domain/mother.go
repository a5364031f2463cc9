// Package domain contains core domain types for the Majka intake service.
package domain

import (
	"time"
)

// Mother represents a registered mother profile.
type Mother struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Age          *int       `json:"age,omitempty"`
	Country      string     `json:"country,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PostpartumWeeks returns the number of weeks since delivery, clamped at zero.
// The second return value is false when no delivery date is recorded.
func (m *Mother) PostpartumWeeks(now time.Time) (float64, bool) {
	if m.DeliveredAt == nil {
		return 0, false
	}
	weeks := now.Sub(*m.DeliveredAt).Hours() / (24 * 7)
	if weeks < 0 {
		weeks = 0
	}
	return weeks, true
}

// Profile is the public view of a mother returned by login and profile fetch.
type Profile struct {
	Name        string     `json:"name"`
	Age         *int       `json:"age,omitempty"`
	Country     string     `json:"country,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// Profile returns the public view of the mother.
func (m *Mother) Profile() *Profile {
	return &Profile{
		Name:        m.Name,
		Age:         m.Age,
		Country:     m.Country,
		DeliveredAt: m.DeliveredAt,
	}
}
