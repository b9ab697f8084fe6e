package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a tenant customer whose reputation is being monitored.
type Client struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactEmail string    `json:"contact_email"`
	Website      string    `json:"website,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClientEntity is a named entity (person, organization, handle) that a
// client wants monitored.
type ClientEntity struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	EntityName string    `json:"entity_name"`
	EntityType string    `json:"entity_type"`
	Aliases    []string  `json:"aliases,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
