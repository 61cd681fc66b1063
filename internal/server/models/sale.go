// Package models defines server-side data models persisted in the database.
package models

import "time"

// Sale is one accepted submission. Rows are append-only.
type Sale struct {
	ID            int64     `json:"id"`
	SalespersonID string    `json:"vendedor"`
	SerialCode    string    `json:"serie"`
	// PhotoKey is the object-storage key of the uploaded photo.
	PhotoKey string `json:"foto_key"`
	// PhotoURL is the public URL the photo can be fetched from.
	PhotoURL    string    `json:"foto_url"`
	SubmittedAt time.Time `json:"fecha"`
}
