// Package model holds the types shared between the handler, service and
// repository layers.
package model

import "time"

// Base carries the columns every table has.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
