// Package domain holds the persisted models.
package domain

import (
	"time"

	"github.com/listenupapp/fieldcodec/internal/codec"
)

// Contact is a person reachable by phone, addressed by a slug.
// An empty Slug is replaced by the store with a computed default on insert.
type Contact struct {
	ID           int64         `json:"id"`
	Slug         codec.Slug    `json:"slug"`
	Phone        codec.Phone   `json:"-"`
	LuckyNumbers codec.IntList `json:"lucky_numbers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no slices with c.
func (c *Contact) Clone() *Contact {
	out := *c
	out.LuckyNumbers = c.LuckyNumbers.Clone()
	return &out
}

// InitTimestamps sets both timestamps on first insert.
func (c *Contact) InitTimestamps(now time.Time) {
	now = now.UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Touch records a modification.
func (c *Contact) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}
