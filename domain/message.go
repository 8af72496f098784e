// Package domain contains core concepts of the broadcast system.
// This file defines the Message record and related rules.
// Messages are immutable once appended and never deleted by this core.
package domain

import "time"

// AnonymousAuthor is substituted when a sender provides no display name.
const AnonymousAuthor = "Anonymous"

// Message is one entry of the append-only log.
// ID is the log position: strictly increasing, assigned by the store,
// never reused. CreatedAt is server-assigned UTC and non-decreasing with ID.
type Message struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Content   string    `json:"message"`
	Lang      string    `json:"lang,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
