package models

import "time"

// Agent is a registered chat participant. Name preserves the casing the
// agent registered with; all identity comparisons use the lowercased key.
type Agent struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Profile     Profile   `json:"profile"`
	Joined      time.Time `json:"joined"`
	LastSeen    time.Time `json:"last_seen"`
}

type Profile struct {
	Role                string   `json:"role,omitempty"`
	RecommendedResource string   `json:"recommended_resource,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	Company             string   `json:"company,omitempty"`
	Website             string   `json:"website,omitempty"`
	Location            string   `json:"location,omitempty"`
}

// Message is a one-to-one message. Broadcasts are stored as N independent
// messages, one per recipient, with a "[BROADCAST]" content prefix.
type Message struct {
	ID      int64     `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Read    bool      `json:"read"`
}

// Notification is a transient per-agent queued event, consumed exactly
// once by a drain. Recipient is the lowercased agent key.
type Notification struct {
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Created   time.Time `json:"created"`
}
