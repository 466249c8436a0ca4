package domain

import "time"

type EventType string

const (
	EventCreated EventType = "message.created"
	EventUpdated EventType = "message.updated"
	EventDeleted EventType = "message.deleted"
)

// Event describes a committed change to a message. It is published after the
// store write succeeds, so consumers never see changes that were rolled back.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	MessageID  int64     `json:"message_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	YouTubeURL string    `json:"youtube_url,omitempty"`
	At         time.Time `json:"at"`
}
