package domain

import "time"

type Message struct {
	ID         int64
	Title      string
	Content    string
	YouTubeURL string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Edited reports whether the message was updated after it was posted.
func (m Message) Edited() bool {
	return !m.UpdatedAt.Equal(m.CreatedAt)
}

// Fields are the user-editable parts of a message, already validated.
type Fields struct {
	Title      string
	Content    string
	YouTubeURL string
}

type User struct {
	ID   int64
	Name string
}

type Page struct {
	Items    []Message
	Page     int
	PageSize int
	Total    int
}

func (p Page) TotalPages() int {
	if p.PageSize <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
