package models

import "time"

// Media types of gallery items.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Reason is one unlockable message. Ids are dense and start at 1.
type Reason struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// Empty reports whether the reason carries no content, as returned when the
// content backend could not be reached.
func (r Reason) Empty() bool {
	return r.Text == "" && r.ImageURL == ""
}

type ReasonCount struct {
	Count int `json:"count"`
}

type GalleryItem struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Position  int    `json:"-"`
}

type GalleryFilter struct {
	Type string
}

type Highscore struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"playerName"`
	Moves      int       `json:"moves"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HighscoreSubmission is the body of POST /highscores.
type HighscoreSubmission struct {
	PlayerName string `json:"playerName" validate:"required,max=32"`
	Moves      int    `json:"moves" validate:"min=6,max=10000"`
}

// HighscoreResult is the response to a highscore submission.
type HighscoreResult struct {
	Message string    `json:"message"`
	Score   Highscore `json:"score"`
}

type HighscoreFilter struct {
	Limit int
}

// FeedbackSubmission answers the "did you like it?" dialog.
type FeedbackSubmission struct {
	Answer string `json:"answer" validate:"required,oneof=yes no"`
}

type Feedback struct {
	ID        int64     `json:"id"`
	VisitorID string    `json:"visitorId"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Visitor is a browser identified by its visitor cookie. Its id names the
// namespace of its key-value storage.
type Visitor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}
