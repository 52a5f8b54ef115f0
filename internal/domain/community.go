package domain

import "time"

// Post is a community publication: a reflection with optional quoted verses
// and an optional image.
type Post struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	Author       PublicUser `json:"author"`
	Content      string     `json:"content"`
	Verses       []string   `json:"verses"`
	BookID       string     `json:"book_id,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsAuthoredBy reports whether userID wrote the post.
func (p *Post) IsAuthoredBy(userID string) bool {
	return p.AuthorID == userID
}

// Comment is a reply to a post.
type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id"`
	AuthorID  string     `json:"author_id"`
	Author    PublicUser `json:"author"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserProfile is the public view of a user with their books and counters.
type UserProfile struct {
	PublicUser
	CreatedAt      time.Time     `json:"created_at"`
	Books          []BookSummary `json:"books"`
	PostCount      int           `json:"post_count"`
	FollowerCount  int           `json:"follower_count"`
	FollowingCount int           `json:"following_count"`
}
