package domain

import "time"

// Post is a feed post as observed by the current viewer. Liked and Saved are
// viewer-relative; LikesCount and CommentsCount are whatever the server last
// reported.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	University    string    `json:"university,omitempty"`
	Content       string    `json:"content"`
	Images        []string  `json:"images,omitempty"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	Liked         bool      `json:"liked"`
	Saved         bool      `json:"saved"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p Post) EntityID() string { return p.ID }

// PostDraft is the payload for creating a post. The server assigns the id;
// the client never inserts a post before the create call returns.
type PostDraft struct {
	Content    string   `json:"content"`
	Images     []string `json:"images,omitempty"`
	University string   `json:"university,omitempty"`
}

// Comment on a post.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c Comment) EntityID() string { return c.ID }
