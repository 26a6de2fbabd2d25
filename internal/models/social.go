package models

import "time"

// Post is a social feed entry
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	TripID    *string   `json:"trip_id,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostImage is an image attached to a post
type PostImage struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	StorageKey string    `json:"-"`
	URL        string    `json:"url"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostStats carries counts and viewer flags computed alongside a post
type PostStats struct {
	LikeCount    int  `json:"like_count"`
	CommentCount int  `json:"comment_count"`
	Liked        bool `json:"liked"`
	Bookmarked   bool `json:"bookmarked"`
}

// FeedItem is a post with the data needed to render it
type FeedItem struct {
	Post
	PostStats
	Author *ProfileSummary `json:"author,omitempty"`
	Images []*PostImage    `json:"images"`
}

// GetID returns the post ID
func (f *FeedItem) GetID() string { return f.ID }

// Comment is a reply on a post
type Comment struct {
	ID        string          `json:"id"`
	PostID    string          `json:"post_id"`
	AuthorID  string          `json:"author_id"`
	Author    *ProfileSummary `json:"author,omitempty"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
}

// Analytics is the admin dashboard summary
type Analytics struct {
	Profiles      int       `json:"profiles"`
	Trips         int       `json:"trips"`
	PublicGuides  int       `json:"public_guides"`
	Posts         int       `json:"posts"`
	Comments      int       `json:"comments"`
	Expenses      int       `json:"expenses"`
	RecentSignups int       `json:"recent_signups"`
	GeneratedAt   time.Time `json:"generated_at"`
}
