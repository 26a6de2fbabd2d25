package repository

import (
	"context"
	"fmt"
	"time"

	"tripshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// feedSelect loads posts with counts and viewer flags; $1 is the viewer ID
const feedSelect = `
	SELECT p.id, p.author_id, p.trip_id, p.body, p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM post_reactions r WHERE r.post_id = p.id),
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		EXISTS(SELECT 1 FROM post_reactions r WHERE r.post_id = p.id AND r.user_id = $1),
		EXISTS(SELECT 1 FROM bookmarks b WHERE b.post_id = p.id AND b.user_id = $1)
	FROM posts p
	JOIN profiles a ON a.id = p.author_id
`

// PostRepository handles database operations for the social feed
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func scanFeedItem(row pgx.Row) (*models.FeedItem, error) {
	var f models.FeedItem
	err := row.Scan(
		&f.ID, &f.AuthorID, &f.TripID, &f.Body, &f.CreatedAt, &f.UpdatedAt,
		&f.LikeCount, &f.CommentCount, &f.Liked, &f.Bookmarked,
	)
	if err != nil {
		return nil, err
	}
	f.Images = []*models.PostImage{}
	return &f, nil
}

func collectFeed(rows pgx.Rows) ([]*models.FeedItem, error) {
	defer rows.Close()
	var out []*models.FeedItem
	for rows.Next() {
		f, err := scanFeedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return out, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	query := `INSERT INTO posts (id, author_id, trip_id, body, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(ctx, query, p.ID, p.AuthorID, p.TripID, p.Body, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post as seen by viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID string) (*models.FeedItem, error) {
	f, err := scanFeedItem(r.db.QueryRow(ctx, feedSelect+` WHERE p.id = $2`, viewerID, id))
	if err != nil {
		return nil, notFound(err, "post")
	}
	return f, nil
}

// Feed returns posts by non-banned authors, newest first
func (r *PostRepository) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	query := feedSelect + ` WHERE NOT a.banned ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return collectFeed(rows)
}

// Bookmarked returns posts the viewer bookmarked, most recently bookmarked first
func (r *PostRepository) Bookmarked(ctx context.Context, viewerID string, limit, offset int) ([]*models.FeedItem, error) {
	query := feedSelect + `
		JOIN bookmarks bm ON bm.post_id = p.id AND bm.user_id = $1
		ORDER BY bm.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}
	return collectFeed(rows)
}

// Delete deletes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "post")
	}
	return requireAffected(tag, "post")
}

// AddImage attaches an image at the next position
func (r *PostRepository) AddImage(ctx context.Context, img *models.PostImage) error {
	query := `
		INSERT INTO post_images (id, post_id, storage_key, url, position, created_at)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position) + 1, 0) FROM post_images WHERE post_id = $2), $5)
		RETURNING position
	`
	if err := r.db.QueryRow(ctx, query, img.ID, img.PostID, img.StorageKey, img.URL, img.CreatedAt).Scan(&img.Position); err != nil {
		return fmt.Errorf("failed to add post image: %w", err)
	}
	return nil
}

// ImagesByPosts returns images of the given posts keyed by post ID
func (r *PostRepository) ImagesByPosts(ctx context.Context, postIDs []string) (map[string][]*models.PostImage, error) {
	out := make(map[string][]*models.PostImage, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT id, post_id, storage_key, url, position, created_at
		FROM post_images
		WHERE post_id::text = ANY($1)
		ORDER BY post_id, position
	`
	rows, err := r.db.Query(ctx, query, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get post images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.StorageKey, &img.URL, &img.Position, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post image: %w", err)
		}
		out[img.PostID] = append(out[img.PostID], &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post images: %w", err)
	}
	return out, nil
}

// toggle deletes the (post, user) row from table or inserts it when absent,
// and reports whether the row exists afterwards
func (r *PostRepository) toggle(ctx context.Context, table, postID, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", table, err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	query := `INSERT INTO ` + table + ` (post_id, user_id, created_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := r.db.Exec(ctx, query, postID, userID, time.Now()); err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", table, err)
	}
	return true, nil
}

// ToggleLike likes or unlikes a post
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.toggle(ctx, "post_reactions", postID, userID)
}

// ToggleBookmark bookmarks or unbookmarks a post
func (r *PostRepository) ToggleBookmark(ctx context.Context, postID, userID string) (bool, error) {
	return r.toggle(ctx, "bookmarks", postID, userID)
}

// AddComment creates a comment
func (r *PostRepository) AddComment(ctx context.Context, c *models.Comment) error {
	query := `INSERT INTO comments (id, post_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Exec(ctx, query, c.ID, c.PostID, c.AuthorID, c.Body, c.CreatedAt); err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (r *PostRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(ctx,
		`SELECT id, post_id, author_id, body, created_at FROM comments WHERE id = $1`, id,
	).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return &c, nil
}

// ListComments returns a post's comments, oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, post_id, author_id, body, created_at FROM comments WHERE post_id = $1 ORDER BY created_at`, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return out, nil
}

// DeleteComment deletes a comment
func (r *PostRepository) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return writeErr(err, "delete", "comment")
	}
	return requireAffected(tag, "comment")
}
