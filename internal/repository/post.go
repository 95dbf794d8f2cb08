package repository

import (
	"context"
	"fmt"
	"strings"

	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const postSelect = `
	SELECT p.id, p.title, p.content, p.created_at, p.author_id, p.post_type_id,
		u.full_name, u.profile_image, pt.name
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_types pt ON pt.id = p.post_type_id
`

// PostRepository handles database operations for feed posts and their images
type PostRepository struct {
	db DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db DB) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	var author models.UserSummary
	var typeName *string
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.AuthorID, &p.PostTypeID,
		&author.FullName, &author.ProfileImage, &typeName)
	if err != nil {
		return nil, err
	}
	author.ID = p.AuthorID
	p.Author = &author
	if p.PostTypeID != nil && typeName != nil {
		p.PostType = &models.LookupType{ID: *p.PostTypeID, Name: *typeName}
	}
	p.Images = []models.PostImage{}
	return &p, nil
}

// List returns a page of posts, newest first
func (r *PostRepository) List(ctx context.Context, f models.PostFilter) ([]*models.Post, error) {
	var where []string
	var args []any
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", len(args), len(args)))
	}
	if f.PostTypeID != nil {
		args = append(args, *f.PostTypeID)
		where = append(where, fmt.Sprintf("p.post_type_id = $%d", len(args)))
	}
	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		where = append(where, fmt.Sprintf("p.author_id = $%d", len(args)))
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Skip, f.Limit)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "list posts", "post")
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	if err := r.attachImages(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID retrieves a post with its author, type and images
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, postSelect+" WHERE p.id = $1", id))
	if err != nil {
		return nil, wrapError(err, "get post", fmt.Sprintf("post %d", id))
	}
	if err := r.attachImages(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) attachImages(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	byID := make(map[int64]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := r.db.Query(ctx, `SELECT id, post_id, url FROM post_images WHERE post_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load post images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img models.PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL); err != nil {
			return fmt.Errorf("failed to scan post image: %w", err)
		}
		if p, ok := byID[img.PostID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate post images: %w", err)
	}
	return nil
}

func insertImages(ctx context.Context, tx pgx.Tx, postID int64, urls []string) ([]models.PostImage, error) {
	images := make([]models.PostImage, 0, len(urls))
	for _, url := range urls {
		img := models.PostImage{PostID: postID, URL: url}
		err := tx.QueryRow(ctx, `INSERT INTO post_images (url, post_id) VALUES ($1, $2) RETURNING id`, url, postID).Scan(&img.ID)
		if err != nil {
			return nil, wrapError(err, "create post image", "post image")
		}
		images = append(images, img)
	}
	return images, nil
}

// Create inserts a post and its image rows in one transaction
func (r *PostRepository) Create(ctx context.Context, post *models.Post, imageURLs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO posts (title, content, author_id, post_type_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query, post.Title, post.Content, post.AuthorID, post.PostTypeID).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return wrapError(err, "create post", "post")
	}

	post.Images, err = insertImages(ctx, tx, post.ID, imageURLs)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

// Update writes the post fields. When replaceImages is set the old image rows
// are swapped for imageURLs and their URLs are returned.
func (r *PostRepository) Update(ctx context.Context, post *models.Post, imageURLs []string, replaceImages bool) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE posts SET title = $2, content = $3, post_type_id = $4 WHERE id = $1`,
		post.ID, post.Title, post.Content, post.PostTypeID,
	)
	if err != nil {
		return nil, wrapError(err, "update post", "post")
	}
	if tag.RowsAffected() == 0 {
		return nil, wrapError(pgx.ErrNoRows, "update post", fmt.Sprintf("post %d", post.ID))
	}

	var removed []string
	if replaceImages {
		removed, err = deleteImages(ctx, tx, post.ID)
		if err != nil {
			return nil, err
		}
		post.Images, err = insertImages(ctx, tx, post.ID, imageURLs)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit post update: %w", err)
	}
	return removed, nil
}

// Delete removes a post with its images and returns the removed image URLs
func (r *PostRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	removed, err := deleteImages(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, wrapError(err, "delete post", "post")
	}
	if tag.RowsAffected() == 0 {
		return nil, wrapError(pgx.ErrNoRows, "delete post", fmt.Sprintf("post %d", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit post delete: %w", err)
	}
	return removed, nil
}

func deleteImages(ctx context.Context, tx pgx.Tx, postID int64) ([]string, error) {
	rows, err := tx.Query(ctx, `DELETE FROM post_images WHERE post_id = $1 RETURNING url`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete post images: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan post image url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deleted images: %w", err)
	}
	return urls, nil
}

// ListPostTypes returns every post type
func (r *PostRepository) ListPostTypes(ctx context.Context) ([]*models.LookupType, error) {
	return listLookup(ctx, r.db, "post_types")
}

func listLookup(ctx context.Context, db DB, table string) ([]*models.LookupType, error) {
	rows, err := db.Query(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	types := make([]*models.LookupType, 0)
	for rows.Next() {
		var t models.LookupType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		types = append(types, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return types, nil
}
