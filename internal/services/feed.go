package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	postFolder      = "post_images"
	minSearchLength = 3
	maxFeedSearch   = 50
)

// PostStore persists posts and their image rows
type PostStore interface {
	List(ctx context.Context, f models.PostFilter) ([]*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post, imageURLs []string) error
	Update(ctx context.Context, post *models.Post, imageURLs []string, replaceImages bool) ([]string, error)
	Delete(ctx context.Context, id int64) ([]string, error)
	ListPostTypes(ctx context.Context) ([]*models.LookupType, error)
}

// PostInput is the form of a new post
type PostInput struct {
	Title      string
	Content    string
	PostTypeID *int64
	Files      []ImageFile
}

// PostUpdate holds the optional fields of a post change. Files, when
// present, replace the existing images.
type PostUpdate struct {
	Title      *string
	Content    *string
	PostTypeID *int64
	Files      []ImageFile
}

// FeedService handles the social feed
type FeedService struct {
	posts  PostStore
	images ImageStore
}

// NewFeedService creates a new feed service
func NewFeedService(posts PostStore, images ImageStore) *FeedService {
	return &FeedService{posts: posts, images: images}
}

// List returns a page of the feed
func (s *FeedService) List(ctx context.Context, f models.PostFilter) ([]*models.Post, error) {
	if err := validatePage(f.Skip, f.Limit); err != nil {
		return nil, err
	}
	f.Search = strings.TrimSpace(f.Search)
	if f.Search != "" {
		n := utf8.RuneCountInString(f.Search)
		if n < minSearchLength || n > maxFeedSearch {
			return nil, apperror.Invalid("search must be between %d and %d characters", minSearchLength, maxFeedSearch)
		}
	}
	return s.posts.List(ctx, f)
}

// ListByUser returns a page of the posts written by one user
func (s *FeedService) ListByUser(ctx context.Context, authorID int64, skip, limit int) ([]*models.Post, error) {
	return s.List(ctx, models.PostFilter{Skip: skip, Limit: limit, AuthorID: &authorID})
}

// Get returns a post by ID
func (s *FeedService) Get(ctx context.Context, id int64) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// PostTypes returns every post type
func (s *FeedService) PostTypes(ctx context.Context) ([]*models.LookupType, error) {
	return s.posts.ListPostTypes(ctx)
}

// Create uploads the images and then stores the post with them
func (s *FeedService) Create(ctx context.Context, authorID int64, in PostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.Invalid("title is required")
	}

	urls, err := s.upload(ctx, in.Files)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      title,
		Content:    in.Content,
		AuthorID:   authorID,
		PostTypeID: in.PostTypeID,
	}
	if err := s.posts.Create(ctx, post, urls); err != nil {
		deleteAll(ctx, s.images, urls)
		return nil, err
	}

	log.Info().Int64("post_id", post.ID).Int64("author_id", authorID).Int("images", len(urls)).Msg("Post created")
	return s.posts.GetByID(ctx, post.ID)
}

// Update changes a post owned by userID
func (s *FeedService) Update(ctx context.Context, userID, postID int64, upd PostUpdate) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := apperror.AssertOwner("post", post.AuthorID, userID); err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperror.Invalid("title must not be empty")
		}
		post.Title = title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}
	if upd.PostTypeID != nil {
		post.PostTypeID = upd.PostTypeID
	}

	replace := len(upd.Files) > 0
	urls, err := s.upload(ctx, upd.Files)
	if err != nil {
		return nil, err
	}

	removed, err := s.posts.Update(ctx, post, urls, replace)
	if err != nil {
		deleteAll(ctx, s.images, urls)
		return nil, err
	}
	deleteAll(ctx, s.images, removed)

	log.Info().Int64("post_id", postID).Int64("user_id", userID).Msg("Post updated")
	return s.posts.GetByID(ctx, postID)
}

// Delete removes a post owned by userID together with its images
func (s *FeedService) Delete(ctx context.Context, userID, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := apperror.AssertOwner("post", post.AuthorID, userID); err != nil {
		return err
	}

	removed, err := s.posts.Delete(ctx, postID)
	if err != nil {
		return err
	}
	deleteAll(ctx, s.images, removed)

	log.Info().Int64("post_id", postID).Int64("user_id", userID).Msg("Post deleted")
	return nil
}

func (s *FeedService) upload(ctx context.Context, files []ImageFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, apperror.Upstream("upload image", errImageStoreMissing)
	}
	return uploadAll(ctx, s.images, postFolder, files)
}
