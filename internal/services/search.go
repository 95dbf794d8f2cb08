package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"
	"recycle-backend/internal/repository"
)

const maxDescriptionLength = 100

// SearchStore returns raw matches for a query
type SearchStore interface {
	Posts(ctx context.Context, q string) ([]repository.SearchHit, error)
	Products(ctx context.Context, q string) ([]repository.SearchHit, error)
}

// SearchService ranks posts and products by how often they mention a query
type SearchService struct {
	store SearchStore
}

// NewSearchService creates a new search service
func NewSearchService(store SearchStore) *SearchService {
	return &SearchService{store: store}
}

// Search returns one page of ranked results
func (s *SearchService) Search(ctx context.Context, query string, skip, limit int) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return nil, apperror.Invalid("query must be at least %d characters", minSearchLength)
	}
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}

	posts, err := s.store.Posts(ctx, query)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products(ctx, query)
	if err != nil {
		return nil, err
	}

	ranked := rank(query, append(posts, products...))
	return paginate(ranked, skip, limit), nil
}

type scoredHit struct {
	hit     repository.SearchHit
	score   int
	product bool
}

// rank orders hits by occurrences of the query, then posts before products, then id
func rank(query string, hits []repository.SearchHit) []models.SearchResult {
	needle := strings.ToLower(query)
	scored := make([]scoredHit, 0, len(hits))
	for _, h := range hits {
		score := strings.Count(strings.ToLower(h.Title), needle) +
			strings.Count(strings.ToLower(h.Description), needle)
		scored = append(scored, scoredHit{
			hit:     h,
			score:   score,
			product: h.Entity == repository.HitProduct,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.product != b.product {
			return !a.product
		}
		return a.hit.ID < b.hit.ID
	})

	results := make([]models.SearchResult, 0, len(scored))
	for _, s := range scored {
		results = append(results, models.SearchResult{
			ID:          s.hit.ID,
			Type:        s.hit.Kind,
			Title:       s.hit.Title,
			Description: truncate(s.hit.Description, maxDescriptionLength),
		})
	}
	return results
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func paginate(results []models.SearchResult, skip, limit int) []models.SearchResult {
	if skip >= len(results) {
		return []models.SearchResult{}
	}
	end := skip + limit
	if end > len(results) {
		end = len(results)
	}
	return results[skip:end]
}
