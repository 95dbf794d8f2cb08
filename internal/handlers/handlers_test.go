package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"
	"recycle-backend/internal/repository"
	"recycle-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "good-token"

type validatorStub func(string) (int64, error)

func (f validatorStub) ValidateJWT(token string) (int64, error) { return f(token) }

func fixedUser(token string) (int64, error) {
	if token == testToken {
		return 7, nil
	}
	return 0, errors.New("invalid token")
}

type authUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newAuthUsers() *authUsers {
	return &authUsers{byEmail: make(map[string]*models.User)}
}

func (s *authUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = int64(len(s.byEmail) + 1)
	s.byEmail[u.Email] = u
	return nil
}

func (s *authUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user %d", id)
}

func (s *authUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

func (s *authUsers) UpdatePassword(context.Context, int64, string) error { return nil }

type productStore struct {
	calls int
}

func (s *productStore) List(context.Context, models.ProductFilter) ([]*models.Product, error) {
	s.calls++
	return nil, nil
}

func (s *productStore) GetByID(_ context.Context, id int64) (*models.Product, error) {
	s.calls++
	return &models.Product{ID: id, SellerID: 7}, nil
}

func (s *productStore) Create(context.Context, *models.Product) error { s.calls++; return nil }
func (s *productStore) Update(context.Context, *models.Product) error { s.calls++; return nil }
func (s *productStore) Delete(context.Context, int64) error           { s.calls++; return nil }

func (s *productStore) ListProductTypes(context.Context) ([]*models.LookupType, error) {
	return nil, nil
}

type searchStore struct {
	calls int
}

func (s *searchStore) Posts(context.Context, string) ([]repository.SearchHit, error) {
	s.calls++
	return []repository.SearchHit{{ID: 1, Entity: repository.HitPost, Kind: repository.HitPost, Title: "Glass glass", Description: "bottles"}}, nil
}

func (s *searchStore) Products(context.Context, string) ([]repository.SearchHit, error) {
	s.calls++
	return nil, nil
}

type postStore struct {
	posts     map[int64]*models.Post
	listCalls int
}

func (s *postStore) List(context.Context, models.PostFilter) ([]*models.Post, error) {
	s.listCalls++
	return []*models.Post{}, nil
}

func (s *postStore) GetByID(_ context.Context, id int64) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, apperror.NotFound("post %d", id)
	}
	return p, nil
}

func (s *postStore) Create(_ context.Context, p *models.Post, urls []string) error {
	p.ID = int64(len(s.posts) + 1)
	for i, u := range urls {
		p.Images = append(p.Images, models.PostImage{ID: int64(i + 1), PostID: p.ID, URL: u})
	}
	s.posts[p.ID] = p
	return nil
}

func (s *postStore) Update(context.Context, *models.Post, []string, bool) ([]string, error) {
	return nil, nil
}

func (s *postStore) Delete(context.Context, int64) ([]string, error) { return nil, nil }

func (s *postStore) ListPostTypes(context.Context) ([]*models.LookupType, error) { return nil, nil }

type imageStore struct {
	contentTypes []string
}

func (s *imageStore) Upload(_ context.Context, folder, filename, contentType string, _ []byte) (string, error) {
	s.contentTypes = append(s.contentTypes, contentType)
	return fmt.Sprintf("https://img.test/%s/%s", folder, filename), nil
}

func (s *imageStore) Delete(context.Context, string) error { return nil }

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }

func testAuthService(users services.AuthUserStore) *services.AuthService {
	return services.NewAuthService(users, nil, services.AuthSettings{
		Secret:    "test-secret",
		AccessTTL: time.Hour,
		ResetTTL:  time.Hour,
	})
}

func newTestRouter(h Handlers) http.Handler {
	if h.Auth == nil {
		h.Auth = NewAuthHandler(testAuthService(newAuthUsers()))
	}
	return NewRouter(h, RouterOptions{
		Validator:   validatorStub(fixedUser),
		CORSOrigins: []string{"*"},
	})
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperror.NotFound("post %d", 1), http.StatusNotFound},
		{"forbidden", apperror.AssertOwner("post", 1, 2), http.StatusForbidden},
		{"invalid", apperror.Invalid("bad"), http.StatusBadRequest},
		{"upstream", apperror.Upstream("upload image", errors.New("boom")), http.StatusBadGateway},
		{"conflict", apperror.Conflict("taken"), http.StatusConflict},
		{"unauthorized", fmt.Errorf("login: %w", apperror.ErrUnauthorized), http.StatusUnauthorized},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "Failed to do it")
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Failed to do it", errorBody(t, rec))
			} else {
				assert.Equal(t, tt.err.Error(), errorBody(t, rec))
			}
		})
	}
}

func TestAuthHandler_SignupAndLogin(t *testing.T) {
	router := newTestRouter(Handlers{Auth: NewAuthHandler(testAuthService(newAuthUsers()))})

	body := `{"email":"Ann@Example.com","password":"secret-pass","full_name":"Ann"}`
	rec := do(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup struct {
		User  models.User    `json:"user"`
		Token services.Token `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.Equal(t, "ann@example.com", signup.User.Email)
	assert.Equal(t, "bearer", signup.Token.TokenType)
	assert.NotEmpty(t, signup.Token.AccessToken)
	assert.NotContains(t, rec.Body.String(), "secret-pass")

	rec = do(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username":"ann@example.com","password":"secret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{"username": {"ann@example.com"}, "password": {"secret-pass"}}
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	form.Set("password", "wrong-pass")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginRequiresCredentials(t *testing.T) {
	router := newTestRouter(Handlers{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_PasswordResetDoesNotRevealAccounts(t *testing.T) {
	router := newTestRouter(Handlers{})

	rec := do(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/auth/request-password-reset",
		strings.NewReader(`{"email":"nobody@example.com"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, services.PasswordResetMessage, body.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(Handlers{})

	for _, path := range []string{"/api/v1/users/me", "/api/v1/users/balance", "/api/v1/expenses", "/api/v1/insights"} {
		rec := do(t, router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestProductHandler_UpdateRejectsNullType(t *testing.T) {
	store := &productStore{}
	router := newTestRouter(Handlers{Product: NewProductHandler(services.NewProductService(store))})

	req := authed(httptest.NewRequest(http.MethodPut, "/api/v1/products/3", strings.NewReader(`{"product_type_id":null}`)))
	rec := do(t, router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, store.calls)
}

func TestProductHandler_InvalidPathID(t *testing.T) {
	router := newTestRouter(Handlers{Product: NewProductHandler(services.NewProductService(&productStore{}))})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid product_id", errorBody(t, rec))
}

func TestSearchHandler(t *testing.T) {
	store := &searchStore{}
	router := newTestRouter(Handlers{Search: NewSearchHandler(services.NewSearchService(store))})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=ab", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, store.calls)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/search?query=glass", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var results []models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)
}

func TestFeedHandler_ListPagination(t *testing.T) {
	store := &postStore{posts: map[int64]*models.Post{}}
	router := newTestRouter(Handlers{Feed: NewFeedHandler(services.NewFeedService(store, nil))})

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit=500", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/feed?skip=0&limit=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.listCalls)
}

func TestFeedHandler_CreateMultipart(t *testing.T) {
	store := &postStore{posts: map[int64]*models.Post{}}
	images := &imageStore{}
	router := newTestRouter(Handlers{Feed: NewFeedHandler(services.NewFeedService(store, images))})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Sorted my glass"))
	require.NoError(t, mw.WriteField("content", "Three bags"))
	require.NoError(t, mw.WriteField("post_type_id", "2"))
	part, err := mw.CreateFormFile("files", "bottle.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/feed", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, router, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Sorted my glass", post.Title)
	assert.Equal(t, int64(7), post.AuthorID)
	require.NotNil(t, post.PostTypeID)
	assert.Equal(t, int64(2), *post.PostTypeID)
	require.Len(t, post.Images, 1)
	assert.Equal(t, []string{"image/png"}, images.contentTypes)
}

func TestFeedHandler_CreateRejectsBadPostType(t *testing.T) {
	store := &postStore{posts: map[int64]*models.Post{}}
	router := newTestRouter(Handlers{Feed: NewFeedHandler(services.NewFeedService(store, &imageStore{}))})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "t"))
	require.NoError(t, mw.WriteField("post_type_id", "two"))
	require.NoError(t, mw.Close())

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/feed", &buf))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.posts)
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(Handlers{Health: NewHealthHandler(pingerStub{})})
	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	router = newTestRouter(Handlers{Health: NewHealthHandler(pingerStub{err: errors.New("down")})})
	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(Handlers{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/feed", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := do(t, router, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketHandler(t *testing.T) {
	hub := services.NewWSHub()
	router := newTestRouter(Handlers{WebSocket: NewWebSocketHandler(hub, validatorStub(fixedUser))})
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws?token=bad")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + testToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: "ping", Timestamp: 42}))
	var msg services.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypePong, msg.Type)
	assert.Equal(t, int64(42), msg.Timestamp)

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: "dance"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypeError, msg.Type)

	hub.BalanceChanged(context.Background(), 7, 120)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.WSTypeBalanceUpdated, msg.Type)
	require.NotNil(t, msg.Balance)
	assert.Equal(t, int64(120), *msg.Balance)
}
