package handlers

import (
	"net/http"

	"recycle-backend/internal/metrics"
	"recycle-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Ledger    *LedgerHandler
	Feed      *FeedHandler
	Product   *ProductHandler
	Calendar  *CalendarHandler
	Search    *SearchHandler
	Waste     *WasteHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
}

// RouterOptions holds the cross-cutting pieces of the router
type RouterOptions struct {
	Validator   middleware.TokenValidator
	AuthLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// NewRouter builds the chi router with middleware and every route
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	if h.Health != nil {
		r.Get("/healthz", h.Health.Healthz)
	}
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Handler)
			}
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Post("/request-password-reset", h.Auth.RequestPasswordReset)
			r.Post("/reset-password", h.Auth.ResetPassword)
		})

		// Public reads
		r.Get("/feed", h.Feed.List)
		r.Get("/feed/post-types", h.Feed.PostTypes)
		r.Get("/feed/user/{user_id}", h.Feed.ListByUser)
		r.Get("/feed/{post_id}", h.Feed.Get)
		r.Get("/products", h.Product.List)
		r.Get("/products/types", h.Product.Types)
		r.Get("/products/{product_id}", h.Product.Get)
		r.Get("/search", h.Search.Search)
		r.Get("/waste-collection/waste-types", h.Waste.WasteTypes)
		r.Post("/waste-collection/detect-waste", h.Waste.Detect)
		r.Get("/waste-collection/recycling-centers", h.Waste.RecyclingCenters)
		r.Get("/waste-collection/reward", h.Waste.Reward)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(opts.Validator))

			r.Get("/users/me", h.User.GetMe)
			r.Patch("/users/me", h.User.UpdateMe)
			r.Get("/users/me/photos", h.User.ListPhotos)
			r.Post("/users/me/photos", h.User.AddPhotos)
			r.Patch("/users/me/profile-photo", h.User.UpdateProfilePhoto)
			r.Put("/users/me/push-token", h.User.RegisterPushToken)
			r.Get("/users/options", h.User.GetOptions)
			r.Put("/users/options", h.User.UpdateOptions)

			r.Get("/users/balance", h.Ledger.Balance)
			r.Post("/users/rewards", h.Ledger.CreateReward)
			r.Get("/users/weekly-data", h.Ledger.WeeklyData)
			r.Get("/users/monthly-transactions/{year}/{month}", h.Ledger.MonthlyTransactions)
			r.Get("/insights", h.Ledger.Insights)

			r.Get("/expenses", h.Ledger.ListExpenses)
			r.Post("/expenses", h.Ledger.CreateExpense)
			r.Get("/expenses/statistics", h.Ledger.ExpenseStatistics)
			r.Put("/expenses/{expense_id}", h.Ledger.UpdateExpense)
			r.Delete("/expenses/{expense_id}", h.Ledger.DeleteExpense)

			r.Post("/feed", h.Feed.Create)
			r.Put("/feed/{post_id}", h.Feed.Update)
			r.Delete("/feed/{post_id}", h.Feed.Delete)

			r.Post("/products", h.Product.Create)
			r.Put("/products/{product_id}", h.Product.Update)
			r.Delete("/products/{product_id}", h.Product.Delete)

			r.Get("/calendar", h.Calendar.List)
			r.Post("/calendar", h.Calendar.Create)
			r.Put("/calendar/{event_id}", h.Calendar.Update)
			r.Delete("/calendar/{event_id}", h.Calendar.Delete)

			r.Post("/waste-collection", h.Waste.RecordCollection)
		})
	})

	return r
}
