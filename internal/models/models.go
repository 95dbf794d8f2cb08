package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account in the system
type User struct {
	ID             int64       `json:"id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"-"`
	FullName       string      `json:"full_name"`
	Bio            string      `json:"bio"`
	IsActive       bool        `json:"is_active"`
	Balance        int64       `json:"balance"`
	ProfileImage   *string     `json:"profile_image,omitempty"`
	PushToken      *string     `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	Options        UserOptions `json:"options"`
}

// UserOptions holds the notification and privacy preferences of a user
type UserOptions struct {
	ReceiveNotifications    bool `json:"receive_notifications"`
	ReceiveNewsletter       bool `json:"receive_newsletter"`
	ReceiveProductUpdates   bool `json:"receive_product_updates"`
	ReceiveFeedbackRequests bool `json:"receive_feedback_requests"`
	AppearInSearchResults   bool `json:"appear_in_search_results"`
	AllowDataCollection     bool `json:"allow_data_collection"`
	OptOutNewspaper         bool `json:"opt_out_newspaper"`
}

// DefaultBio is given to accounts that did not write one
const DefaultBio = "No bio :("

// DefaultUserOptions returns the preferences of a freshly created account
func DefaultUserOptions() UserOptions {
	return UserOptions{
		ReceiveNotifications:    true,
		ReceiveNewsletter:       true,
		ReceiveProductUpdates:   true,
		ReceiveFeedbackRequests: true,
		AppearInSearchResults:   true,
		AllowDataCollection:     true,
	}
}

// UserPhoto is one picture in a user's gallery
type UserPhoto struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	URL    string `json:"url"`
}

// UserSummary is the public view of a user embedded in posts
type UserSummary struct {
	ID           int64   `json:"id"`
	FullName     string  `json:"full_name"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// WasteType is a lookup entry fixing the reward for a category of waste
type WasteType struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	RewardPoints int64  `json:"reward_points"`
}

// Reward is a point grant tied to a waste type
type Reward struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	WasteTypeID int64     `json:"waste_type_id"`
	WasteType   string    `json:"waste_type"`
	Points      int64     `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expense is a point deduction with a free-text description
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	Points      int64     `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// WasteCollection records one collected batch of waste
type WasteCollection struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	WasteTypeID       int64     `json:"waste_type_id"`
	WasteType         string    `json:"waste_type"`
	Quantity          float64   `json:"quantity"`
	CollectionDate    time.Time `json:"collection_date"`
	LocationLatitude  float64   `json:"location_latitude"`
	LocationLongitude float64   `json:"location_longitude"`
}

// RecyclingCenter is static reference data queried by proximity
type RecyclingCenter struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Distance  *float64 `json:"distance,omitempty"`
}

// LookupType is a row of the post_types or product_types tables
type LookupType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Post is an entry in the social feed
type Post struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"created_at"`
	AuthorID   int64        `json:"author_id"`
	PostTypeID *int64       `json:"post_type_id"`
	Author     *UserSummary `json:"author,omitempty"`
	PostType   *LookupType  `json:"post_type,omitempty"`
	Images     []PostImage  `json:"images"`
}

// PostImage is an image attached to a post
type PostImage struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	URL    string `json:"url"`
}

// PostFilter narrows a feed listing
type PostFilter struct {
	Skip       int
	Limit      int
	Search     string
	PostTypeID *int64
	AuthorID   *int64
}

// Product is a marketplace listing
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ProductTypeID int64           `json:"product_type_id"`
	ImageURL      *string         `json:"image_url"`
	SellerID      int64           `json:"seller_id"`
	ProductType   *LookupType     `json:"product_type,omitempty"`
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	Skip          int
	Limit         int
	Search        string
	ProductTypeID *int64
}

// CalendarEvent is a user's calendar entry
type CalendarEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Transaction kinds used in monthly reports
const (
	TransactionReward  = "reward"
	TransactionExpense = "expense"
)

// Transaction is a reward or expense in a monthly report
type Transaction struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Points      int64     `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyPoints is one row of the weekly rollup
type DailyPoints struct {
	Date     string `json:"date"`
	Rewards  int64  `json:"rewards"`
	Expenses int64  `json:"expenses"`
}

// ExpenseStatistics holds the sum and average of expenses over a period
type ExpenseStatistics struct {
	Total   int64   `json:"total"`
	Average float64 `json:"average"`
}

// BalanceSummary is the cached balance with the latest ledger entries
type BalanceSummary struct {
	Balance  int64      `json:"balance"`
	Rewards  []*Reward  `json:"rewards"`
	Expenses []*Expense `json:"expenses"`
}

// ExpenseInsight is a short description of one recent expense
type ExpenseInsight struct {
	Item      string `json:"item"`
	Statistic string `json:"statistic"`
}

// UserInsights is the recomputed balance with recent expenses
type UserInsights struct {
	Balance  int64            `json:"balance"`
	Expenses []ExpenseInsight `json:"expenses"`
}

// SearchResult is one hit of the cross-entity search
type SearchResult struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
