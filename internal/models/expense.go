package models

import "time"

// SplitPolicy decides who shares an expense
type SplitPolicy string

const (
	SplitEveryone     SplitPolicy = "everyone"
	SplitParticipants SplitPolicy = "participants"
)

// Expense is a shared cost paid by one trip member
type Expense struct {
	ID           string      `json:"id"`
	TripID       string      `json:"trip_id"`
	PaidBy       string      `json:"paid_by"`
	Description  string      `json:"description"`
	Amount       float64     `json:"amount"`
	Currency     string      `json:"currency"`
	Category     string      `json:"category"`
	SplitPolicy  SplitPolicy `json:"split_policy"`
	Participants []string    `json:"participants"`
	PaidAt       time.Time   `json:"paid_at"`
	CreatedBy    string      `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Settlement is a recorded payment between two trip members
type Settlement struct {
	ID         string    `json:"id"`
	TripID     string    `json:"trip_id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Note       string    `json:"note"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberBalance is a member's net position; positive means they are owed money
type MemberBalance struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
}

// SuggestedPayment is a computed transfer that zeroes out balances
type SuggestedPayment struct {
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Amount     float64 `json:"amount"`
}

// TripBalances is the balances view of a trip
type TripBalances struct {
	TripID      string             `json:"trip_id"`
	Currency    string             `json:"currency"`
	TotalSpent  float64            `json:"total_spent"`
	Balances    []MemberBalance    `json:"balances"`
	Suggestions []SuggestedPayment `json:"suggestions"`
}
