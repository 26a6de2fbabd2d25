package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/settlement"

	"github.com/google/uuid"
)

const defaultCurrency = "USD"

// ExpenseService handles shared expenses and settlements
type ExpenseService struct {
	expenses  ExpenseStore
	trips     TripStore
	logger    *ActivityLogger
	publisher ChangePublisher
	now       func() time.Time
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenses ExpenseStore, trips TripStore, logger *ActivityLogger, publisher ChangePublisher) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		trips:     trips,
		logger:    logger,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// ExpenseInput carries expense fields. On update nil fields are left unchanged.
type ExpenseInput struct {
	Description  *string             `json:"description"`
	Amount       *float64            `json:"amount"`
	Currency     *string             `json:"currency"`
	Category     *string             `json:"category"`
	PaidBy       *string             `json:"paid_by"`
	SplitPolicy  *models.SplitPolicy `json:"split_policy"`
	Participants *[]string           `json:"participants"`
	PaidAt       *time.Time          `json:"paid_at"`
}

// SettlementInput records a payment between members
type SettlementInput struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note"`
}

// List returns the expenses of a trip
func (s *ExpenseService) List(ctx context.Context, userID, tripID string) ([]*models.Expense, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	list, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return list, nil
}

// Create records a new expense. The payer defaults to the caller.
func (s *ExpenseService) Create(ctx context.Context, userID, tripID string, in ExpenseInput) (*models.Expense, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}

	now := s.now()
	e := &models.Expense{
		ID:           uuid.New().String(),
		TripID:       tripID,
		PaidBy:       userID,
		Currency:     defaultCurrency,
		SplitPolicy:  models.SplitEveryone,
		Participants: []string{},
		PaidAt:       now,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyExpenseInput(e, in)
	if err := s.validateExpense(ctx, e); err != nil {
		return nil, err
	}

	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.log(ctx, entry{tripID, userID, ActionCreate, EntityExpense, e.ID, expenseSummary(e)})
	s.publisher.PublishChange(tripID, "expenses", ActionCreate, e.ID)
	return e, nil
}

// Update applies a partial update to an expense
func (s *ExpenseService) Update(ctx context.Context, userID, tripID, expenseID string, in ExpenseInput) (*models.Expense, error) {
	e, err := s.load(ctx, userID, tripID, expenseID)
	if err != nil {
		return nil, err
	}
	applyExpenseInput(e, in)
	if err := s.validateExpense(ctx, e); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now()

	if err := s.expenses.Update(ctx, e); err != nil {
		return nil, storeErr(err, "expense")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionUpdate, EntityExpense, e.ID, expenseSummary(e)})
	s.publisher.PublishChange(tripID, "expenses", ActionUpdate, e.ID)
	return e, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, userID, tripID, expenseID string) error {
	e, err := s.load(ctx, userID, tripID, expenseID)
	if err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, e.ID); err != nil {
		return storeErr(err, "expense")
	}

	s.logger.log(ctx, entry{tripID, userID, ActionDelete, EntityExpense, e.ID, expenseSummary(e)})
	s.publisher.PublishChange(tripID, "expenses", ActionDelete, e.ID)
	return nil
}

// RecordSettlement records a payment from one member to another
func (s *ExpenseService) RecordSettlement(ctx context.Context, userID, tripID string, in SettlementInput) (*models.Settlement, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, invalid("amount", "must be positive")
	}
	if in.From == "" || in.To == "" {
		return nil, invalid("from", "and to are required")
	}
	if in.From == in.To {
		return nil, invalid("to", "must differ from from")
	}

	members, err := s.memberSet(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if _, ok := members[in.From]; !ok {
		return nil, invalid("from", "is not a trip member")
	}
	if _, ok := members[in.To]; !ok {
		return nil, invalid("to", "is not a trip member")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	st := &models.Settlement{
		ID:         uuid.New().String(),
		TripID:     tripID,
		FromUserID: in.From,
		ToUserID:   in.To,
		Amount:     settlement.Round(in.Amount),
		Currency:   currency,
		Note:       in.Note,
		CreatedBy:  userID,
		CreatedAt:  s.now(),
	}
	if err := s.expenses.CreateSettlement(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	s.logger.log(ctx, entry{tripID, userID, ActionCreate, EntitySettlement, st.ID,
		fmt.Sprintf("%.2f %s", st.Amount, st.Currency)})
	s.publisher.PublishChange(tripID, "settlements", ActionCreate, st.ID)
	return st, nil
}

// ListSettlements returns the recorded settlements of a trip
func (s *ExpenseService) ListSettlements(ctx context.Context, userID, tripID string) ([]*models.Settlement, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	list, err := s.expenses.ListSettlements(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return list, nil
}

// Balances computes net balances and suggested payments for a trip
func (s *ExpenseService) Balances(ctx context.Context, userID, tripID string) (*models.TripBalances, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}

	members, err := s.trips.ListMembers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	expenses, err := s.expenses.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := s.expenses.ListSettlements(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	return ComputeBalances(tripID, members, expenses, settlements), nil
}

// ComputeBalances nets expenses and settlements into a balances view
func ComputeBalances(tripID string, members []string, expenses []*models.Expense, settlements []*models.Settlement) *models.TripBalances {
	out := &models.TripBalances{
		TripID:      tripID,
		Currency:    defaultCurrency,
		Balances:    []models.MemberBalance{},
		Suggestions: []models.SuggestedPayment{},
	}
	if len(expenses) > 0 {
		out.Currency = expenses[0].Currency
	}

	in := make([]settlement.Expense, 0, len(expenses))
	for _, e := range expenses {
		var participants []string
		if e.SplitPolicy == models.SplitParticipants {
			participants = e.Participants
		}
		in = append(in, settlement.Expense{PaidBy: e.PaidBy, Amount: e.Amount, Participants: participants})
		if e.Amount > 0 {
			out.TotalSpent += e.Amount
		}
	}
	payments := make([]settlement.Payment, 0, len(settlements))
	for _, st := range settlements {
		payments = append(payments, settlement.Payment{From: st.FromUserID, To: st.ToUserID, Amount: st.Amount})
	}
	out.TotalSpent = settlement.Round(out.TotalSpent)

	balances := settlement.Balances(members, in, payments)

	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out.Balances = append(out.Balances, models.MemberBalance{UserID: id, Balance: settlement.Round(balances[id])})
	}

	for _, t := range settlement.Suggest(balances) {
		out.Suggestions = append(out.Suggestions, models.SuggestedPayment{FromUserID: t.From, ToUserID: t.To, Amount: t.Amount})
	}
	return out
}

func (s *ExpenseService) load(ctx context.Context, userID, tripID, expenseID string) (*models.Expense, error) {
	if _, err := authorize(ctx, s.trips, tripID, userID, AccessEdit); err != nil {
		return nil, err
	}
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, storeErr(err, "expense")
	}
	if e.TripID != tripID {
		return nil, fmt.Errorf("expense %w", ErrNotFound)
	}
	return e, nil
}

func (s *ExpenseService) memberSet(ctx context.Context, tripID string) (map[string]struct{}, error) {
	members, err := s.trips.ListMembers(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return set, nil
}

func (s *ExpenseService) validateExpense(ctx context.Context, e *models.Expense) error {
	if strings.TrimSpace(e.Description) == "" {
		return invalid("description", "is required")
	}
	if e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return invalid("amount", "must be positive")
	}
	if len(e.Currency) != 3 {
		return invalid("currency", "must be a three letter code")
	}

	members, err := s.memberSet(ctx, e.TripID)
	if err != nil {
		return err
	}
	if _, ok := members[e.PaidBy]; !ok {
		return invalid("paid_by", "is not a trip member")
	}

	switch e.SplitPolicy {
	case models.SplitEveryone:
		e.Participants = []string{}
	case models.SplitParticipants:
		if len(e.Participants) == 0 {
			return invalid("participants", "must not be empty")
		}
		for _, p := range e.Participants {
			if _, ok := members[p]; !ok {
				return invalid("participants", p+" is not a trip member")
			}
		}
	default:
		return invalid("split_policy", "must be everyone or participants")
	}
	return nil
}

func applyExpenseInput(e *models.Expense, in ExpenseInput) {
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		e.Amount = settlement.Round(*in.Amount)
	}
	if in.Currency != nil {
		e.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if in.PaidBy != nil {
		e.PaidBy = *in.PaidBy
	}
	if in.SplitPolicy != nil {
		e.SplitPolicy = *in.SplitPolicy
	}
	if in.Participants != nil {
		e.Participants = uniqueStrings(*in.Participants)
	}
	if in.PaidAt != nil {
		e.PaidAt = *in.PaidAt
	}
}

func expenseSummary(e *models.Expense) string {
	return fmt.Sprintf("%s %.2f %s", e.Description, e.Amount, e.Currency)
}
