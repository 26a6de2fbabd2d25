// Package settlement nets shared trip expenses into balances and suggests the
// payments that clear them.
package settlement

import (
	"math"
	"sort"
)

// Epsilon is the balance magnitude treated as settled
const Epsilon = 0.01

// Expense is a cost paid by one member and split evenly across participants.
// An empty participant list splits across every member.
type Expense struct {
	PaidBy       string
	Amount       float64
	Participants []string
}

// Payment is money already transferred from one member to another
type Payment struct {
	From   string
	To     string
	Amount float64
}

// Transfer is a suggested payment
type Transfer struct {
	From   string
	To     string
	Amount float64
}

// Balances returns each member's net balance: positive when the member is owed
// money, negative when they owe. Members that appear only as payers or
// participants are included too.
func Balances(members []string, expenses []Expense, payments []Payment) map[string]float64 {
	balances := make(map[string]float64, len(members))
	for _, m := range members {
		balances[m] = 0
	}

	for _, e := range expenses {
		participants := e.Participants
		if len(participants) == 0 {
			participants = members
		}
		if len(participants) == 0 || e.Amount <= 0 {
			continue
		}

		balances[e.PaidBy] += e.Amount
		share := e.Amount / float64(len(participants))
		for _, p := range participants {
			balances[p] -= share
		}
	}

	for _, p := range payments {
		balances[p.From] += p.Amount
		balances[p.To] -= p.Amount
	}

	for id, b := range balances {
		if math.Abs(b) < Epsilon {
			balances[id] = 0
		}
	}
	return balances
}

type position struct {
	id     string
	amount float64
}

// Suggest greedily pairs the largest creditor with the largest debtor until
// every balance is within Epsilon of zero. Ties are broken by member ID so the
// result is deterministic.
func Suggest(balances map[string]float64) []Transfer {
	var creditors, debtors []position
	for id, b := range balances {
		switch {
		case b >= Epsilon:
			creditors = append(creditors, position{id, b})
		case b <= -Epsilon:
			debtors = append(debtors, position{id, -b})
		}
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		sortPositions(creditors)
		sortPositions(debtors)

		c, d := &creditors[0], &debtors[0]
		amount := math.Min(c.amount, d.amount)
		if rounded := Round(amount); rounded >= Epsilon {
			transfers = append(transfers, Transfer{From: d.id, To: c.id, Amount: rounded})
		}

		c.amount -= amount
		d.amount -= amount
		if c.amount < Epsilon {
			creditors = creditors[1:]
		}
		if d.amount < Epsilon {
			debtors = debtors[1:]
		}
	}
	return transfers
}

func sortPositions(ps []position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].amount != ps[j].amount {
			return ps[i].amount > ps[j].amount
		}
		return ps[i].id < ps[j].id
	})
}

// Round rounds to whole cents
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
