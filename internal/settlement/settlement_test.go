package settlement

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBalances(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	t.Run("everyone split", func(t *testing.T) {
		got := Balances(members, []Expense{{PaidBy: "alice", Amount: 90}}, nil)
		want := map[string]float64{"alice": 60, "bob": -30, "carol": -30}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("balances mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit participants", func(t *testing.T) {
		got := Balances(members, []Expense{{PaidBy: "bob", Amount: 40, Participants: []string{"bob", "carol"}}}, nil)
		assert.InDelta(t, 0, got["alice"], 1e-9)
		assert.InDelta(t, 20, got["bob"], 1e-9)
		assert.InDelta(t, -20, got["carol"], 1e-9)
	})

	t.Run("recorded payments", func(t *testing.T) {
		got := Balances(members,
			[]Expense{{PaidBy: "alice", Amount: 90}},
			[]Payment{{From: "bob", To: "alice", Amount: 30}},
		)
		assert.InDelta(t, 30, got["alice"], 1e-9)
		assert.Zero(t, got["bob"])
		assert.InDelta(t, -30, got["carol"], 1e-9)
	})

	t.Run("rounding noise is zeroed", func(t *testing.T) {
		got := Balances(members, []Expense{{PaidBy: "alice", Amount: 10}, {PaidBy: "alice", Amount: -5}}, []Payment{
			{From: "bob", To: "alice", Amount: 10.0 / 3},
			{From: "carol", To: "alice", Amount: 10.0 / 3},
		})
		for id, b := range got {
			assert.Zero(t, b, id)
		}
	})
}

func TestSuggest(t *testing.T) {
	t.Run("all settled", func(t *testing.T) {
		assert.Empty(t, Suggest(map[string]float64{"a": 0.004, "b": -0.009, "c": 0}))
	})

	t.Run("single creditor", func(t *testing.T) {
		got := Suggest(map[string]float64{"alice": 60, "bob": -30, "carol": -30})
		want := []Transfer{
			{From: "bob", To: "alice", Amount: 30},
			{From: "carol", To: "alice", Amount: 30},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("transfers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("largest matched first", func(t *testing.T) {
		got := Suggest(map[string]float64{"a": 50, "b": 10, "c": -45, "d": -15})
		want := []Transfer{
			{From: "c", To: "a", Amount: 45},
			{From: "d", To: "b", Amount: 10},
			{From: "d", To: "a", Amount: 5},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("transfers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("thirds round to cents", func(t *testing.T) {
		balances := Balances([]string{"a", "b", "c"}, []Expense{{PaidBy: "a", Amount: 100}}, nil)
		got := Suggest(balances)
		assert.Len(t, got, 2)
		for _, tr := range got {
			assert.Equal(t, "a", tr.To)
			assert.Equal(t, 33.33, tr.Amount)
		}
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 33.33, Round(33.3333))
	assert.Equal(t, -1.5, Round(-1.499999))
}
