package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripshare-backend/internal/models"
	"tripshare-backend/internal/settlement"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := Options{Seed: 42, Profiles: 4, TripsPerProfile: 2, Now: fixedNow}

	a := Generate(opts)
	b := Generate(opts)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("datasets differ (-a +b):\n%s", diff)
	}

	c := Generate(Options{Seed: 43, Profiles: 4, TripsPerProfile: 2, Now: fixedNow})
	assert.NotEqual(t, a.Profiles[0].ID, c.Profiles[0].ID)
}

func TestGenerateReferencesAreConsistent(t *testing.T) {
	ds := Generate(Options{Seed: 7, Profiles: 5, TripsPerProfile: 2, Now: fixedNow, PasswordHash: "hash"})

	require.Len(t, ds.Profiles, 5)
	require.Len(t, ds.Trips, 10)
	assert.Equal(t, models.RoleAdmin, ds.Profiles[0].Role)

	profiles := map[string]bool{}
	for _, p := range ds.Profiles {
		profiles[p.ID] = true
		assert.Equal(t, "hash", p.PasswordHash)
	}

	members := map[string]map[string]bool{}
	for _, trip := range ds.Trips {
		require.True(t, profiles[trip.OwnerID])
		require.False(t, trip.EndDate.Before(*trip.StartDate))
		members[trip.ID] = map[string]bool{trip.OwnerID: true}
		for _, id := range ds.Collaborators[trip.ID] {
			assert.True(t, profiles[id])
			assert.NotEqual(t, trip.OwnerID, id)
			members[trip.ID][id] = true
		}
	}

	for _, a := range ds.Activities {
		require.Contains(t, members, a.TripID)
		assert.True(t, a.Period.Valid())
		assert.GreaterOrEqual(t, a.Day, 1)
		assert.True(t, members[a.TripID][a.CreatedBy])
	}
	for _, e := range ds.Expenses {
		assert.True(t, members[e.TripID][e.PaidBy])
		assert.Greater(t, e.Amount, settlement.Epsilon)
	}
	for _, p := range ds.Posts {
		assert.True(t, profiles[p.AuthorID])
		if p.TripID != nil {
			assert.Contains(t, members, *p.TripID)
		}
	}
}

type recorder struct {
	order []string
	fail  string
}

func (r *recorder) add(kind string) error {
	if kind == r.fail {
		return errors.New("insert failed")
	}
	r.order = append(r.order, kind)
	return nil
}

type recProfiles struct{ *recorder }

func (r recProfiles) Create(context.Context, *models.Profile) error { return r.add("profile") }

type recTrips struct{ *recorder }

func (r recTrips) Create(context.Context, *models.Trip) error { return r.add("trip") }
func (r recTrips) AddCollaborator(context.Context, string, string) error { return r.add("collaborator") }

type recActivities struct{ *recorder }

func (r recActivities) Create(context.Context, *models.Activity) error { return r.add("activity") }

type recIdeas struct{ *recorder }

func (r recIdeas) Create(context.Context, *models.Idea) error { return r.add("idea") }

type recExpenses struct{ *recorder }

func (r recExpenses) Create(context.Context, *models.Expense) error { return r.add("expense") }

type recPosts struct{ *recorder }

func (r recPosts) Create(context.Context, *models.Post) error { return r.add("post") }

func stores(r *recorder) Stores {
	return Stores{
		Profiles:   recProfiles{r},
		Trips:      recTrips{r},
		Activities: recActivities{r},
		Ideas:      recIdeas{r},
		Expenses:   recExpenses{r},
		Posts:      recPosts{r},
	}
}

func TestLoadInsertsInDependencyOrder(t *testing.T) {
	ds := Generate(Options{Seed: 3, Profiles: 3, TripsPerProfile: 1, Now: fixedNow})
	r := &recorder{}
	require.NoError(t, Load(context.Background(), stores(r), ds))

	assert.Equal(t, "profile", r.order[0])
	assert.Equal(t, "post", r.order[len(r.order)-1])
	assert.Len(t, r.order, len(ds.Profiles)+len(ds.Trips)+countCollaborators(ds)+
		len(ds.Activities)+len(ds.Ideas)+len(ds.Expenses)+len(ds.Posts))
}

func TestLoadStopsOnError(t *testing.T) {
	ds := Generate(Options{Seed: 3, Profiles: 2, TripsPerProfile: 1, Now: fixedNow})
	r := &recorder{fail: "activity"}

	err := Load(context.Background(), stores(r), ds)
	assert.ErrorContains(t, err, "failed to seed activity")
	assert.NotContains(t, r.order, "idea")
}

func countCollaborators(ds *Dataset) int {
	n := 0
	for _, ids := range ds.Collaborators {
		n += len(ids)
	}
	return n
}
