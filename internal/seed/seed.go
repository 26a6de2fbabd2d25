// Package seed generates deterministic mock data for local development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"tripshare-backend/internal/models"

	"github.com/google/uuid"
)

// Options controls the size and shape of a generated dataset. PasswordHash is
// assigned to every generated profile.
type Options struct {
	Seed            uint64
	Profiles        int
	TripsPerProfile int
	PasswordHash    string
	Now             time.Time
}

// DefaultOptions generates a small dataset: six profiles with two trips each
var DefaultOptions = Options{Seed: 1, Profiles: 6, TripsPerProfile: 2}

// Dataset is a consistent set of rows that reference each other
type Dataset struct {
	Profiles      []*models.Profile
	Trips         []*models.Trip
	Collaborators map[string][]string
	Activities    []*models.Activity
	Ideas         []*models.Idea
	Expenses      []*models.Expense
	Posts         []*models.Post
}

type destination struct {
	name     string
	lat, lng float64
	sights   []string
	food     []string
}

var destinations = []destination{
	{"Lisbon", 38.7223, -9.1393, []string{"Belem Tower", "Alfama walk", "LX Factory"}, []string{"Time Out Market", "Pasteis de Belem"}},
	{"Kyoto", 35.0116, 135.7681, []string{"Fushimi Inari", "Arashiyama bamboo grove", "Kinkaku-ji"}, []string{"Nishiki Market", "Ramen crawl"}},
	{"Mexico City", 19.4326, -99.1332, []string{"Chapultepec Castle", "Teotihuacan", "Frida Kahlo Museum"}, []string{"Tacos al pastor", "Mercado de Coyoacan"}},
	{"Cape Town", -33.9249, 18.4241, []string{"Table Mountain", "Boulders Beach", "Bo-Kaap"}, []string{"V&A Food Market", "Wine tasting"}},
	{"Reykjavik", 64.1466, -21.9426, []string{"Golden Circle", "Hallgrimskirkja", "Blue Lagoon"}, []string{"Baejarins hot dogs", "Fish market"}},
}

var (
	firstNames = []string{"Ana", "Kenji", "Lucia", "Thabo", "Freya", "Omar", "Mei", "Diego", "Noor", "Lars"}
	interests  = []string{"food", "sightseeing", "museums", "hiking", "nightlife", "shopping", "beaches"}
	categories = []string{"food", "lodging", "transport", "tickets", "other"}
	periods    = []models.TimePeriod{models.PeriodMorning, models.PeriodAfternoon, models.PeriodEvening}
)

type generator struct {
	rng  *rand.Rand
	opts Options
	seq  int
}

// Generate builds a dataset from opts. The same options always yield the
// same rows, IDs included.
func Generate(opts Options) *Dataset {
	if opts.Profiles <= 0 {
		opts.Profiles = DefaultOptions.Profiles
	}
	if opts.TripsPerProfile < 0 {
		opts.TripsPerProfile = 0
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC().Truncate(24 * time.Hour)
	}
	g := &generator{rng: rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)), opts: opts}

	ds := &Dataset{Collaborators: map[string][]string{}}
	for i := 0; i < opts.Profiles; i++ {
		ds.Profiles = append(ds.Profiles, g.profile(i))
	}
	for _, owner := range ds.Profiles {
		for j := 0; j < opts.TripsPerProfile; j++ {
			g.trip(ds, owner)
		}
	}
	for _, author := range ds.Profiles {
		ds.Posts = append(ds.Posts, g.post(ds, author))
	}
	return ds
}

func (g *generator) id(kind string) string {
	g.seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("tripshare-%d-%s-%d", g.opts.Seed, kind, g.seq))).String()
}

func (g *generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

func (g *generator) profile(i int) *models.Profile {
	name := firstNames[i%len(firstNames)]
	if i >= len(firstNames) {
		name = fmt.Sprintf("%s %d", name, i/len(firstNames)+1)
	}
	role := models.RoleUser
	if i == 0 {
		role = models.RoleAdmin
	}
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return &models.Profile{
		ID:           g.id("profile"),
		Email:        handle + "@example.com",
		PasswordHash: g.opts.PasswordHash,
		DisplayName:  name,
		Bio:          fmt.Sprintf("%s loves %s.", name, g.pick(interests)),
		Role:         role,
		CreatedAt:    g.opts.Now.Add(-time.Duration(g.rng.IntN(60)) * 24 * time.Hour),
		UpdatedAt:    g.opts.Now,
	}
}

func (g *generator) trip(ds *Dataset, owner *models.Profile) {
	dest := destinations[g.rng.IntN(len(destinations))]
	start := g.opts.Now.Add(time.Duration(7+g.rng.IntN(90)) * 24 * time.Hour)
	days := 2 + g.rng.IntN(4)
	end := start.Add(time.Duration(days-1) * 24 * time.Hour)
	lat, lng := dest.lat, dest.lng

	trip := &models.Trip{
		ID:          g.id("trip"),
		OwnerID:     owner.ID,
		Title:       fmt.Sprintf("%s's %s trip", owner.DisplayName, dest.name),
		Destination: dest.name,
		Description: fmt.Sprintf("%d days exploring %s.", days, dest.name),
		StartDate:   &start,
		EndDate:     &end,
		Interests:   []string{g.pick(interests), g.pick(interests)},
		Latitude:    &lat,
		Longitude:   &lng,
		IsPublic:    g.rng.IntN(3) == 0,
		CreatedAt:   g.opts.Now,
		UpdatedAt:   g.opts.Now,
	}
	if trip.Interests[0] == trip.Interests[1] {
		trip.Interests = trip.Interests[:1]
	}
	ds.Trips = append(ds.Trips, trip)

	members := []string{owner.ID}
	for _, p := range ds.Profiles {
		if p.ID != owner.ID && g.rng.IntN(3) == 0 && len(members) < 4 {
			members = append(members, p.ID)
			ds.Collaborators[trip.ID] = append(ds.Collaborators[trip.ID], p.ID)
		}
	}

	for day := 1; day <= days; day++ {
		for idx, period := range periods {
			title, typ := g.pick(dest.sights), models.TypeSightseeing
			if period == models.PeriodEvening {
				title, typ = g.pick(dest.food), models.TypeFood
			}
			ds.Activities = append(ds.Activities, &models.Activity{
				ID:         g.id("activity"),
				TripID:     trip.ID,
				Day:        day,
				Period:     period,
				Type:       typ,
				Badge:      typ.Badge(),
				Title:      title,
				Location:   dest.name,
				OrderIndex: idx,
				CreatedBy:  members[g.rng.IntN(len(members))],
				CreatedAt:  g.opts.Now,
				UpdatedAt:  g.opts.Now,
			})
		}
	}

	ds.Ideas = append(ds.Ideas, &models.Idea{
		ID:          g.id("idea"),
		TripID:      trip.ID,
		CreatedBy:   members[g.rng.IntN(len(members))],
		Title:       "Try " + g.pick(dest.food),
		Description: "Someone recommended this spot.",
		Type:        models.TypeFood,
		Tags:        []string{"must-try"},
		CreatedAt:   g.opts.Now,
		UpdatedAt:   g.opts.Now,
	})

	for i := 0; i < len(members)+1; i++ {
		amount := float64(10+g.rng.IntN(240)) + float64(g.rng.IntN(100))/100
		category := g.pick(categories)
		ds.Expenses = append(ds.Expenses, &models.Expense{
			ID:           g.id("expense"),
			TripID:       trip.ID,
			PaidBy:       members[i%len(members)],
			Description:  fmt.Sprintf("%s in %s", category, dest.name),
			Amount:       amount,
			Currency:     "USD",
			Category:     category,
			SplitPolicy:  models.SplitEveryone,
			Participants: []string{},
			PaidAt:       start,
			CreatedBy:    members[i%len(members)],
			CreatedAt:    g.opts.Now,
			UpdatedAt:    g.opts.Now,
		})
	}
}

func (g *generator) post(ds *Dataset, author *models.Profile) *models.Post {
	p := &models.Post{
		ID:        g.id("post"),
		AuthorID:  author.ID,
		Body:      fmt.Sprintf("Counting down the days! %s", g.pick([]string{"✈️", "🗺️", "🌍"})),
		CreatedAt: g.opts.Now,
		UpdatedAt: g.opts.Now,
	}
	for _, t := range ds.Trips {
		if t.OwnerID == author.ID {
			tripID := t.ID
			p.TripID = &tripID
			p.Body = fmt.Sprintf("Planning %s. Ideas welcome!", t.Title)
			break
		}
	}
	return p
}

// Stores receives generated rows
type Stores struct {
	Profiles interface {
		Create(ctx context.Context, p *models.Profile) error
	}
	Trips interface {
		Create(ctx context.Context, t *models.Trip) error
		AddCollaborator(ctx context.Context, tripID, userID string) error
	}
	Activities interface {
		Create(ctx context.Context, a *models.Activity) error
	}
	Ideas interface {
		Create(ctx context.Context, i *models.Idea) error
	}
	Expenses interface {
		Create(ctx context.Context, e *models.Expense) error
	}
	Posts interface {
		Create(ctx context.Context, p *models.Post) error
	}
}

// Load inserts ds into the stores in dependency order
func Load(ctx context.Context, s Stores, ds *Dataset) error {
	for _, p := range ds.Profiles {
		if err := s.Profiles.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.Email, err)
		}
	}
	for _, t := range ds.Trips {
		if err := s.Trips.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed trip %s: %w", t.ID, err)
		}
		for _, userID := range ds.Collaborators[t.ID] {
			if err := s.Trips.AddCollaborator(ctx, t.ID, userID); err != nil {
				return fmt.Errorf("failed to seed collaborator: %w", err)
			}
		}
	}
	for _, a := range ds.Activities {
		if err := s.Activities.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to seed activity %s: %w", a.ID, err)
		}
	}
	for _, i := range ds.Ideas {
		if err := s.Ideas.Create(ctx, i); err != nil {
			return fmt.Errorf("failed to seed idea %s: %w", i.ID, err)
		}
	}
	for _, e := range ds.Expenses {
		if err := s.Expenses.Create(ctx, e); err != nil {
			return fmt.Errorf("failed to seed expense %s: %w", e.ID, err)
		}
	}
	for _, p := range ds.Posts {
		if err := s.Posts.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed post %s: %w", p.ID, err)
		}
	}
	return nil
}
