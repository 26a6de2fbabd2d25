package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tripshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func TestRecommend(t *testing.T) {
	trip := &models.Trip{ID: "t1", Destination: "Lisbon", Interests: []string{"food", "history"}}

	t.Run("ai response", func(t *testing.T) {
		gen := &fakeGenerator{text: "```json\n[{\"title\":\"Pastéis de Belém\",\"description\":\"Custard tarts\",\"type\":\"food\"},{\"title\":\"\"},{\"title\":\"Tram 28\",\"type\":\"boat\"}]\n```"}
		rec := NewRecommender(gen).Recommend(context.Background(), trip)

		assert.Equal(t, SourceAI, rec.Source)
		require.Len(t, rec.Suggestions, 2)
		assert.Equal(t, models.TypeFood, rec.Suggestions[0].Type)
		assert.Equal(t, models.TypeOther, rec.Suggestions[1].Type)
		assert.Contains(t, gen.prompt, "Lisbon")
		assert.Contains(t, gen.prompt, "food, history")
	})

	t.Run("generator error falls back", func(t *testing.T) {
		rec := NewRecommender(&fakeGenerator{err: errors.New("quota")}).Recommend(context.Background(), trip)

		assert.Equal(t, SourceFallback, rec.Source)
		require.Len(t, rec.Suggestions, 2)
		assert.Equal(t, models.TypeFood, rec.Suggestions[0].Type)
		assert.Equal(t, models.TypeSightseeing, rec.Suggestions[1].Type)
		assert.True(t, strings.HasPrefix(rec.Suggestions[0].Link, "https://www.google.com/search?q=best+food+in+Lisbon"))
	})

	t.Run("unparseable output falls back", func(t *testing.T) {
		rec := NewRecommender(&fakeGenerator{text: "sorry, I can't"}).Recommend(context.Background(), trip)
		assert.Equal(t, SourceFallback, rec.Source)
	})

	t.Run("no generator", func(t *testing.T) {
		rec := NewRecommender(nil).Recommend(context.Background(), &models.Trip{Destination: "Oslo"})
		assert.Equal(t, SourceFallback, rec.Source)
		assert.Len(t, rec.Suggestions, 3)
	})
}

func TestWeatherForecast(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-06-03", r.URL.Query().Get("start_date"))
		assert.Equal(t, "38.7223", r.URL.Query().Get("latitude"))
		w.Write([]byte(`{"daily":{"time":["2026-06-03"],"temperature_2m_max":[26.4],"temperature_2m_min":[17.1],"precipitation_probability_max":[12.6],"weathercode":[61]}}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, srv.Client())
	c.now = func() time.Time { return now }

	f := c.Forecast(context.Background(), 38.7223, -9.1393, time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, WeatherForecast, f.Source)
	assert.Equal(t, 26.4, f.High)
	assert.Equal(t, 17.1, f.Low)
	require.NotNil(t, f.PrecipitationChance)
	assert.Equal(t, 13, *f.PrecipitationChance)
	assert.Equal(t, "Rain", f.Summary)

	far := c.Forecast(context.Background(), 38.7, -9.1, time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, WeatherEstimate, far.Source)
	assert.Equal(t, "2026-12-24", far.Date)
}

func TestWeatherFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, srv.Client())
	f := c.Forecast(context.Background(), 50, 0, time.Now())
	assert.Equal(t, WeatherEstimate, f.Source)
}

func TestEstimate(t *testing.T) {
	july := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	north := Estimate(48.8, july)
	assert.Equal(t, 27.0, north.High)
	assert.Equal(t, "Typically warm", north.Summary)

	south := Estimate(-33.9, july)
	assert.Equal(t, 7.0, south.High)
	assert.Equal(t, "Typically cold", south.Summary)

	tropics := Estimate(1.3, july)
	assert.Equal(t, 31.0, tropics.High)

	polar := Estimate(69.6, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -8.0, polar.High)
}

func TestImageSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID key", r.Header.Get("Authorization"))
		if r.URL.Query().Get("query") == "nothing" {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		w.Write([]byte(`{"results":[{"alt_description":"harbour","urls":{"regular":"https://img/r.jpg","thumb":"https://img/t.jpg"},"links":{"html":"https://u/p"},"user":{"name":"Ana"}}]}`))
	}))
	defer srv.Close()

	c := NewImageSearchClient(srv.URL, "key", srv.Client())

	img := c.Search(context.Background(), "porto")
	require.NotNil(t, img)
	assert.Equal(t, "https://img/r.jpg", img.URL)
	assert.Equal(t, "Ana", img.Photographer)

	assert.Nil(t, c.Search(context.Background(), "nothing"))
	assert.Nil(t, NewImageSearchClient(srv.URL, "", nil).Search(context.Background(), "porto"))
}

type fakePlaces struct {
	detailsErr error
}

func (f *fakePlaces) TextSearch(_ context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error) {
	return maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{
		{PlaceID: "p1", Name: r.Query, FormattedAddress: "Main St", Rating: 4.5},
	}}, nil
}

func (f *fakePlaces) NearbySearch(_ context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error) {
	return maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{
		{PlaceID: "p2", Name: "Cafe", Vicinity: "Corner"},
	}}, nil
}

func (f *fakePlaces) PlaceDetails(_ context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error) {
	if f.detailsErr != nil {
		return maps.PlaceDetailsResult{}, f.detailsErr
	}
	return maps.PlaceDetailsResult{PlaceID: r.PlaceID, Name: "Museum", FormattedAddress: "Square 1", Website: "https://museum"}, nil
}

func TestPlaces(t *testing.T) {
	c := &PlacesClient{api: &fakePlaces{}}

	results := c.Search(context.Background(), "tapas")
	require.Len(t, results, 1)
	assert.Equal(t, "tapas", results[0].Name)

	nearby := c.Nearby(context.Background(), 1, 2, 0, "")
	require.Len(t, nearby, 1)
	assert.Equal(t, "Corner", nearby[0].Address)

	d := c.Details(context.Background(), "p9", "Museum")
	assert.Equal(t, "https://museum", d.Website)

	failing := &PlacesClient{api: &fakePlaces{detailsErr: errors.New("denied")}}
	d = failing.Details(context.Background(), "p9", "Old Museum")
	assert.Equal(t, GoogleSearchURL("Old Museum"), d.SearchURL)
	assert.Empty(t, d.Address)

	disabled, err := NewPlacesClient("")
	require.NoError(t, err)
	assert.Empty(t, disabled.Search(context.Background(), "x"))
	assert.Equal(t, "Old Museum", disabled.Details(context.Background(), "p9", "Old Museum").Name)
}
