package enrich

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"googlemaps.github.io/maps"
)

// Place is a places lookup result
type Place struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Rating       float32  `json:"rating,omitempty"`
	RatingsTotal int      `json:"ratings_total,omitempty"`
	Types        []string `json:"types,omitempty"`
	Website      string   `json:"website,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	MapsURL      string   `json:"maps_url,omitempty"`
	SearchURL    string   `json:"search_url,omitempty"`
}

type placesAPI interface {
	TextSearch(ctx context.Context, r *maps.TextSearchRequest) (maps.PlacesSearchResponse, error)
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// PlacesClient looks up places. Without an API key every lookup degrades.
type PlacesClient struct {
	api placesAPI
}

// NewPlacesClient creates a client; an empty key disables lookups
func NewPlacesClient(apiKey string) (*PlacesClient, error) {
	if apiKey == "" {
		return &PlacesClient{}, nil
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesClient{api: c}, nil
}

// Search runs a free-text places search
func (c *PlacesClient) Search(ctx context.Context, query string) []Place {
	if c.api == nil {
		return []Place{}
	}
	resp, err := c.api.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Places text search failed")
		return []Place{}
	}
	return fromResults(resp.Results)
}

// Nearby finds places around a point, optionally filtered by keyword
func (c *PlacesClient) Nearby(ctx context.Context, lat, lng float64, radius uint, keyword string) []Place {
	if c.api == nil {
		return []Place{}
	}
	if radius == 0 {
		radius = 1500
	}
	resp, err := c.api.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Radius:   radius,
		Keyword:  keyword,
	})
	if err != nil {
		log.Warn().Err(err).Float64("lat", lat).Float64("lng", lng).Msg("Places nearby search failed")
		return []Place{}
	}
	return fromResults(resp.Results)
}

// Details fetches a single place. On failure the result only carries a web
// search link built from name.
func (c *PlacesClient) Details(ctx context.Context, placeID, name string) *Place {
	fallback := &Place{PlaceID: placeID, Name: name, SearchURL: GoogleSearchURL(firstNonBlank(name, placeID))}
	if c.api == nil {
		return fallback
	}

	res, err := c.api.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID})
	if err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("Place details failed")
		return fallback
	}

	return &Place{
		PlaceID:      res.PlaceID,
		Name:         res.Name,
		Address:      res.FormattedAddress,
		Lat:          res.Geometry.Location.Lat,
		Lng:          res.Geometry.Location.Lng,
		Rating:       res.Rating,
		RatingsTotal: res.UserRatingsTotal,
		Types:        res.Types,
		Website:      res.Website,
		Phone:        res.InternationalPhoneNumber,
		MapsURL:      res.URL,
		SearchURL:    GoogleSearchURL(res.Name + " " + res.FormattedAddress),
	}
}

func fromResults(results []maps.PlacesSearchResult) []Place {
	out := make([]Place, 0, len(results))
	for _, r := range results {
		out = append(out, Place{
			PlaceID:      r.PlaceID,
			Name:         r.Name,
			Address:      firstNonBlank(r.FormattedAddress, r.Vicinity),
			Lat:          r.Geometry.Location.Lat,
			Lng:          r.Geometry.Location.Lng,
			Rating:       r.Rating,
			RatingsTotal: r.UserRatingsTotal,
			Types:        r.Types,
		})
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
