package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"tripshare-backend/internal/enrich"
	"tripshare-backend/internal/linkpreview"
	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/models"
	"tripshare-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EnrichHandler proxies third-party lookups used while planning a trip
type EnrichHandler struct {
	tripService *services.TripService
	recommender *enrich.Recommender
	places      *enrich.PlacesClient
	weather     *enrich.WeatherClient
	images      *enrich.ImageSearchClient
	previews    services.LinkPreviewer
}

// NewEnrichHandler creates a new enrichment handler
func NewEnrichHandler(
	tripService *services.TripService,
	recommender *enrich.Recommender,
	places *enrich.PlacesClient,
	weather *enrich.WeatherClient,
	images *enrich.ImageSearchClient,
	previews services.LinkPreviewer,
) *EnrichHandler {
	return &EnrichHandler{
		tripService: tripService,
		recommender: recommender,
		places:      places,
		weather:     weather,
		images:      images,
		previews:    previews,
	}
}

// Recommendations handles GET /api/v1/recommendations
func (h *EnrichHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	tripID := r.URL.Query().Get("trip_id")
	if tripID == "" {
		respondError(w, "trip_id is required", http.StatusBadRequest)
		return
	}

	trip, err := h.tripService.Authorize(r.Context(), middleware.GetUserID(r.Context()), tripID, services.AccessRead)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load trip for recommendations")
		return
	}
	respondJSON(w, http.StatusOK, h.recommender.Recommend(r.Context(), trip))
}

// SearchPlaces handles GET /api/v1/places/search
func (h *EnrichHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, "q is required", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.places.Search(r.Context(), q))
}

// NearbyPlaces handles GET /api/v1/places/nearby
func (h *EnrichHandler) NearbyPlaces(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(w, r)
	if !ok {
		return
	}

	var radius uint
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		parsed, err := strconv.ParseUint(radiusStr, 10, 32)
		if err != nil {
			respondError(w, "Invalid radius", http.StatusBadRequest)
			return
		}
		radius = uint(parsed)
	}
	respondJSON(w, http.StatusOK, h.places.Nearby(r.Context(), lat, lng, radius, r.URL.Query().Get("keyword")))
}

// PlaceDetails handles GET /api/v1/places/{place_id}
func (h *EnrichHandler) PlaceDetails(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.places.Details(r.Context(), chi.URLParam(r, "place_id"), r.URL.Query().Get("name")))
}

// Weather handles GET /api/v1/weather
func (h *EnrichHandler) Weather(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(w, r)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}
	respondJSON(w, http.StatusOK, h.weather.Forecast(r.Context(), lat, lng, date))
}

// SearchImages handles GET /api/v1/images/search
func (h *EnrichHandler) SearchImages(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, "q is required", http.StatusBadRequest)
		return
	}

	img := h.images.Search(r.Context(), q)
	if img == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, img)
}

// LinkPreview handles GET /api/v1/link-preview
func (h *EnrichHandler) LinkPreview(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if !linkpreview.IsURL(rawURL) {
		respondError(w, "Invalid url", http.StatusBadRequest)
		return
	}

	preview, err := h.previews.Fetch(r.Context(), rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Link preview fetch failed")
		preview = &models.LinkPreview{URL: rawURL}
	}
	respondJSON(w, http.StatusOK, preview)
}

func parseLatLng(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		respondError(w, "Invalid lat", http.StatusBadRequest)
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		respondError(w, "Invalid lng", http.StatusBadRequest)
		return 0, 0, false
	}
	return lat, lng, true
}
