// Package enrich proxies third-party services used to enrich trips: AI
// recommendations, places, weather and image search. Every client degrades to
// a fallback value instead of failing the request.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"tripshare-backend/internal/models"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Sources reported with results
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// TextGenerator produces a completion for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator generates JSON completions with a Gemini model
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini-backed generator
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// Generate asks the model for a JSON response to prompt
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty GenAI response")
	}
	return text, nil
}

// Suggestion is a recommended activity for a trip
type Suggestion struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        models.ActivityType `json:"type"`
	Link        string              `json:"link,omitempty"`
}

// Recommendations is the result of a recommendation request
type Recommendations struct {
	Source      string       `json:"source"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Recommender suggests activities for a trip
type Recommender struct {
	gen   TextGenerator
	count int
}

// NewRecommender creates a recommender. A nil generator always falls back.
func NewRecommender(gen TextGenerator) *Recommender {
	return &Recommender{gen: gen, count: 6}
}

// Recommend returns suggestions for trip, falling back to interest-based
// search links when generation is unavailable or returns garbage
func (r *Recommender) Recommend(ctx context.Context, trip *models.Trip) *Recommendations {
	if r.gen != nil {
		text, err := r.gen.Generate(ctx, r.prompt(trip))
		if err == nil {
			suggestions, perr := parseSuggestions(text)
			if perr == nil && len(suggestions) > 0 {
				return &Recommendations{Source: SourceAI, Suggestions: suggestions}
			}
			err = perr
		}
		log.Warn().Err(err).Str("trip_id", trip.ID).Msg("AI recommendations unavailable, using fallback")
	}
	return &Recommendations{Source: SourceFallback, Suggestions: fallbackSuggestions(trip, r.count)}
}

func (r *Recommender) prompt(trip *models.Trip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d activities for a trip to %s.", r.count, trip.Destination)
	if days := trip.Days(); days > 0 {
		fmt.Fprintf(&b, " The trip lasts %d days.", days)
	}
	if len(trip.Interests) > 0 {
		fmt.Fprintf(&b, " The travellers are interested in: %s.", strings.Join(trip.Interests, ", "))
	}
	b.WriteString(` Respond with a JSON array of objects with fields "title", "description" and "type",`)
	b.WriteString(` where type is one of sightseeing, food, transport, lodging, activity, shopping, other.`)
	return b.String()
}

func parseSuggestions(text string) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw []Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	out := raw[:0]
	for _, s := range raw {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		if !s.Type.Valid() {
			s.Type = models.TypeOther
		}
		out = append(out, s)
	}
	return out, nil
}

var interestTypes = map[string]models.ActivityType{
	"food":      models.TypeFood,
	"culture":   models.TypeSightseeing,
	"history":   models.TypeSightseeing,
	"art":       models.TypeSightseeing,
	"nature":    models.TypeActivity,
	"adventure": models.TypeActivity,
	"nightlife": models.TypeActivity,
	"shopping":  models.TypeShopping,
}

func fallbackSuggestions(trip *models.Trip, count int) []Suggestion {
	interests := trip.Interests
	if len(interests) == 0 {
		interests = []string{"sightseeing", "food", "culture"}
	}

	out := make([]Suggestion, 0, min(count, len(interests)))
	for _, interest := range interests {
		if len(out) == count {
			break
		}
		typ, ok := interestTypes[interest]
		if !ok {
			typ = models.TypeOther
		}
		query := fmt.Sprintf("best %s in %s", interest, trip.Destination)
		out = append(out, Suggestion{
			Title:       fmt.Sprintf("Explore %s in %s", interest, trip.Destination),
			Description: fmt.Sprintf("Popular %s spots picked by other travellers.", interest),
			Type:        typ,
			Link:        GoogleSearchURL(query),
		})
	}
	return out
}

// GoogleSearchURL returns a web search link for query
func GoogleSearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}
