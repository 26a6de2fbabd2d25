package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Image is an image search hit
type Image struct {
	URL          string `json:"url"`
	ThumbURL     string `json:"thumb_url"`
	Description  string `json:"description"`
	Photographer string `json:"photographer"`
	Link         string `json:"link"`
}

// ImageSearchClient queries an Unsplash compatible search API
type ImageSearchClient struct {
	baseURL   string
	accessKey string
	client    *http.Client
}

// NewImageSearchClient creates an image search client
func NewImageSearchClient(baseURL, accessKey string, client *http.Client) *ImageSearchClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ImageSearchClient{baseURL: baseURL, accessKey: accessKey, client: client}
}

type unsplashResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

// Search returns the best image for query, or nil when none is available
func (c *ImageSearchClient) Search(ctx context.Context, query string) *Image {
	if c.accessKey == "" || query == "" {
		return nil
	}
	img, err := c.search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Image search failed")
		return nil
	}
	return img
}

func (c *ImageSearchClient) search(ctx context.Context, query string) (*Image, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "1")
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode image search: %w", err)
	}
	if len(body.Results) == 0 || body.Results[0].URLs.Regular == "" {
		return nil, nil
	}

	r := body.Results[0]
	return &Image{
		URL:          r.URLs.Regular,
		ThumbURL:     r.URLs.Thumb,
		Description:  r.AltDescription,
		Photographer: r.User.Name,
		Link:         r.Links.HTML,
	}, nil
}
