package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"archeohub-backend/internal/models"
)

const defaultSearchTimeout = 10 * time.Second

// Searcher returns ranked web pages for a query. Implementations never fail;
// any problem degrades to an empty slice.
type Searcher interface {
	Search(ctx context.Context, query string) []models.Source
}

// BingSearch queries the Bing Web Search v7 API.
type BingSearch struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewBingSearch(apiKey, endpoint string) *BingSearch {
	return &BingSearch{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultSearchTimeout},
	}
}

type bingResponse struct {
	WebPages *struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

func (s *BingSearch) Search(ctx context.Context, query string) []models.Source {
	if s.apiKey == "" {
		return []models.Source{}
	}

	sources, err := s.search(ctx, query)
	if err != nil {
		slog.Warn("web search failed, continuing without sources", "error", err)
		return []models.Source{}
	}
	return sources
}

func (s *BingSearch) search(ctx context.Context, query string) ([]models.Source, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(models.MaxSources))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bing call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("bing status %d", resp.StatusCode)
	}

	var payload bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	sources := []models.Source{}
	if payload.WebPages == nil {
		return sources, nil
	}
	for _, page := range payload.WebPages.Value {
		if len(sources) == models.MaxSources {
			break
		}
		if page.URL == "" {
			continue
		}
		sources = append(sources, models.Source{URL: page.URL, Title: page.Name, Excerpt: page.Snippet})
	}
	return sources, nil
}
