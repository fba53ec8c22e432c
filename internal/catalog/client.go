// Package catalog wraps TheMovieDB (TMDb) v3 REST API: search by name,
// details, credits, and discovery listings used by ingestion.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

const requestTimeout = 10 * time.Second

// ErrNotFound is returned when a name search yields no results.
var ErrNotFound = errors.New("movie not found")

// Client communicates with the TMDb REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client with the given API key.
func New(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

// NewWithBaseURL creates a Client pointing at a custom base URL (for testing).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SearchResult is one entry from a movie search or listing.
type SearchResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// Details is a full movie record.
type Details struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres"`
}

// Genre is a TMDb genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credits holds the top cast members and directors of a movie.
type Credits struct {
	Cast     []string
	Director []string
}

// Year returns the release year portion of the release date.
func (d Details) Year() string {
	if len(d.ReleaseDate) < 4 {
		return ""
	}
	return d.ReleaseDate[:4]
}

// SearchMovie searches for movies by name, first page.
func (c *Client) SearchMovie(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{"query": {query}}
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.get(ctx, "/search/movie", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ResolveID searches for a movie by name and returns the id of the first
// match. Returns ErrNotFound when the search yields no results.
func (c *Client) ResolveID(ctx context.Context, name string) (string, error) {
	results, err := c.SearchMovie(ctx, name)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", ErrNotFound
	}
	return strconv.FormatInt(results[0].ID, 10), nil
}

// MovieDetails fetches the full record for a movie id.
func (c *Client) MovieDetails(ctx context.Context, id string) (Details, error) {
	var out Details
	if err := c.get(ctx, "/movie/"+url.PathEscape(id), nil, &out); err != nil {
		return Details{}, err
	}
	return out, nil
}

// MovieCredits fetches cast and crew for a movie id, keeping the top 5
// cast members and the crew members whose job is Director.
func (c *Client) MovieCredits(ctx context.Context, id string) (Credits, error) {
	var out struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	}
	if err := c.get(ctx, "/movie/"+url.PathEscape(id)+"/credits", nil, &out); err != nil {
		return Credits{}, err
	}

	var credits Credits
	for i, member := range out.Cast {
		if i >= 5 {
			break
		}
		credits.Cast = append(credits.Cast, member.Name)
	}
	for _, member := range out.Crew {
		if member.Job == "Director" {
			credits.Director = append(credits.Director, member.Name)
		}
	}
	return credits, nil
}

// TopRated returns one page of top-rated movies.
func (c *Client) TopRated(ctx context.Context, page int) ([]SearchResult, error) {
	return c.listing(ctx, "/movie/top_rated", page)
}

// Popular returns one page of popular movies.
func (c *Client) Popular(ctx context.Context, page int) ([]SearchResult, error) {
	return c.listing(ctx, "/movie/popular", page)
}

// Genres returns the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *Client) listing(ctx context.Context, path string, page int) ([]SearchResult, error) {
	if page <= 0 {
		page = 1
	}
	params := url.Values{"page": {strconv.Itoa(page)}}
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.get(ctx, path, params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
