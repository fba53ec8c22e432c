package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient starts a stub TMDb server serving fixed JSON per path.
func newTestClient(t *testing.T, responses map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") == "" {
			http.Error(w, `{"status_message":"missing api key"}`, http.StatusUnauthorized)
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewWithBaseURL("test-key", srv.URL)
}

func TestResolveID_FirstMatch(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/search/movie": `{"results":[{"id":603,"title":"The Matrix"},{"id":604,"title":"The Matrix Reloaded"}]}`,
	})

	id, err := c.ResolveID(context.Background(), "matrix")
	if err != nil {
		t.Fatalf("ResolveID: %v", err)
	}
	if id != "603" {
		t.Errorf("ResolveID = %q, want %q", id, "603")
	}
}

func TestResolveID_NoResults(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/search/movie": `{"results":[]}`,
	})

	_, err := c.ResolveID(context.Background(), "no such movie")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ResolveID error = %v, want ErrNotFound", err)
	}
}

func TestMovieDetails(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/movie/603": `{
			"id":603,"title":"The Matrix",
			"overview":"A hacker discovers reality is a simulation.",
			"release_date":"1999-03-30","vote_average":8.2,
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]
		}`,
	})

	d, err := c.MovieDetails(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if d.Title != "The Matrix" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Year() != "1999" {
		t.Errorf("Year() = %q, want 1999", d.Year())
	}
	if len(d.Genres) != 2 || d.Genres[0].Name != "Action" {
		t.Errorf("Genres = %v", d.Genres)
	}
}

func TestMovieCredits_TopFiveCastAndDirectors(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/movie/603/credits": `{
			"cast":[
				{"name":"Keanu Reeves"},{"name":"Laurence Fishburne"},
				{"name":"Carrie-Anne Moss"},{"name":"Hugo Weaving"},
				{"name":"Joe Pantoliano"},{"name":"Gloria Foster"}
			],
			"crew":[
				{"name":"Lana Wachowski","job":"Director"},
				{"name":"Lilly Wachowski","job":"Director"},
				{"name":"Joel Silver","job":"Producer"}
			]
		}`,
	})

	credits, err := c.MovieCredits(context.Background(), "603")
	if err != nil {
		t.Fatalf("MovieCredits: %v", err)
	}
	if len(credits.Cast) != 5 {
		t.Errorf("got %d cast members, want 5", len(credits.Cast))
	}
	if len(credits.Director) != 2 || credits.Director[0] != "Lana Wachowski" {
		t.Errorf("Director = %v", credits.Director)
	}
}

func TestTopRated(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/movie/top_rated": `{"results":[{"id":278,"title":"The Shawshank Redemption"}]}`,
	})

	results, err := c.TopRated(context.Background(), 1)
	if err != nil {
		t.Fatalf("TopRated: %v", err)
	}
	if len(results) != 1 || results[0].ID != 278 {
		t.Errorf("results = %v", results)
	}
}

func TestGet_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewWithBaseURL("test-key", srv.URL)
	if _, err := c.SearchMovie(context.Background(), "matrix"); err == nil {
		t.Error("SearchMovie on HTTP 429 returned nil error")
	}
}
