package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/cinetech/internal/chat"
	"github.com/kalambet/cinetech/internal/retrieval"
	"github.com/kalambet/cinetech/internal/storage"
)

const testToken = "test-token-12345"

// --- mocks ---

type mockChat struct {
	reply string
	err   error

	gotUserID  string
	gotMessage string
}

func (m *mockChat) GenerateReply(_ context.Context, userID, message string) (string, error) {
	m.gotUserID = userID
	m.gotMessage = message
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type mockSearcher struct {
	results []retrieval.ScoredMovie
	err     error

	gotQuery string
	gotTopK  int
}

func (m *mockSearcher) Search(_ context.Context, query string, topK int) ([]retrieval.ScoredMovie, error) {
	m.gotQuery = query
	m.gotTopK = topK
	return m.results, m.err
}

type mockIngester struct {
	count int
	err   error

	gotNum int
}

func (m *mockIngester) Ingest(_ context.Context, numMovies int) (int, error) {
	m.gotNum = numMovies
	return m.count, m.err
}

type mockFavorites struct {
	ids []string
}

func (m *mockFavorites) List() []string { return m.ids }

type mockTitles struct {
	titles map[string]string
	err    error
}

func (m *mockTitles) TitlesByIDs(ids []string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.titles, nil
}

type mockInteractions struct {
	interactions []storage.Interaction
	err          error

	gotUserID string
	gotLimit  int
}

func (m *mockInteractions) RecentInteractions(userID string, limit int) ([]storage.Interaction, error) {
	m.gotUserID = userID
	m.gotLimit = limit
	return m.interactions, m.err
}

// --- helpers ---

func testDeps() AppDeps {
	return AppDeps{
		Chat:         &mockChat{reply: "Watch Inception."},
		Retriever:    &mockSearcher{},
		Ingest:       &mockIngester{count: 10},
		Favorites:    &mockFavorites{},
		Titles:       &mockTitles{titles: map[string]string{}},
		Interactions: &mockInteractions{},
		Token:        testToken,
	}
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// --- tests ---

func TestHealth_NoAuth(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestAuth_MissingToken(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{"message":"hi"}`, "")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rr.Body.String(), "missing bearer token") {
		t.Errorf("body = %q, want missing-token message", rr.Body.String())
	}
}

func TestAuth_WrongToken(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{"message":"hi"}`, "wrong-token")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rr.Body.String(), "invalid bearer token") {
		t.Errorf("body = %q, want invalid-token message", rr.Body.String())
	}
}

func TestChat_Success(t *testing.T) {
	deps := testDeps()
	mc := deps.Chat.(*mockChat)
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{"user_id":"alice","message":"something mind-bending"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply != "Watch Inception." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.UserID != "alice" {
		t.Errorf("user_id = %q, want alice", resp.UserID)
	}
	if mc.gotUserID != "alice" || mc.gotMessage != "something mind-bending" {
		t.Errorf("chat called with (%q, %q)", mc.gotUserID, mc.gotMessage)
	}
}

func TestChat_DefaultUserID(t *testing.T) {
	deps := testDeps()
	mc := deps.Chat.(*mockChat)
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{"message":"hi"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if mc.gotUserID != "default" {
		t.Errorf("user_id = %q, want default", mc.gotUserID)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	deps := testDeps()
	deps.Chat = &mockChat{err: chat.ErrEmptyMessage}
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{"message":""}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rr.Body.String(), "message must not be empty") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestChat_InvalidBody(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/chat", `{not json`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestIngest_Defaults(t *testing.T) {
	deps := testDeps()
	mi := deps.Ingest.(*mockIngester)
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ingest", `{}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if mi.gotNum != defaultIngestMovies {
		t.Errorf("numMovies = %d, want %d", mi.gotNum, defaultIngestMovies)
	}

	var resp map[string]any
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp["status"] != "queued" {
		t.Errorf("status = %v, want queued", resp["status"])
	}
	if resp["movies"] != float64(10) {
		t.Errorf("movies = %v, want 10", resp["movies"])
	}
}

func TestIngest_CapsRequestedMovies(t *testing.T) {
	deps := testDeps()
	mi := deps.Ingest.(*mockIngester)
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ingest", `{"num_movies":99999}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if mi.gotNum != maxIngestMovies {
		t.Errorf("numMovies = %d, want cap %d", mi.gotNum, maxIngestMovies)
	}
}

func TestIngest_CatalogError(t *testing.T) {
	deps := testDeps()
	deps.Ingest = &mockIngester{err: errors.New("tmdb unavailable")}
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/ingest", `{"num_movies":20}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestSearch_Success(t *testing.T) {
	deps := testDeps()
	deps.Retriever = &mockSearcher{results: []retrieval.ScoredMovie{
		{ID: "603", Title: "The Matrix", Score: 0.92},
	}}
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/search", `{"query":"cyberpunk dystopia","top_k":3}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	var results []retrieval.ScoredMovie
	if err := json.NewDecoder(rr.Body).Decode(&results); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(results) != 1 || results[0].Title != "The Matrix" {
		t.Errorf("results = %+v", results)
	}

	ms := deps.Retriever.(*mockSearcher)
	if ms.gotQuery != "cyberpunk dystopia" || ms.gotTopK != 3 {
		t.Errorf("search called with (%q, %d)", ms.gotQuery, ms.gotTopK)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/search", `{"top_k":3}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSearch_EmptyResultsIsArray(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodPost, "/search", `{"query":"anything"}`, testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestFavourites_List(t *testing.T) {
	deps := testDeps()
	deps.Favorites = &mockFavorites{ids: []string{"603", "27205"}}
	deps.Titles = &mockTitles{titles: map[string]string{
		"603":   "The Matrix",
		"27205": "Inception",
	}}
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodGet, "/favourites", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	var entries []FavouriteEntry
	if err := json.NewDecoder(rr.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != "603" || entries[0].Title != "The Matrix" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].ID != "27205" || entries[1].Title != "Inception" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestFavourites_Empty(t *testing.T) {
	h := NewAppHandler(testDeps())

	rr := httptest.NewRecorder()
	req := authReq(http.MethodGet, "/favourites", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestInteractions_List(t *testing.T) {
	deps := testDeps()
	deps.Interactions = &mockInteractions{interactions: []storage.Interaction{
		{ID: "i1", UserID: "alice", UserMessage: "hi", Reply: "hello", CreatedAt: time.Now().UTC()},
	}}
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodGet, "/interactions?user_id=alice&limit=5", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}

	mi := deps.Interactions.(*mockInteractions)
	if mi.gotUserID != "alice" || mi.gotLimit != 5 {
		t.Errorf("called with (%q, %d)", mi.gotUserID, mi.gotLimit)
	}

	var interactions []storage.Interaction
	if err := json.NewDecoder(rr.Body).Decode(&interactions); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(interactions) != 1 || interactions[0].ID != "i1" {
		t.Errorf("interactions = %+v", interactions)
	}
}

func TestInteractions_LimitCapped(t *testing.T) {
	deps := testDeps()
	h := NewAppHandler(deps)

	rr := httptest.NewRecorder()
	req := authReq(http.MethodGet, "/interactions?limit=9999", "", testToken)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", rr.Code, rr.Body.String())
	}
	mi := deps.Interactions.(*mockInteractions)
	if mi.gotLimit != 100 {
		t.Errorf("limit = %d, want 100", mi.gotLimit)
	}
	if mi.gotUserID != "default" {
		t.Errorf("user_id = %q, want default", mi.gotUserID)
	}
}
