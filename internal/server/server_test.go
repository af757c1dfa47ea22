package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"falim/internal/app"
	"falim/pkg/auth"
	"falim/pkg/store"
)

type stubText struct{ response string }

func (s stubText) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, nil
}

type stubVision struct{ response string }

func (s stubVision) GenerateFromImage(ctx context.Context, systemPrompt, userPrompt, mimeType string, image []byte) (string, error) {
	return s.response, nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(ctx context.Context, key string) bool { return false }

func testTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	m, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return m
}

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	a, err := app.New(app.Config{
		Store:  memStore,
		Text:   stubText{response: "metin yorumu"},
		Vision: stubVision{response: "Sembol: Kuş figürü\nGenel yorum."},
		Tokens: testTokens(t),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return New(Config{App: a, AIConfigured: true}), memStore
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// registerAndLogin walks the full verification flow and returns an access
// token.
func registerAndLogin(t *testing.T, srv *Server, memStore *store.MemoryStore, email string) string {
	t.Helper()
	router := srv.Router()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "gizli123", "accept_terms": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", rec.Code, rec.Body.String())
	}
	user, _, _ := memStore.GetUserByEmail(email)
	rec = doJSON(t, router, http.MethodGet, "/api/auth/verify-email?token="+user.VerificationToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "gizli123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeInto(t, rec, &resp)
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("login response = %+v", resp)
	}
	return resp.AccessToken
}

func TestRegisterLoginVerifyFlow(t *testing.T) {
	srv, memStore := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123", "accept_terms": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", rec.Code, rec.Body.String())
	}
	var registered struct {
		Email      string `json:"email"`
		IsVerified bool   `json:"is_verified"`
	}
	decodeInto(t, rec, &registered)
	if registered.IsVerified {
		t.Fatalf("fresh account must be unverified")
	}

	// Login before verification fails with 401 and the detail body shape.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unverified login status = %d", rec.Code)
	}
	var errBody map[string]string
	decodeInto(t, rec, &errBody)
	if errBody["detail"] == "" {
		t.Fatalf("error body missing detail: %s", rec.Body.String())
	}

	user, _, _ := memStore.GetUserByEmail("ayse@example.com")
	rec = doJSON(t, router, http.MethodGet, "/api/auth/verify-email?token="+user.VerificationToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verified login status = %d body=%s", rec.Code, rec.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeInto(t, rec, &login)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
}

func TestReadingEndpointsRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()
	for _, path := range []string{
		"/api/coffee-reading", "/api/palm-reading", "/api/tarot-reading",
		"/api/falname-reading", "/api/astrology-reading",
	} {
		rec := doJSON(t, router, http.MethodPost, path, "", map[string]any{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: status = %d", path, rec.Code)
		}
	}
	rec := doJSON(t, router, http.MethodGet, "/api/coffee-reading/sess-1", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session history without token: status = %d", rec.Code)
	}
}

func TestCoffeeEndpoint(t *testing.T) {
	srv, memStore := newTestServer(t)
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")
	router := srv.Router()

	image := base64.StdEncoding.EncodeToString([]byte("fake-jpeg"))
	rec := doJSON(t, router, http.MethodPost, "/api/coffee-reading", token, map[string]any{
		"image_base64": image, "session_id": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("coffee status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID       string   `json:"session_id"`
		SymbolsFound    []string `json:"symbols_found"`
		ConfidenceScore float64  `json:"confidence_score"`
		Interpretation  string   `json:"interpretation"`
	}
	decodeInto(t, rec, &resp)
	if resp.SessionID != "sess-1" || resp.ConfidenceScore != 0.85 {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.SymbolsFound) == 0 || resp.Interpretation == "" {
		t.Fatalf("response incomplete = %+v", resp)
	}

	// Missing image rejected with 400.
	rec = doJSON(t, router, http.MethodPost, "/api/coffee-reading", token, map[string]any{
		"session_id": "sess-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing image status = %d", rec.Code)
	}
}

func TestTarotEndpointThreeCard(t *testing.T) {
	srv, memStore := newTestServer(t)
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/tarot-reading", token, map[string]any{
		"spread_type": "three_card", "session_id": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("tarot status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		CardsDrawn []map[string]any `json:"cards_drawn"`
	}
	decodeInto(t, rec, &resp)
	if len(resp.CardsDrawn) != 3 {
		t.Fatalf("cards drawn = %d, want 3", len(resp.CardsDrawn))
	}
	for _, dc := range resp.CardsDrawn {
		if _, ok := dc["reversed"]; !ok {
			t.Fatalf("card entry missing reversed: %v", dc)
		}
		card, ok := dc["card"].(map[string]any)
		if !ok {
			t.Fatalf("card entry missing card object: %v", dc)
		}
		if nameTR, _ := card["name_tr"].(string); nameTR == "" {
			t.Fatalf("card entry missing name_tr: %v", dc)
		}
	}
}

func TestAstrologyEndpoint(t *testing.T) {
	srv, memStore := newTestServer(t)
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/astrology-reading", token, map[string]any{
		"birth_date": "1990-05-15", "birth_time": "14:30", "birth_place": "İstanbul",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("astrology status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ZodiacSign string `json:"zodiac_sign"`
		BirthChart struct {
			Houses    map[string]any `json:"houses"`
			Ascendant string         `json:"ascendant"`
		} `json:"birth_chart"`
	}
	decodeInto(t, rec, &resp)
	if resp.ZodiacSign != "taurus" {
		t.Fatalf("zodiac sign = %q, want taurus", resp.ZodiacSign)
	}
	if len(resp.BirthChart.Houses) != 12 || resp.BirthChart.Ascendant == "" {
		t.Fatalf("birth chart incomplete: %+v", resp.BirthChart)
	}
}

func TestFalnameEndpoint(t *testing.T) {
	srv, memStore := newTestServer(t)
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/falname-reading", token, map[string]any{
		"intention": "Yeni bir işe başlamalı mıyım?", "session_id": "s",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("falname status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		VerseOrPoem    string `json:"verse_or_poem"`
		Interpretation string `json:"interpretation"`
		Advice         string `json:"advice"`
	}
	decodeInto(t, rec, &resp)
	if resp.VerseOrPoem == "" || resp.Interpretation == "" || resp.Advice == "" {
		t.Fatalf("falname sections empty: %+v", resp)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var resp struct {
		Status   string `json:"status"`
		Services struct {
			AI       bool            `json:"ai"`
			Database bool            `json:"database"`
			Features map[string]bool `json:"features"`
		} `json:"services"`
	}
	decodeInto(t, rec, &resp)
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
	if !resp.Services.AI || !resp.Services.Database {
		t.Fatalf("services = %+v", resp.Services)
	}
	for _, feature := range []string{"coffee", "tarot", "palm", "astrology", "falname", "daily_horoscope", "auth"} {
		if !resp.Services.Features[feature] {
			t.Fatalf("feature %q not reported", feature)
		}
	}
}

func TestHoroscopeEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/daily-horoscope/leo", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily sign status = %d body=%s", rec.Code, rec.Body.String())
	}
	var h struct {
		Sign     string `json:"sign"`
		Language string `json:"language"`
		Content  string `json:"content"`
	}
	decodeInto(t, rec, &h)
	if h.Sign != "leo" || h.Language != "tr" || h.Content == "" {
		t.Fatalf("horoscope = %+v", h)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/daily-horoscope/ophiuchus", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid sign status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/daily-horoscope/today", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily all status = %d", rec.Code)
	}
	var all struct {
		Count int `json:"count"`
	}
	decodeInto(t, rec, &all)
	if all.Count != 12 {
		t.Fatalf("daily all count = %d", all.Count)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/daily-horoscope/history/leo", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d body=%s", rec.Code, rec.Body.String())
	}
	var history struct {
		Count int `json:"count"`
	}
	decodeInto(t, rec, &history)
	if history.Count != 1 {
		t.Fatalf("history count = %d, want 1", history.Count)
	}
}

func TestGenerateHoroscopesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/admin/generate-daily-horoscopes", "", map[string]any{
		"date": "2026-08-30",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Generated int `json:"generated"`
	}
	decodeInto(t, rec, &resp)
	if resp.Generated != 12 {
		t.Fatalf("generated = %d, want 12", resp.Generated)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/admin/generate-daily-horoscopes", "", map[string]any{
		"date": "2026-08-30",
	})
	decodeInto(t, rec, &resp)
	if resp.Generated != 0 {
		t.Fatalf("second trigger generated = %d, want 0", resp.Generated)
	}
}

func TestRateLimitedEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.limiter = denyAllLimiter{}
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("limited login status = %d", rec.Code)
	}
	var errBody map[string]string
	decodeInto(t, rec, &errBody)
	if errBody["detail"] == "" {
		t.Fatalf("429 body missing detail")
	}
}

func TestReferenceDataEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/tarot-cards", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tarot cards status = %d", rec.Code)
	}
	var cards struct {
		Count int `json:"count"`
	}
	decodeInto(t, rec, &cards)
	if cards.Count != 22 {
		t.Fatalf("card count = %d, want 22", cards.Count)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/zodiac-signs", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("zodiac signs status = %d", rec.Code)
	}
	var signs map[string]struct {
		Name string `json:"name"`
	}
	decodeInto(t, rec, &signs)
	if len(signs) != 12 || signs["aries"].Name != "Koç" {
		t.Fatalf("signs = %v", signs)
	}
}

func TestSessionRetrievalEndpoints(t *testing.T) {
	srv, memStore := newTestServer(t)
	router := srv.Router()
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	var created struct {
		ID        string `json:"id"`
		SessionID string `json:"session_id"`
	}
	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/tarot-reading", token, map[string]any{
			"spread_type": "single", "session_id": "sess-1",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("tarot status = %d body=%s", rec.Code, rec.Body.String())
		}
		decodeInto(t, rec, &created)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/tarot-reading/sess-1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session list status = %d body=%s", rec.Code, rec.Body.String())
	}
	var list struct {
		Count int `json:"count"`
	}
	decodeInto(t, rec, &list)
	if list.Count != 2 {
		t.Fatalf("session list count = %d, want 2", list.Count)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/tarot-reading/sess-1/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("single reading status = %d body=%s", rec.Code, rec.Body.String())
	}
	var single struct {
		ID        string `json:"id"`
		SessionID string `json:"session_id"`
	}
	decodeInto(t, rec, &single)
	if single.ID != created.ID || single.SessionID != "sess-1" {
		t.Fatalf("single reading = %+v", single)
	}

	// A reading is invisible through another type's route or session.
	rec = doJSON(t, router, http.MethodGet, "/api/coffee-reading/sess-1/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("wrong type status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/tarot-reading/sess-2/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("wrong session status = %d", rec.Code)
	}

	// And through another user's token.
	other := registerAndLogin(t, srv, memStore, "mehmet@example.com")
	rec = doJSON(t, router, http.MethodGet, "/api/tarot-reading/sess-1/"+created.ID, other, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/tarot-reading/sess-1", other, nil)
	decodeInto(t, rec, &list)
	if rec.Code != http.StatusOK || list.Count != 0 {
		t.Fatalf("cross-user list: status=%d count=%d", rec.Code, list.Count)
	}
}

func TestReadingsCannotBeDeleted(t *testing.T) {
	srv, memStore := newTestServer(t)
	router := srv.Router()
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/tarot-reading", token, map[string]any{
		"spread_type": "single", "session_id": "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("tarot status = %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &created)

	rec = doJSON(t, router, http.MethodDelete, "/api/tarot-reading/sess-1/"+created.ID, token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete status = %d, want 405", rec.Code)
	}
	if _, ok, _ := memStore.GetReading(created.ID); !ok {
		t.Fatalf("reading disappeared")
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	srv, memStore := newTestServer(t)
	router := srv.Router()
	token := registerAndLogin(t, srv, memStore, "ayse@example.com")

	rec := doJSON(t, router, http.MethodPut, "/api/auth/profile", token, map[string]any{
		"favorite_zodiac_sign": "Leo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d body=%s", rec.Code, rec.Body.String())
	}
	var updated struct {
		FavoriteZodiacSign string `json:"favorite_zodiac_sign"`
	}
	decodeInto(t, rec, &updated)
	if updated.FavoriteZodiacSign != "leo" {
		t.Fatalf("favorite sign = %q", updated.FavoriteZodiacSign)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/auth/me", token, map[string]any{
		"favorite_zodiac_sign": "leo",
	})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("me PUT status = %d, want 405", rec.Code)
	}
}

func TestResendVerificationEndpoint(t *testing.T) {
	srv, memStore := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123", "accept_terms": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}
	before, _, _ := memStore.GetUserByEmail("ayse@example.com")

	rec = doJSON(t, router, http.MethodPost, "/api/auth/resend-verification", "", map[string]any{
		"email": "ayse@example.com", "password": "yanlis!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/auth/resend-verification", "", map[string]any{
		"email": "ayse@example.com", "password": "gizli123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("resend status = %d body=%s", rec.Code, rec.Body.String())
	}
	after, _, _ := memStore.GetUserByEmail("ayse@example.com")
	if after.VerificationToken == before.VerificationToken {
		t.Fatalf("resend must rotate the token")
	}
}

func TestWelcomeAndNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("welcome status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/yok-boyle-bir-yol", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rec.Code)
	}
	var errBody map[string]string
	decodeInto(t, rec, &errBody)
	if errBody["detail"] == "" {
		t.Fatalf("404 body missing detail")
	}
}
