package server

import (
	"net/http"
	"strconv"
	"strings"

	"falim/pkg/astro"
	"falim/pkg/tarot"
)

func (s *Server) handleHoroscopeToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	language := r.URL.Query().Get("language")
	all, err := s.app.HoroscopesToday(r.Context(), language)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": all,
		"count": len(all),
	})
}

func (s *Server) handleHoroscopeForSign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sign := strings.TrimPrefix(r.URL.Path, "/api/daily-horoscope/")
	if sign == "" || strings.Contains(sign, "/") {
		writeError(w, http.StatusNotFound, "bulunamadı")
		return
	}
	h, err := s.app.HoroscopeForSign(r.Context(), sign, r.URL.Query().Get("language"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleHoroscopeHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sign := strings.TrimPrefix(r.URL.Path, "/api/daily-horoscope/history/")
	if sign == "" || strings.Contains(sign, "/") {
		writeError(w, http.StatusNotFound, "bulunamadı")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.app.HoroscopeHistory(sign, r.URL.Query().Get("language"), limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": history,
		"count": len(history),
	})
}

type generateHoroscopesRequest struct {
	Date     string `json:"date"`
	Language string `json:"language"`
}

// handleGenerateHoroscopes is the manual fill trigger the scheduler also
// uses. Duplicate-guarded per row, so re-triggering is harmless.
func (s *Server) handleGenerateHoroscopes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generateHoroscopesRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	generated, err := s.app.FillHoroscopes(r.Context(), req.Date, req.Language, 0)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Günlük burç yorumları hazırlandı",
		"generated": generated,
	})
}

func (s *Server) handleTarotCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	cards := tarot.Deck()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": cards,
		"count": len(cards),
	})
}

func (s *Server) handleZodiacSigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, astro.Signs())
}
