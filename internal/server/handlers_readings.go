package server

import (
	"net/http"
	"strings"

	"falim/pkg/domain"
)

type coffeeRequest struct {
	ImageBase64 string `json:"image_base64"`
	SessionID   string `json:"session_id"`
}

type palmRequest struct {
	ImageBase64 string `json:"image_base64"`
	HandType    string `json:"hand_type"`
	SessionID   string `json:"session_id"`
}

type tarotRequest struct {
	SpreadType string `json:"spread_type"`
	SessionID  string `json:"session_id"`
}

type falnameRequest struct {
	Intention string `json:"intention"`
	SessionID string `json:"session_id"`
}

type astrologyRequest struct {
	BirthDate  string `json:"birth_date"`
	BirthTime  string `json:"birth_time"`
	BirthPlace string `json:"birth_place"`
	SessionID  string `json:"session_id"`
}

// sessionReadings serves the retrieval subtree of one reading type:
// <prefix>{session_id} lists the session's readings of that type,
// <prefix>{session_id}/{reading_id} returns one of them. Readings are
// append-only, so the subtree answers GET and nothing else.
func (s *Server) sessionReadings(readingType domain.ReadingType, prefix string) authHandler {
	return func(w http.ResponseWriter, r *http.Request, user domain.User) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
		parts := strings.Split(rest, "/")
		switch {
		case len(parts) == 1 && parts[0] != "":
			readings, err := s.app.SessionReadings(r.Context(), user, readingType, parts[0])
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"items": readings,
				"count": len(readings),
			})
		case len(parts) == 2 && parts[0] != "" && parts[1] != "":
			reading, err := s.app.SessionReading(r.Context(), user, readingType, parts[0], parts[1])
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, reading)
		default:
			writeError(w, http.StatusNotFound, "bulunamadı")
		}
	}
}

func (s *Server) handleCoffee(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req coffeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reading, err := s.app.CoffeeReading(r.Context(), user, req.ImageBase64, req.SessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handlePalm(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req palmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reading, err := s.app.PalmReading(r.Context(), user, req.ImageBase64, req.HandType, req.SessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleTarot(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req tarotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reading, err := s.app.TarotReading(r.Context(), user, req.SpreadType, req.SessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleFalname(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req falnameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reading, err := s.app.FalnameReading(r.Context(), user, req.Intention, req.SessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleAstrology(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req astrologyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reading, err := s.app.AstrologyReading(r.Context(), user, req.BirthDate, req.BirthTime, req.BirthPlace, req.SessionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
