package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/airdrop"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/api"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pollerHealth is one poller's entry in the health payload.
type pollerHealth struct {
	Token   string `json:"token"`
	Trades  int    `json:"trades"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snaps := s.feed.Snapshots()
	pollers := make([]pollerHealth, 0, len(snaps))
	for _, snap := range snaps {
		pollers = append(pollers, pollerHealth{
			Token:   snap.Token,
			Trades:  len(snap.Ticks),
			Loading: snap.Loading,
			Error:   snap.Err,
		})
	}

	payload := map[string]any{
		"status":  "ok",
		"version": version.Version,
		"ts":      time.Now().UnixMilli(),
		"pollers": pollers,
	}
	if s.hub != nil {
		payload["ws_clients"] = s.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleFeedAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.feed.Snapshots())
}

func (s *Server) handleFeedToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/api/feed/")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}

	snap, ok := s.feed.Snapshot(token)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown token")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.stats.Summary())
}

func (s *Server) handleTokenStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.stats.TokenStats())
}

func (s *Server) handleAirdrops(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rng := api.AirdropRange(r.URL.Query().Get("range"))
	switch rng {
	case "":
		rng = api.RangeToday
	case api.RangeToday, api.RangeUpcoming, api.RangeAll:
	default:
		writeError(w, http.StatusBadRequest, "invalid range")
		return
	}

	items, err := s.listings.GetAirdropsByRange(r.Context(), rng)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, airdrop.Dedupe(items))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.listings.GetAlphaInsights(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

type loginRequest struct {
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.gate.Login(req.Password, req.Remember) {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.gate.Logout()
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": s.gate.Authenticated()})
}

// -----------------------------------------------------------------------------
// Admin
// -----------------------------------------------------------------------------

func (s *Server) handleAdminRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.admin.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleAdminAirdrops(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.admin.Airdrops())
	case http.MethodPost:
		var a model.Airdrop
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		saved, err := s.admin.SaveAirdrop(r.Context(), a)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAdminAirdropByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/airdrops/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.admin.DeleteAirdrop(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAdminTokens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.admin.Tokens())
	case http.MethodPost:
		var tok model.Token
		if err := json.NewDecoder(r.Body).Decode(&tok); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		saved, err := s.admin.SaveToken(r.Context(), tok)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAdminTokenByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/tokens/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.admin.DeleteToken(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAdminInsights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.admin.Insights())
	case http.MethodPost:
		var in model.AlphaInsight
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		saved, err := s.admin.SaveInsight(r.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAdminInsightByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/insights/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.admin.DeleteInsight(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.admin.Notifications())
}

func (s *Server) handleNotificationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/notifications/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.admin.Dismiss(id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
