package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/admin"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/api"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/auth"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// FeedSource provides current poller snapshots.
type FeedSource interface {
	Snapshot(token string) (feed.Snapshot, bool)
	Snapshots() []feed.Snapshot
}

// StatsSource provides aggregated dashboard statistics.
type StatsSource interface {
	Summary() model.Summary
	TokenStats() []model.TokenStats
}

// ListingSource provides the public read-only listings.
type ListingSource interface {
	GetAirdropsByRange(ctx context.Context, r api.AirdropRange) ([]model.Airdrop, error)
	GetAlphaInsights(ctx context.Context) ([]model.AlphaInsight, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	addr   string
	logger *slog.Logger

	feed     FeedSource
	stats    StatsSource
	listings ListingSource
	admin    *admin.Service
	gate     *auth.Gate
	hub      *Hub

	srv *http.Server
	wg  sync.WaitGroup
}

// New creates a server. hub may be nil to disable the websocket endpoint.
func New(
	addr string,
	feedSrc FeedSource,
	statsSrc StatsSource,
	listings ListingSource,
	adminSvc *admin.Service,
	gate *auth.Gate,
	hub *Hub,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		logger:   logger,
		feed:     feedSrc,
		stats:    statsSrc,
		listings: listings,
		admin:    adminSvc,
		gate:     gate,
		hub:      hub,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/api/feed", s.handleFeedAll)
	mux.HandleFunc("/api/feed/", s.handleFeedToken)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/stats", s.handleTokenStats)
	mux.HandleFunc("/api/airdrops", s.handleAirdrops)
	mux.HandleFunc("/api/insights", s.handleInsights)

	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/session", s.handleSession)

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/api/admin/refresh", s.handleAdminRefresh)
	adminMux.HandleFunc("/api/admin/airdrops", s.handleAdminAirdrops)
	adminMux.HandleFunc("/api/admin/airdrops/", s.handleAdminAirdropByID)
	adminMux.HandleFunc("/api/admin/tokens", s.handleAdminTokens)
	adminMux.HandleFunc("/api/admin/tokens/", s.handleAdminTokenByID)
	adminMux.HandleFunc("/api/admin/insights", s.handleAdminInsights)
	adminMux.HandleFunc("/api/admin/insights/", s.handleAdminInsightByID)
	adminMux.HandleFunc("/api/admin/notifications", s.handleNotifications)
	adminMux.HandleFunc("/api/admin/notifications/", s.handleNotificationByID)
	mux.Handle("/api/admin/", auth.Middleware(s.gate, adminMux))

	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.Handler())
	}

	return mux
}

// Start begins serving. The listener is opened synchronously so port errors
// surface here.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server failed", "err", err)
		}
	}()

	s.logger.Info("http server started", "addr", s.addr)
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.srv.Shutdown(shutdownCtx)
	s.wg.Wait()
	s.logger.Info("http server stopped")
	return err
}
