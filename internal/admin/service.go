package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// Backend is the slice of the admin API the service mutates through.
// *api.Client satisfies it.
type Backend interface {
	GetAllAirdrops(ctx context.Context) ([]model.Airdrop, error)
	CreateAirdrop(ctx context.Context, a model.Airdrop) (*model.Airdrop, error)
	UpdateAirdrop(ctx context.Context, id string, a model.Airdrop) (*model.Airdrop, error)
	DeleteAirdrop(ctx context.Context, id string) error

	GetTokens(ctx context.Context) ([]model.Token, error)
	CreateToken(ctx context.Context, tok model.Token) (*model.Token, error)
	UpdateToken(ctx context.Context, id string, tok model.Token) (*model.Token, error)
	DeleteToken(ctx context.Context, id string) error

	GetAlphaInsights(ctx context.Context) ([]model.AlphaInsight, error)
	CreateAlphaInsight(ctx context.Context, in model.AlphaInsight) (*model.AlphaInsight, error)
	UpdateAlphaInsight(ctx context.Context, id string, in model.AlphaInsight) (*model.AlphaInsight, error)
	DeleteAlphaInsight(ctx context.Context, id string) error
}

// Notification is a surfaced outcome of an admin operation.
type Notification struct {
	ID          string `json:"id"`
	Level       string `json:"level"` // "info" or "error"
	Message     string `json:"message"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// Service holds the local working copy of the admin records.
type Service struct {
	backend Backend
	logger  *slog.Logger

	mu            sync.RWMutex
	airdrops      []model.Airdrop
	tokens        []model.Token
	insights      []model.AlphaInsight
	notifications []Notification
}

// NewService creates a service over the given backend.
func NewService(backend Backend, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// Refresh replaces every local list with the backend's current records.
// Partial failures leave the affected list untouched and are reported as a
// single joined error.
func (s *Service) Refresh(ctx context.Context) error {
	var firstErr error

	airdrops, err := s.backend.GetAllAirdrops(ctx)
	if err != nil {
		firstErr = fmt.Errorf("refresh airdrops: %w", err)
	} else {
		s.mu.Lock()
		s.airdrops = airdrops
		s.mu.Unlock()
	}

	tokens, err := s.backend.GetTokens(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("refresh tokens: %w", err)
		}
	} else {
		s.mu.Lock()
		s.tokens = tokens
		s.mu.Unlock()
	}

	insights, err := s.backend.GetAlphaInsights(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("refresh insights: %w", err)
		}
	} else {
		s.mu.Lock()
		s.insights = insights
		s.mu.Unlock()
	}

	return firstErr
}

// Airdrops returns a copy of the local airdrop list.
func (s *Service) Airdrops() []model.Airdrop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Airdrop, len(s.airdrops))
	copy(out, s.airdrops)
	return out
}

// Tokens returns a copy of the local token list.
func (s *Service) Tokens() []model.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Insights returns a copy of the local insight list.
func (s *Service) Insights() []model.AlphaInsight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AlphaInsight, len(s.insights))
	copy(out, s.insights)
	return out
}

// SaveAirdrop creates the record when it has no ID, updates it otherwise,
// then merges the stored copy into the local list. On failure the local list
// is resynchronized from the backend so it never drifts from the source.
func (s *Service) SaveAirdrop(ctx context.Context, a model.Airdrop) (*model.Airdrop, error) {
	var (
		saved *model.Airdrop
		err   error
	)
	if a.ID == "" {
		saved, err = s.backend.CreateAirdrop(ctx, a)
	} else {
		saved, err = s.backend.UpdateAirdrop(ctx, a.ID, a)
	}
	if err != nil {
		s.notify("error", "failed to save airdrop %q: %v", a.Project, err)
		s.resyncAirdrops(ctx)
		return nil, fmt.Errorf("save airdrop: %w", err)
	}

	s.mu.Lock()
	s.airdrops = mergeByID(s.airdrops, *saved, func(x model.Airdrop) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "airdrop %q saved", saved.Project)
	return saved, nil
}

// DeleteAirdrop removes the record from the backend and the local list.
func (s *Service) DeleteAirdrop(ctx context.Context, id string) error {
	if err := s.backend.DeleteAirdrop(ctx, id); err != nil {
		s.notify("error", "failed to delete airdrop %s: %v", id, err)
		s.resyncAirdrops(ctx)
		return fmt.Errorf("delete airdrop: %w", err)
	}

	s.mu.Lock()
	s.airdrops = removeByID(s.airdrops, id, func(x model.Airdrop) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "airdrop %s deleted", id)
	return nil
}

// SaveToken creates or updates a polled token definition.
func (s *Service) SaveToken(ctx context.Context, tok model.Token) (*model.Token, error) {
	var (
		saved *model.Token
		err   error
	)
	if tok.ID == "" {
		saved, err = s.backend.CreateToken(ctx, tok)
	} else {
		saved, err = s.backend.UpdateToken(ctx, tok.ID, tok)
	}
	if err != nil {
		s.notify("error", "failed to save token %q: %v", tok.Name, err)
		s.resyncTokens(ctx)
		return nil, fmt.Errorf("save token: %w", err)
	}

	s.mu.Lock()
	s.tokens = mergeByID(s.tokens, *saved, func(x model.Token) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "token %q saved", saved.Name)
	return saved, nil
}

// DeleteToken removes a polled token definition.
func (s *Service) DeleteToken(ctx context.Context, id string) error {
	if err := s.backend.DeleteToken(ctx, id); err != nil {
		s.notify("error", "failed to delete token %s: %v", id, err)
		s.resyncTokens(ctx)
		return fmt.Errorf("delete token: %w", err)
	}

	s.mu.Lock()
	s.tokens = removeByID(s.tokens, id, func(x model.Token) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "token %s deleted", id)
	return nil
}

// SaveInsight creates or updates an alpha insight.
func (s *Service) SaveInsight(ctx context.Context, in model.AlphaInsight) (*model.AlphaInsight, error) {
	var (
		saved *model.AlphaInsight
		err   error
	)
	if in.ID == "" {
		saved, err = s.backend.CreateAlphaInsight(ctx, in)
	} else {
		saved, err = s.backend.UpdateAlphaInsight(ctx, in.ID, in)
	}
	if err != nil {
		s.notify("error", "failed to save insight %q: %v", in.Title, err)
		s.resyncInsights(ctx)
		return nil, fmt.Errorf("save insight: %w", err)
	}

	s.mu.Lock()
	s.insights = mergeByID(s.insights, *saved, func(x model.AlphaInsight) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "insight %q saved", saved.Title)
	return saved, nil
}

// DeleteInsight removes an alpha insight.
func (s *Service) DeleteInsight(ctx context.Context, id string) error {
	if err := s.backend.DeleteAlphaInsight(ctx, id); err != nil {
		s.notify("error", "failed to delete insight %s: %v", id, err)
		s.resyncInsights(ctx)
		return fmt.Errorf("delete insight: %w", err)
	}

	s.mu.Lock()
	s.insights = removeByID(s.insights, id, func(x model.AlphaInsight) string { return x.ID })
	s.mu.Unlock()

	s.notify("info", "insight %s deleted", id)
	return nil
}

// Notifications returns the pending notifications, newest first.
func (s *Service) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Dismiss removes a notification by ID.
func (s *Service) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = removeByID(s.notifications, id, func(n Notification) string { return n.ID })
}

func (s *Service) notify(level, format string, args ...any) {
	n := Notification{
		ID:          uuid.New().String(),
		Level:       level,
		Message:     fmt.Sprintf(format, args...),
		CreatedAtMs: time.Now().UnixMilli(),
	}

	if level == "error" {
		s.logger.Warn("admin operation failed", "message", n.Message)
	} else {
		s.logger.Info("admin operation", "message", n.Message)
	}

	s.mu.Lock()
	s.notifications = append([]Notification{n}, s.notifications...)
	s.mu.Unlock()
}

func (s *Service) resyncAirdrops(ctx context.Context) {
	airdrops, err := s.backend.GetAllAirdrops(ctx)
	if err != nil {
		s.logger.Warn("airdrop resync failed", "err", err)
		return
	}
	s.mu.Lock()
	s.airdrops = airdrops
	s.mu.Unlock()
}

func (s *Service) resyncTokens(ctx context.Context) {
	tokens, err := s.backend.GetTokens(ctx)
	if err != nil {
		s.logger.Warn("token resync failed", "err", err)
		return
	}
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()
}

func (s *Service) resyncInsights(ctx context.Context) {
	insights, err := s.backend.GetAlphaInsights(ctx)
	if err != nil {
		s.logger.Warn("insight resync failed", "err", err)
		return
	}
	s.mu.Lock()
	s.insights = insights
	s.mu.Unlock()
}

// mergeByID replaces the element with a matching ID or appends.
func mergeByID[T any](list []T, item T, id func(T) string) []T {
	for i := range list {
		if id(list[i]) == id(item) {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

// removeByID drops the element with a matching ID.
func removeByID[T any](list []T, target string, id func(T) string) []T {
	out := list[:0]
	for _, item := range list {
		if id(item) != target {
			out = append(out, item)
		}
	}
	return out
}
