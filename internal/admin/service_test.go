package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// fakeBackend is an in-memory Backend with switchable failure.
type fakeBackend struct {
	airdrops []model.Airdrop
	tokens   []model.Token
	insights []model.AlphaInsight

	nextID int
	fail   bool
}

var errBackend = errors.New("backend unavailable")

func (f *fakeBackend) id() string {
	f.nextID++
	return string(rune('a' + f.nextID - 1))
}

func (f *fakeBackend) GetAllAirdrops(ctx context.Context) ([]model.Airdrop, error) {
	if f.fail {
		return nil, errBackend
	}
	out := make([]model.Airdrop, len(f.airdrops))
	copy(out, f.airdrops)
	return out, nil
}

func (f *fakeBackend) CreateAirdrop(ctx context.Context, a model.Airdrop) (*model.Airdrop, error) {
	if f.fail {
		return nil, errBackend
	}
	a.ID = f.id()
	f.airdrops = append(f.airdrops, a)
	return &a, nil
}

func (f *fakeBackend) UpdateAirdrop(ctx context.Context, id string, a model.Airdrop) (*model.Airdrop, error) {
	if f.fail {
		return nil, errBackend
	}
	a.ID = id
	for i := range f.airdrops {
		if f.airdrops[i].ID == id {
			f.airdrops[i] = a
			return &a, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) DeleteAirdrop(ctx context.Context, id string) error {
	if f.fail {
		return errBackend
	}
	for i := range f.airdrops {
		if f.airdrops[i].ID == id {
			f.airdrops = append(f.airdrops[:i], f.airdrops[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeBackend) GetTokens(ctx context.Context) ([]model.Token, error) {
	if f.fail {
		return nil, errBackend
	}
	out := make([]model.Token, len(f.tokens))
	copy(out, f.tokens)
	return out, nil
}

func (f *fakeBackend) CreateToken(ctx context.Context, tok model.Token) (*model.Token, error) {
	if f.fail {
		return nil, errBackend
	}
	tok.ID = f.id()
	f.tokens = append(f.tokens, tok)
	return &tok, nil
}

func (f *fakeBackend) UpdateToken(ctx context.Context, id string, tok model.Token) (*model.Token, error) {
	if f.fail {
		return nil, errBackend
	}
	tok.ID = id
	for i := range f.tokens {
		if f.tokens[i].ID == id {
			f.tokens[i] = tok
			return &tok, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) DeleteToken(ctx context.Context, id string) error {
	if f.fail {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) GetAlphaInsights(ctx context.Context) ([]model.AlphaInsight, error) {
	if f.fail {
		return nil, errBackend
	}
	out := make([]model.AlphaInsight, len(f.insights))
	copy(out, f.insights)
	return out, nil
}

func (f *fakeBackend) CreateAlphaInsight(ctx context.Context, in model.AlphaInsight) (*model.AlphaInsight, error) {
	if f.fail {
		return nil, errBackend
	}
	in.ID = f.id()
	f.insights = append(f.insights, in)
	return &in, nil
}

func (f *fakeBackend) UpdateAlphaInsight(ctx context.Context, id string, in model.AlphaInsight) (*model.AlphaInsight, error) {
	if f.fail {
		return nil, errBackend
	}
	in.ID = id
	return &in, nil
}

func (f *fakeBackend) DeleteAlphaInsight(ctx context.Context, id string) error {
	if f.fail {
		return errBackend
	}
	return nil
}

func TestRefreshReplacesLists(t *testing.T) {
	backend := &fakeBackend{
		airdrops: []model.Airdrop{{ID: "1", Project: "Alpha"}},
		tokens:   []model.Token{{ID: "1", Name: "BTC"}, {ID: "2", Name: "ETH"}},
		insights: []model.AlphaInsight{{ID: "1", Title: "Report"}},
	}
	svc := NewService(backend, nil)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if got := len(svc.Airdrops()); got != 1 {
		t.Errorf("len(Airdrops()) = %d, want 1", got)
	}
	if got := len(svc.Tokens()); got != 2 {
		t.Errorf("len(Tokens()) = %d, want 2", got)
	}
	if got := len(svc.Insights()); got != 1 {
		t.Errorf("len(Insights()) = %d, want 1", got)
	}
}

func TestSaveAirdropCreate(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil)

	saved, err := svc.SaveAirdrop(context.Background(), model.Airdrop{Project: "Alpha"})
	if err != nil {
		t.Fatalf("SaveAirdrop() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("saved airdrop has empty ID")
	}

	local := svc.Airdrops()
	if len(local) != 1 || local[0].ID != saved.ID {
		t.Errorf("local list = %+v, want the saved record", local)
	}
}

func TestSaveAirdropUpdateMergesByID(t *testing.T) {
	backend := &fakeBackend{
		airdrops: []model.Airdrop{{ID: "1", Project: "Alpha"}, {ID: "2", Project: "Beta"}},
	}
	svc := NewService(backend, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if _, err := svc.SaveAirdrop(context.Background(), model.Airdrop{ID: "2", Project: "Beta v2"}); err != nil {
		t.Fatalf("SaveAirdrop() error = %v", err)
	}

	local := svc.Airdrops()
	if len(local) != 2 {
		t.Fatalf("len(local) = %d, want 2", len(local))
	}
	if local[1].Project != "Beta v2" {
		t.Errorf("local[1].Project = %q, want %q", local[1].Project, "Beta v2")
	}
}

func TestSaveFailureNotifiesAndResyncs(t *testing.T) {
	backend := &fakeBackend{
		airdrops: []model.Airdrop{{ID: "1", Project: "Alpha"}},
	}
	svc := NewService(backend, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	backend.fail = true
	if _, err := svc.SaveAirdrop(context.Background(), model.Airdrop{Project: "Beta"}); err == nil {
		t.Fatal("SaveAirdrop() error = nil, want error")
	}

	notes := svc.Notifications()
	if len(notes) != 1 {
		t.Fatalf("len(Notifications()) = %d, want 1", len(notes))
	}
	if notes[0].Level != "error" {
		t.Errorf("notification level = %q, want %q", notes[0].Level, "error")
	}
	if notes[0].ID == "" {
		t.Error("notification has empty ID")
	}

	// Resync could not reach the backend either; local copy is unchanged.
	if got := len(svc.Airdrops()); got != 1 {
		t.Errorf("len(Airdrops()) = %d after failed save, want 1", got)
	}
}

func TestDeleteAirdropRemovesLocally(t *testing.T) {
	backend := &fakeBackend{
		airdrops: []model.Airdrop{{ID: "1", Project: "Alpha"}, {ID: "2", Project: "Beta"}},
	}
	svc := NewService(backend, nil)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if err := svc.DeleteAirdrop(context.Background(), "1"); err != nil {
		t.Fatalf("DeleteAirdrop() error = %v", err)
	}

	local := svc.Airdrops()
	if len(local) != 1 || local[0].ID != "2" {
		t.Errorf("local list = %+v, want only record 2", local)
	}
}

func TestDismissNotification(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, nil)

	if _, err := svc.SaveToken(context.Background(), model.Token{Name: "BTC", APIURL: "http://x"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	notes := svc.Notifications()
	if len(notes) != 1 {
		t.Fatalf("len(Notifications()) = %d, want 1", len(notes))
	}

	svc.Dismiss(notes[0].ID)
	if got := len(svc.Notifications()); got != 0 {
		t.Errorf("len(Notifications()) = %d after dismiss, want 0", got)
	}
}
