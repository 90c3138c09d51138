package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetAirdropsByRangeWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("range"); got != "today" {
			t.Errorf("range = %q, want today", got)
		}
		w.Write([]byte(`{"items":[{"project":"Foo","alias":"FOO","timezone":"UTC","phase":"1","x":"","raised":"","source_link":"","image_url":""}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	items, err := c.GetAirdropsByRange(context.Background(), RangeToday)
	if err != nil {
		t.Fatalf("GetAirdropsByRange failed: %v", err)
	}
	if len(items) != 1 || items[0].Project != "Foo" {
		t.Errorf("items = %+v, want one Foo entry", items)
	}
}

func TestGetAirdropsByRangeBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"project":"Bar","alias":"BAR","timezone":"UTC","phase":"2","x":"","raised":"","source_link":"","image_url":""}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	items, err := c.GetAirdropsByRange(context.Background(), RangeAll)
	if err != nil {
		t.Fatalf("GetAirdropsByRange failed: %v", err)
	}
	if len(items) != 1 || items[0].Project != "Bar" {
		t.Errorf("items = %+v, want one Bar entry", items)
	}
}

func TestAirdropAdminPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	ctx := context.Background()

	if _, err := c.GetAllAirdrops(ctx); err != nil {
		t.Fatalf("GetAllAirdrops failed: %v", err)
	}
	if _, err := c.GetDeletedAirdrops(ctx); err != nil {
		t.Fatalf("GetDeletedAirdrops failed: %v", err)
	}
	if err := c.DeleteAirdrop(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAirdrop failed: %v", err)
	}

	want := []string{
		"GET /admin/airdrops",
		"GET /admin/airdrops/deleted",
		"DELETE /airdrops/a1",
	}
	for i, w := range want {
		if i >= len(paths) || paths[i] != w {
			t.Errorf("request[%d] = %v, want %q", i, paths, w)
			break
		}
	}
}
