package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestBoxedEngineMapsProducts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cheddar%20popcorn" && r.URL.Path != "/cheddar popcorn" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"productListEntities": [
					{
						"name": "Cheddar Popcorn",
						"images": [{"originalBase": "https://img.example/popcorn.jpg"}],
						"variantObject": {
							"upc": "111222333",
							"gid": "gid-42",
							"product": {
								"brand": "Snacktown",
								"longDescription": "Sharp cheddar popcorn.",
								"keywords": ["popcorn", "cheddar"]
							}
						}
					},
					{"name": "   "}
				]
			}
		}`))
	}))
	defer server.Close()

	engine := NewBoxedEngine(server.Client(), zerolog.Nop())
	engine.endpoint = server.URL + "/"

	snacks, err := engine.Search(context.Background(), "cheddar popcorn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snacks) != 1 {
		t.Fatalf("expected one mapped product, got %d", len(snacks))
	}

	got := snacks[0]
	if got.Name != "Cheddar Popcorn" || got.Brand != "Snacktown" || got.UPC != "111222333" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if got.ProductURLs["boxedId"] != "gid-42" {
		t.Fatalf("expected boxedId product URL, got %v", got.ProductURLs)
	}
	if got.SourceEngine != EngineNameBoxed {
		t.Fatalf("expected source engine tag, got %q", got.SourceEngine)
	}
}

func TestBoxedEngineNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	engine := NewBoxedEngine(server.Client(), zerolog.Nop())
	engine.endpoint = server.URL + "/"

	if _, err := engine.Search(context.Background(), "popcorn"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
