package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
)

func TestHTTPFetch(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asset/"+id.String() {
			w.WriteHeader(404)
			return
		}
		if r.URL.Query().Get("kind") != "texture" {
			t.Errorf("kind query = %q", r.URL.Query().Get("kind"))
		}
		if r.Header.Get("X-Asset-Priority") != "high" {
			t.Errorf("priority header = %q", r.Header.Get("X-Asset-Priority"))
		}
		w.Write([]byte("texture bytes"))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	b, err := h.FetchRemote(context.Background(), id, asset.KindTexture, cache.PriorityHigh)
	if err != nil {
		t.Fatalf("received %s", err.Error())
	}
	if string(b) != "texture bytes" {
		t.Errorf("Got %q, expected %q", b, "texture bytes")
	}
}

func TestHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	_, err := h.FetchRemote(context.Background(), uuid.New(), asset.KindSound, cache.PriorityNormal)
	if err != ErrNotFound {
		t.Errorf("Got %v, expected ErrNotFound", err)
	}
}

func TestHTTPErrorReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(503)
		w.Write([]byte(`{"error": "backend melting"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	_, err := h.FetchRemote(context.Background(), uuid.New(), asset.KindMesh, cache.PriorityLow)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "backend melting") {
		t.Errorf("error %q does not carry the origin reason", err.Error())
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error %q does not carry the status", err.Error())
	}
}

func TestHTTPErrorNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL)
	_, err := h.FetchRemote(context.Background(), uuid.New(), asset.KindMesh, cache.PriorityLow)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Got %v, expected a status-500 error", err)
	}
}
