package server

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
)

// newTestServer wires a cache whose origin returns the id as content,
// except for ids listed in missing.
func newTestServer(t *testing.T, missing map[uuid.UUID]bool) *Server {
	t.Helper()
	dir, err := ioutil.TempDir("", "assetcache")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	c, err := cache.New(cache.Config{
		CacheDir: dir,
		Fetcher: cache.FetcherFunc(func(ctx context.Context, id uuid.UUID, kind asset.Kind, p cache.Priority) ([]byte, error) {
			if missing[id] {
				return nil, context.DeadlineExceeded
			}
			return []byte(id.String()), nil
		}),
	})
	if err != nil {
		t.Fatalf("received %s", err.Error())
	}
	t.Cleanup(c.Shutdown)
	return &Server{Cache: c}
}

func TestAssetRoute(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.addRoutes()
	id := uuid.New()

	req := httptest.NewRequest("GET", "/asset/"+id.String()+"?kind=texture", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("Got status %d, expected 200", w.Code)
	}
	if w.Body.String() != id.String() {
		t.Errorf("Got body %q, expected %q", w.Body.String(), id.String())
	}
	if w.Header().Get("ETag") == "" {
		t.Errorf("no ETag header on asset response")
	}
}

func TestAssetRouteErrors(t *testing.T) {
	missing := uuid.New()
	s := newTestServer(t, map[uuid.UUID]bool{missing: true})
	h := s.addRoutes()

	var table = []struct {
		path   string
		status int
	}{
		{"/asset/not-a-uuid?kind=texture", 400},
		{"/asset/" + uuid.New().String(), 400}, // no kind
		{"/asset/" + uuid.New().String() + "?kind=holodeck", 400},
		{"/asset/" + missing.String() + "?kind=texture", 404},
	}
	for _, s := range table {
		req := httptest.NewRequest("GET", s.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != s.status {
			t.Errorf("%s: got status %d, expected %d", s.path, w.Code, s.status)
		}
	}
}

func TestStatusRoute(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.addRoutes()
	id := uuid.New()

	get := func() string {
		req := httptest.NewRequest("GET", "/asset/"+id.String()+"/status", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("Got status %d, expected 200", w.Code)
		}
		var body struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		return body.Status
	}

	if st := get(); st != "NOT_FOUND" {
		t.Errorf("Got %s, expected NOT_FOUND", st)
	}
	// load it, then it is resident
	req := httptest.NewRequest("GET", "/asset/"+id.String()+"?kind=sound", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if st := get(); st != "READY" {
		t.Errorf("Got %s, expected READY", st)
	}
}

func TestPreloadAndClearRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.addRoutes()

	body := `{"ids": ["` + uuid.New().String() + `"], "kind": "texture"}`
	req := httptest.NewRequest("POST", "/preload", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 202 {
		t.Errorf("preload: got status %d, expected 202", w.Code)
	}

	req = httptest.NewRequest("POST", "/admin/clear/memory", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Errorf("clear memory: got status %d, expected 200", w.Code)
	}

	req = httptest.NewRequest("POST", "/admin/clear/attic", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("clear unknown tier: got status %d, expected 400", w.Code)
	}
}

func TestStatsRoute(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.addRoutes()

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("Got status %d, expected 200", w.Code)
	}
	var stats cache.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.HitRate != 0.0 {
		t.Errorf("fresh cache HitRate = %v, expected 0", stats.HitRate)
	}
}
