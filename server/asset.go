package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
)

// parseKindParam accepts either a kind name ("texture") or a numeric
// wire code. Unknown numeric codes degrade to the object kind; unknown
// names are an error.
func parseKindParam(s string) (asset.Kind, error) {
	if s == "" {
		return 0, fmt.Errorf("missing kind parameter")
	}
	if code, err := strconv.Atoi(s); err == nil {
		return asset.KindFromCode(code), nil
	}
	return asset.ParseKind(s)
}

// AssetHandler returns the raw bytes for GET /asset/:id?kind=...
// The priority query parameter is optional and defaults to normal.
func (s *Server) AssetHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintln(w, err)
		return
	}
	kind, err := parseKindParam(r.FormValue("kind"))
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintln(w, err)
		return
	}
	priority, _ := cache.ParsePriority(r.FormValue("priority"))

	rec, err := s.Cache.Get(id, kind, priority)
	if err != nil {
		// the cache is shutting down
		w.WriteHeader(503)
		fmt.Fprintln(w, err)
		return
	}
	if rec == nil {
		w.WriteHeader(404)
		fmt.Fprintln(w, "Asset not available")
		return
	}
	hash := rec.ContentHash()
	w.Header().Set("ETag", `"`+hex.EncodeToString(hash[:])+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", rec.Size()))
	if r.Method == "HEAD" {
		return
	}
	w.Write(rec.Bytes)
}

// StatusHandler reports which tier, if any, holds the asset.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintln(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}{id.String(), s.Cache.Status(id).String()})
}

// preloadBody is the request body for POST /preload.
type preloadBody struct {
	IDs  []string `json:"ids"`
	Kind string   `json:"kind"`
}

// PreloadHandler queues background fetches for a list of identifiers.
// It replies 202 immediately; results are visible through /asset and
// /asset/:id/status later.
func (s *Server) PreloadHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body preloadBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(400)
		fmt.Fprintln(w, err)
		return
	}
	kind, err := parseKindParam(body.Kind)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintln(w, err)
		return
	}
	var ids []uuid.UUID
	for _, raw := range body.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			w.WriteHeader(400)
			fmt.Fprintf(w, "bad identifier %q: %s\n", raw, err)
			return
		}
		ids = append(ids, id)
	}
	s.Cache.Preload(ids, kind)
	w.WriteHeader(202)
}

// StatsHandler returns a snapshot of the cache counters.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(s.Cache.Stats())
}

// ClearHandler empties one tier: POST /admin/clear/memory or
// /admin/clear/disk.
func (s *Server) ClearHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("tier") {
	case "memory":
		s.Cache.ClearMemory()
	case "disk":
		s.Cache.ClearDisk()
	default:
		w.WriteHeader(400)
		fmt.Fprintln(w, "unknown tier, want memory or disk")
		return
	}
	fmt.Fprintln(w, "ok")
}
