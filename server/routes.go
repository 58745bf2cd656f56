// Package server exposes an asset cache over HTTP. It is a thin layer:
// every route maps onto one cache operation, and the cache's own
// semantics (tiering, dedup, statistics) do the rest.
package server

import (
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // for pprof server

	"github.com/facebookgo/httpdown"
	"github.com/julienschmidt/httprouter"

	"github.com/openworld/assetcache/cache"
)

// Server holds the configuration for an assetcache HTTP server.
//
// Set the public fields and then call Run. Run listens on the given port
// and blocks handling requests until Stop is called. Do not change any
// fields after calling Run.
type Server struct {
	// PortNumber to listen on. Defaults to 14500.
	PortNumber string
	PProfPort  string

	// Cache serves every request. Run panics if it is nil.
	Cache *cache.Cache

	server httpdown.Server // used to close our listening socket
}

// Run starts the server and blocks serving requests.
func (s *Server) Run() error {
	log.Println("==========")
	log.Printf("Starting assetcache server version %s", Version)

	if s.Cache == nil {
		panic("No cache given. Cache is nil.")
	}
	if s.PortNumber == "" {
		s.PortNumber = "14500"
	}

	publishStats(s.Cache)

	if s.PProfPort != "" {
		log.Println("Starting PProf on port", s.PProfPort)
		go func() {
			log.Println(http.ListenAndServe(":"+s.PProfPort, nil))
		}()
	}
	log.Println("Listening on", s.PortNumber)

	h := httpdown.HTTP{}
	var err error
	s.server, err = h.ListenAndServe(&http.Server{
		Addr:    ":" + s.PortNumber,
		Handler: s.addRoutes(),
	})
	if err != nil {
		log.Println(err)
		return err
	}
	return s.server.Wait()
}

// Stop closes the listening socket, waits for outstanding requests, and
// shuts the cache down.
func (s *Server) Stop() error {
	err := s.server.Stop()
	s.Cache.Shutdown()
	return err
}

func (s *Server) addRoutes() http.Handler {
	var routes = []struct {
		method  string
		route   string
		handler httprouter.Handle
	}{
		{"GET", "/asset/:id", s.AssetHandler},
		{"HEAD", "/asset/:id", s.AssetHandler},
		{"GET", "/asset/:id/status", s.StatusHandler},
		{"POST", "/preload", s.PreloadHandler},
		{"GET", "/stats", s.StatsHandler},
		{"POST", "/admin/clear/:tier", s.ClearHandler},

		// other
		{"GET", "/", WelcomeHandler},
		{"GET", "/debug/vars", VarHandler}, // standard route for expvars data
	}

	r := httprouter.New()
	for _, route := range routes {
		r.Handle(route.method, route.route, logWrapper(route.handler))
	}
	return r
}

// publishStats exposes the cache counters as an expvar, once per
// process. Later servers in the same process (tests) reuse the name.
func publishStats(c *cache.Cache) {
	if expvar.Get("assetcache") != nil {
		return
	}
	expvar.Publish("assetcache", expvar.Func(func() interface{} {
		return c.Stats()
	}))
}

// VarHandler adapts the expvar default handler to the httprouter three
// parameter handler.
func VarHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	// this code is taken from the stdlib expvar package.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, "{\n")
	first := true
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(w, ",\n")
		}
		first = false
		fmt.Fprintf(w, "%q: %s", kv.Key, kv.Value)
	})
	fmt.Fprintf(w, "\n}\n")
}

// logWrapper takes a handler and returns a handler which does the same
// thing, after first logging the request URL.
func logWrapper(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		log.Println(r.Method, r.URL)
		handler(w, r, ps)
	}
}
