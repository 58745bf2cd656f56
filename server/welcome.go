package server

import (
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Version of the server, reported on the welcome page and at startup.
const Version = "1.0.0"

// WelcomeHandler identifies the service for anyone poking the root URL.
func WelcomeHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	fmt.Fprintf(w, "assetcache %s\n", Version)
}
