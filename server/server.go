// Package server contains misc HTTP server utilities.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"goji.io"
	"goji.io/pat"
)

// RouteTable maps URL patterns to handlers
type RouteTable map[*pat.Pattern]http.HandlerFunc

// Bind attaches every route in the table to the mux, plus a
// list-of-routes endpoint that reports what is bound
func (rt RouteTable) Bind(mux *goji.Mux) {
	for p, h := range rt {
		mux.HandleFunc(p, h)
	}
	mux.HandleFunc(pat.Get("/list-of-routes"), func(w http.ResponseWriter, r *http.Request) {
		EncodeJSON(w, rt.Endpoints())
	})
}

// Endpoints lists the patterns in the table
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for p := range rt {
		routes = append(routes, p.String())
	}
	sort.Strings(routes)
	return routes
}

// EncodeJSON writes v to w as JSON with the appropriate content type
func EncodeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		fstr := "error encoding response data to json"
		log.Println(fstr, err)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}
