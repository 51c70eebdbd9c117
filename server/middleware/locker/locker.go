// Package locker provides an HTTP middleware which allows a device server to be locked, returning 423 (locked)
package locker

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"goji.io/pat"

	"github.com/wl99/node-red-zdll/server"
)

// Inject adds the lock routes to a route table, which are used to
// manipulate the locker
func Inject(rt server.RouteTable, l *Locker) {
	rt[pat.Get("/lock")] = l.HTTPGet
	rt[pat.Post("/lock")] = l.HTTPSet
}

// Locker bounces requests while an operator has taken the device
// offline, e.g. to swap the camera or restart the vendor driver.  It
// holds a list of URL substrings to not protect.
type Locker struct {
	mu     sync.Mutex
	locked bool

	// DoNotProtect is a list of paths not to apply the lock to
	DoNotProtect []string
}

// New returns a new Locker with DoNotProtect prepopulated with the lock
// route itself and the status route, so a locked server can still be
// inspected and unlocked
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock", "status", "list-of-routes"}}
}

// Lock the locker
func (l *Locker) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = true
}

// Unlock the locker
func (l *Locker) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
}

// Locked returns true if the locker is locked
func (l *Locker) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Check is an HTTP middleware that returns http.StatusLocked if Locked()
// is true, otherwise passes down the line
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() {
			protected := true
			url := r.URL.Path
			for _, str := range l.DoNotProtect {
				if strings.Contains(url, str) {
					protected = false
				}
			}
			if protected {
				w.WriteHeader(http.StatusLocked)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// lockPayload is the body of POST /lock and the reply to GET /lock
type lockPayload struct {
	Locked bool `json:"locked"`
}

// HTTPSet calls Lock or Unlock based on the locked bool in the request body
func (l *Locker) HTTPSet(w http.ResponseWriter, r *http.Request) {
	p := lockPayload{}
	err := json.NewDecoder(r.Body).Decode(&p)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.Locked {
		l.Lock()
	} else {
		l.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

// HTTPGet returns Locked() over HTTP as JSON
func (l *Locker) HTTPGet(w http.ResponseWriter, r *http.Request) {
	server.EncodeJSON(w, lockPayload{Locked: l.Locked()})
}
