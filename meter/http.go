package meter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"goji.io/pat"
	"golang.org/x/time/rate"

	"github.com/wl99/node-red-zdll/imgenc"
	"github.com/wl99/node-red-zdll/server"
)

// HTTPWrapper provides an HTTP interface to a capture session
type HTTPWrapper struct {
	// Session is the session being wrapped
	*Session

	// RouteTable maps the routes this wrapper serves
	RouteTable server.RouteTable

	limiter *rate.Limiter
}

// NewHTTPWrapper returns a new wrapper with the route table populated.
// The capture routes share a rate limiter; the vendor DLL misbehaves
// when captures are thrashed back to back.
func NewHTTPWrapper(s *Session) *HTTPWrapper {
	w := &HTTPWrapper{
		Session: s,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	w.RouteTable = server.RouteTable{
		pat.Get("/status"):   w.GetStatus,
		pat.Post("/capture"): w.PostCapture,
		pat.Get("/frame"):    w.GetFrame,
	}
	return w
}

// GetStatus reports the device metadata on a GET request
func (h *HTTPWrapper) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Session.Status()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.EncodeJSON(w, st)
}

// captureRequest is the body of POST /capture
type captureRequest struct {
	// Template is the output path template, may embed {{meter}}
	Template string `json:"template"`

	// Format is the pixel format, default gray8
	Format string `json:"format"`

	// Zones optionally overrides the zone selectors
	Zones []int32 `json:"zones"`

	// Meters are the 1-based meter indices to persist
	Meters []int `json:"meters"`

	// Targets optionally names the output pairs explicitly; see
	// Options.Targets
	Targets []Target `json:"targets"`
}

// PostCapture runs one capture and reports per-target results.  Partial
// write failures still return the full result set; inspect the per-result
// error fields.
func (h *HTTPWrapper) PostCapture(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		http.Error(w, "capture rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	req := captureRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pf := imgenc.Gray8
	if req.Format != "" {
		pf, err = imgenc.ParsePixelFormat(req.Format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	results, err := h.Session.Capture(Options{
		PathTemplate: req.Template,
		Format:       pf,
		Zones:        req.Zones,
		Meters:       req.Meters,
		Targets:      req.Targets,
	})
	if err != nil && len(results) == 0 {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.EncodeJSON(w, results)
}

// GetFrame captures one frame and serves it over the wire.
//
// query parameters: meter (1-based, default 1), pixel (gray8|bgr24|rgb24,
// default gray8), fmt (jpg|png|bmp, default jpg)
func (h *HTTPWrapper) GetFrame(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		http.Error(w, "capture rate limit exceeded", http.StatusTooManyRequests)
		return
	}
	q := r.URL.Query()
	meterIdx := 1
	if s := q.Get("meter"); s != "" {
		var err error
		meterIdx, err = strconv.Atoi(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	pf := imgenc.Gray8
	if s := q.Get("pixel"); s != "" {
		var err error
		pf, err = imgenc.ParsePixelFormat(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	var container imgenc.Container
	var ctype string
	switch q.Get("fmt") {
	case "", "jpg", "jpeg":
		container, ctype = imgenc.JPEG, "image/jpeg"
	case "png":
		container, ctype = imgenc.PNG, "image/png"
	case "bmp":
		container, ctype = imgenc.BMP, "image/bmp"
	default:
		http.Error(w, "fmt must be one of jpg, png, bmp", http.StatusBadRequest)
		return
	}
	pix, width, height, err := h.Session.Snap(meterIdx, pf, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ctype)
	err = imgenc.Encode(w, pix, width, height, pf, container)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
