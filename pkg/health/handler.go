package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler always answers OK while the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		write(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	}
}

// ReadinessHandler runs checks and answers 503 when any of them fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := Run(r.Context(), checks, opts...)
		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}
		write(w, r, status, resp)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte(http.StatusText(status)))
	}
}
