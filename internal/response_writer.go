package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter tracks the status and body size of a response and runs
// the before-write hooks once, right before the header goes out. The
// session is saved from such a hook so its cookie still makes it into the
// header. Hijack and other optional interfaces are reachable through
// http.ResponseController via Unwrap.
type ResponseWriter struct {
	http.ResponseWriter
	hooks     []func()
	size      int64
	status    int
	mu        sync.Mutex
	committed bool
}

// NewResponseWriter wraps w.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run before the header is sent. Hooks run in
// registration order and may still change headers. Hooks registered after
// the commit never run.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.committed {
		w.hooks = append(w.hooks, fn)
	}
}

// commit marks the response as started and runs the hooks. It reports
// false when the header was already sent.
func (w *ResponseWriter) commit(code int) bool {
	w.mu.Lock()
	if w.committed {
		w.mu.Unlock()
		return false
	}
	w.committed = true
	if code != 0 {
		w.status = code
	}
	hooks := w.hooks
	w.hooks = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(w.status)
	return true
}

// WriteHeader sends the header. Calls after the first are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.commit(code)
}

// Write sends the header with the current status if needed, then b.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.commit(0)
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Status is the status sent, or 200 before anything was written.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size is the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	return w.size
}

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed
}

// Flush sends buffered data to the client, committing the header first.
func (w *ResponseWriter) Flush() {
	w.commit(0)
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
