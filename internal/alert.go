package internal

import "time"

// AlertCookie is the name of the one-shot alert cookie.
const AlertCookie = "alert"

// AlertMaxAge is how long an alert survives waiting for the next request.
const AlertMaxAge = 5 * time.Second

// Alert types.
const (
	AlertInfo    = "info"
	AlertSuccess = "success"
	AlertError   = "error"
)

// Alert is a message shown once on the next rendered page.
type Alert struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
