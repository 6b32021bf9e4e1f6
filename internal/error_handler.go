package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/userdesk/pkg/access"
)

// ErrorPage is the page rendered for HTML error responses.
const ErrorPage = "_error"

type stackTracer interface {
	StackTrace() string
}

// DefaultErrorHandler negotiates on Accept: HTML clients get the error
// page, JSON clients get {"error": message} and everyone else gets the
// status alone. Outside dev, messages of 5xx errors are replaced by the
// status text.
func DefaultErrorHandler(dev bool) ErrorHandler {
	return func(c Context, err error) error {
		status := StatusOf(err)
		message := errorMessage(err)

		attrs := []any{
			slog.Int("status", status),
			slog.String("kind", KindOf(err).String()),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		}
		if status >= http.StatusInternalServerError {
			c.LogError("request failed", attrs...)
			if !dev {
				message = http.StatusText(status)
			}
		} else {
			c.LogDebug("request rejected", attrs...)
		}

		switch Negotiate(c.Header("Accept")) {
		case AcceptHTML:
			data := map[string]any{
				"Status":     status,
				"StatusText": http.StatusText(status),
				"Message":    message,
			}
			if dev {
				data["Stack"] = stackOf(err)
			}
			renderErr := c.RenderPage(status, ErrorPage, data)
			if renderErr == nil || c.Written() {
				return renderErr
			}
			return c.String(status, message)
		case AcceptJSON:
			return c.JSON(status, map[string]string{"error": message})
		default:
			return c.NoContent(status)
		}
	}
}

func errorMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var denied *access.DeniedError
	if errors.As(err, &denied) {
		return denied.Reason
	}
	return err.Error()
}

func stackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	return fmt.Sprintf("%+v", err)
}

// Response shapes picked by Negotiate.
const (
	AcceptHTML = "html"
	AcceptJSON = "json"
)

// Negotiate picks whichever of HTML or JSON comes first in an Accept
// header, or "" when neither is named.
func Negotiate(accept string) string {
	html := strings.Index(accept, "text/html")
	json := strings.Index(accept, "application/json")
	switch {
	case html >= 0 && (json < 0 || html < json):
		return AcceptHTML
	case json >= 0:
		return AcceptJSON
	default:
		return ""
	}
}
