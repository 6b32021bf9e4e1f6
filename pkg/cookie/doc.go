// Package cookie provides HTTP cookie management with optional HMAC signing.
//
// The Manager handles plain and signed cookies plus JSON one-shot values
// (alerts shown after a redirect). Cookies default to HttpOnly,
// SameSite=Strict and path "/".
//
//	m := cookie.New(
//		cookie.WithSecret(os.Getenv("COOKIE_SECRET")),
//		cookie.WithSecure(true),
//	)
//
//	_ = m.SetSigned(w, "sessionId", sess.ID, 0)
//	id, err := m.GetSigned(r, "sessionId")
//
// JSON values are base64url encoded and signed when a secret is set:
//
//	_ = m.SetJSON(w, "alert", Alert{Message: "Saved", Type: "success"}, 5*time.Second)
//
//	var a Alert
//	err := m.Flash(w, r, "alert", &a) // reads and deletes
//
// Errors:
//   - [ErrNotFound]: cookie does not exist
//   - [ErrNoSecret]: signed operation without a secret
//   - [ErrBadSig]: signature verification failed
//   - [ErrDecode]: value is not valid base64 or JSON
package cookie
