// Package redis opens go-redis clients from a URL with startup retries and
// exposes readiness and shutdown hooks for them.
package redis
