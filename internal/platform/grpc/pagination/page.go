// Package pagination normalizes list limits sent by RPC clients.
package pagination

// LimitConfig bounds a list request.
type LimitConfig struct {
	Default int
	Max     int
}

// ClampLimit applies cfg to a client-supplied limit. Non-positive values
// select the default; the result is always at least one.
func ClampLimit(value int32, cfg LimitConfig) int {
	limit := int(value)
	if limit <= 0 {
		limit = cfg.Default
	}
	if cfg.Max > 0 && limit > cfg.Max {
		limit = cfg.Max
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}
