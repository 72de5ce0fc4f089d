package output

import "time"

// ConfigPort reads configuration values. Typed getters fall back to the
// default on missing or unparseable values rather than failing.
type ConfigPort interface {
	Get(key string) string
	MustGet(key string) string
	GetWithDefault(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) bool
	GetInt(key string, defaultValue int) int
	GetDuration(key string, defaultValue time.Duration) time.Duration
}
