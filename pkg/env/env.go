package env

import (
	"os"
	"strings"
)

// Get returns the value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// InstanceID identifies this process in logs. GYMDESK_INSTANCE_ID wins,
// then the hostname.
func InstanceID() string {
	if id := Get("GYMDESK_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
