package share

import (
	"os"
	"strings"
)

// EnvLookup reads provider credentials from the environment and remembers
// which required variables were unset.
type EnvLookup struct {
	Provider string
	missing  []string
}

// Required returns the trimmed value of key, recording it as missing when empty.
func (l *EnvLookup) Required(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		l.missing = append(l.missing, key)
	}
	return v
}

// Optional returns the trimmed value of key, or fallback when unset.
func (l *EnvLookup) Optional(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Err returns a MissingConfigError naming every missing required variable.
func (l *EnvLookup) Err() error {
	if len(l.missing) == 0 {
		return nil
	}
	return MissingConfigError{Provider: l.Provider, Fields: l.missing}
}
