package contracts

import (
	"strings"
	"unicode/utf8"
)

// Maximum field sizes accepted by the ingestion service. Oversized values
// are truncated at serialization time, never rejected.
const (
	MaxNameLen          = 1024
	MaxInstrumentKeyLen = 40
	MaxPropertyKeyLen   = 150
	MaxPropertyValueLen = 8192
	MaxMessageLen       = 32768
	MaxURLLen           = 2048
)

// TruncateString cuts s to at most max bytes, backing off to a rune
// boundary so the result stays valid UTF-8. It is the enforcement point for
// every wire-contract length limit.
func TruncateString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// SanitizeProperties returns properties with empty or all-whitespace keys
// and values silently dropped and the survivors truncated to the property
// limits. A nil or fully-dropped map comes back nil so callers can treat it
// as absent.
func SanitizeProperties(props map[string]string) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		out[TruncateString(k, MaxPropertyKeyLen)] = TruncateString(v, MaxPropertyValueLen)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
