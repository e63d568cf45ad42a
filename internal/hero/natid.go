package hero

import "strings"

const (
	// NatIDPrefix is the reserved prefix of every natid the service issues.
	NatIDPrefix = "natid-"

	// InvalidMarker flags a natid as synthetic-invalid: it never exists.
	InvalidMarker = "invalid"
)

// Exists is the existence predicate of the simulated persistence layer.
func Exists(natid string) bool {
	return strings.HasPrefix(natid, NatIDPrefix) && !strings.Contains(natid, InvalidMarker)
}

// FormatNatID turns the raw numeric part of a natid into its canonical form.
func FormatNatID(raw string) string {
	return NatIDPrefix + raw
}
