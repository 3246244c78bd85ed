package mlsettings

import (
	"time"

	"ml-backend-settings/pkg/models"
)

const (
	urlFront     = 20
	urlBack      = 10
	urlEllipsis  = "..."
	versionUnset = "unknown"

	// VersionLayout renders as "March 05, 2024 ∙ 14:07:09"
	VersionLayout = "January 02, 2006 ∙ 15:04:05"
)

// TruncateMiddle keeps the first front and last back characters of s and
// joins them with sep. Strings no longer than front+back come back as is.
func TruncateMiddle(s string, front, back int, sep string) string {
	runes := []rune(s)
	n := len(runes)
	if (front == 0 && back == 0) || front >= n || back >= n || front+back >= n {
		return s
	}
	if back == 0 {
		return string(runes[:front]) + sep
	}
	return string(runes[:front]) + sep + string(runes[n-back:])
}

// FormatVersion renders a backend version timestamp in loc, or "unknown"
func FormatVersion(v *models.Version, loc *time.Location) string {
	if v == nil || v.IsZero() {
		return versionUnset
	}
	return v.At(loc).Format(VersionLayout)
}
