// Package resolver turns raw chapter links into directly fetchable media URLs.
package resolver

import (
	"net/url"
	"strings"
)

const driveDownload = "https://drive.google.com/uc?export=download&id="

var driveHosts = []string{"drive.google.com", "docs.google.com"}

// IsCloudDrive reports whether raw points at a cloud-drive host.
func IsCloudDrive(raw string) bool {
	for _, host := range driveHosts {
		if strings.Contains(raw, host) {
			return true
		}
	}
	return false
}

// Resolve rewrites cloud-drive share links to their direct download endpoint
// and encodes spaces. It never fails: anything it cannot parse is returned as is.
func Resolve(raw string) string {
	out := raw
	if IsCloudDrive(raw) {
		if id := driveID(raw); id != "" {
			out = driveDownload + url.QueryEscape(id)
		}
	}

	return strings.ReplaceAll(out, " ", "%20")
}

// driveID extracts the file id from either /d/<id>/ or id=<id>.
func driveID(raw string) string {
	if _, rest, ok := strings.Cut(raw, "/d/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		id, _, _ = strings.Cut(id, "?")
		return strings.TrimSpace(id)
	}

	if _, rest, ok := strings.Cut(raw, "id="); ok {
		id, _, _ := strings.Cut(rest, "&")
		id, _, _ = strings.Cut(id, "#")
		return strings.TrimSpace(id)
	}

	return ""
}
