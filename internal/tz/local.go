package tz

import (
	"os"
	"strings"
	"time"
)

// LocalZoneName probes the host's configured zone name. It is read per
// request rather than cached so the result stays correct across DST
// boundaries and machine relocation.
//
// Probe order: $TZ, /etc/timezone (Debian), the /etc/localtime
// symlink. When none yields a loadable IANA name, "UTC" is returned;
// that is the one case where defaulting to UTC reflects genuine system
// configuration rather than a guess.
func LocalZoneName() string {
	if name := os.Getenv("TZ"); name != "" {
		if _, err := time.LoadLocation(name); err == nil {
			return name
		}
	}

	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		name := strings.TrimSpace(string(data))
		if name != "" {
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}

	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if name := zoneNameFromPath(target); name != "" {
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}

	return "UTC"
}

// zoneNameFromPath extracts "Region/City" from a zoneinfo path such as
// /usr/share/zoneinfo/America/New_York.
func zoneNameFromPath(path string) string {
	const marker = "/zoneinfo/"
	i := strings.LastIndex(path, marker)
	if i == -1 {
		return ""
	}
	return path[i+len(marker):]
}
