package tz

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// zoneDirs mirrors the search order of the time package on Unix.
var zoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
	"/etc/zoneinfo",
}

// fallbackZones is used when no zoneinfo tree is installed (e.g. scratch
// containers relying on time/tzdata).
var fallbackZones = []string{
	"Africa/Cairo", "Africa/Johannesburg", "Africa/Lagos", "Africa/Nairobi",
	"America/Anchorage", "America/Argentina/Buenos_Aires", "America/Bogota",
	"America/Chicago", "America/Denver", "America/Halifax", "America/Lima",
	"America/Los_Angeles", "America/Manaus", "America/Mexico_City",
	"America/New_York", "America/Phoenix", "America/Santiago",
	"America/Sao_Paulo", "America/St_Johns", "America/Toronto",
	"Asia/Bangkok", "Asia/Dhaka", "Asia/Dubai", "Asia/Hong_Kong",
	"Asia/Jakarta", "Asia/Jerusalem", "Asia/Karachi", "Asia/Kathmandu",
	"Asia/Kolkata", "Asia/Manila", "Asia/Seoul", "Asia/Shanghai",
	"Asia/Singapore", "Asia/Tehran", "Asia/Tokyo", "Atlantic/Azores",
	"Atlantic/Reykjavik", "Australia/Adelaide", "Australia/Brisbane",
	"Australia/Perth", "Australia/Sydney", "Europe/Amsterdam",
	"Europe/Athens", "Europe/Berlin", "Europe/Istanbul", "Europe/Lisbon",
	"Europe/London", "Europe/Madrid", "Europe/Moscow", "Europe/Paris",
	"Europe/Rome", "Europe/Warsaw", "Pacific/Auckland", "Pacific/Honolulu",
	"UTC",
}

var (
	availableOnce sync.Once
	available     []string
)

// Available lists known zone names, sorted. The list is read once from the
// first zoneinfo tree found, honouring $ZONEINFO when it is a directory.
func Available() []string {
	availableOnce.Do(func() {
		dirs := zoneDirs
		if env := os.Getenv("ZONEINFO"); env != "" {
			dirs = append([]string{env}, dirs...)
		}
		for _, dir := range dirs {
			if names := scanZoneDir(dir); len(names) > 0 {
				available = names
				return
			}
		}
		available = slices.Clone(fallbackZones)
		slices.Sort(available)
	})
	return slices.Clone(available)
}

func scanZoneDir(root string) []string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}
	var names []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			// posix/ and right/ duplicate the main tree.
			if rel == "posix" || rel == "right" {
				return fs.SkipDir
			}
			return nil
		}
		name := filepath.ToSlash(rel)
		if isZoneName(name) {
			names = append(names, name)
		}
		return nil
	})
	slices.Sort(names)
	return names
}

// isZoneName filters out tables and leap-second files that live next to
// the zone files (zone.tab, leapseconds, posixrules, ...).
func isZoneName(name string) bool {
	if strings.ContainsAny(name, ".") || name == "posixrules" || name == "localtime" || name == "Factory" {
		return false
	}
	first := rune(name[0])
	if !unicode.IsUpper(first) {
		return false
	}
	_, err := Load(name)
	return err == nil
}
