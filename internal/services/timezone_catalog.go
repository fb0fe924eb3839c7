package services

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // DST rules even on hosts without a zoneinfo directory
	"unicode"
)

// commonTimezones lead the catalog in this order.
var commonTimezones = []string{
	"UTC",
	"US/Eastern",
	"US/Central",
	"US/Mountain",
	"US/Pacific",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Asia/Tokyo",
	"Asia/Shanghai",
	"Asia/Hong_Kong",
	"Asia/Singapore",
	"Australia/Sydney",
	"Australia/Melbourne",
}

// ZoneSource lists the timezone identifiers known to the timezone database.
type ZoneSource func() ([]string, error)

var zoneinfoDirs = []string{
	"/usr/share/zoneinfo/",
	"/usr/share/lib/zoneinfo/",
	"/usr/lib/locale/TZ/",
	"/etc/zoneinfo/",
}

// SystemZoneSource walks the first zoneinfo directory found ($ZONEINFO first)
// and keeps every file that time.LoadLocation accepts.
func SystemZoneSource() ZoneSource {
	return func() ([]string, error) {
		dirs := zoneinfoDirs
		if env := os.Getenv("ZONEINFO"); env != "" {
			dirs = append([]string{env}, dirs...)
		}
		for _, dir := range dirs {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			return walkZoneinfo(dir)
		}
		return nil, nil
	}
}

// StaticZoneSource serves a fixed list of identifiers.
func StaticZoneSource(zones ...string) ZoneSource {
	return func() ([]string, error) {
		return append([]string(nil), zones...), nil
	}
}

func walkZoneinfo(root string) ([]string, error) {
	var zones []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			// posix/ and right/ duplicate the main tree with other leap-second handling.
			if rel == "posix" || rel == "right" {
				return fs.SkipDir
			}
			return nil
		}
		if !looksLikeZoneName(rel) {
			return nil
		}
		if _, loadErr := time.LoadLocation(rel); loadErr == nil {
			zones = append(zones, rel)
		}
		return nil
	})
	return zones, err
}

func looksLikeZoneName(name string) bool {
	if name == "" || strings.Contains(name, ".") || name == "posixrules" || name == "localtime" {
		return false
	}
	first := []rune(name)[0]
	return unicode.IsUpper(first)
}

// buildTimezoneCatalog puts the common zones first, then the rest sorted,
// dropping duplicates.
func buildTimezoneCatalog(all []string) []string {
	seen := make(map[string]bool, len(all)+len(commonTimezones))
	catalog := make([]string, 0, len(all)+len(commonTimezones))
	for _, z := range commonTimezones {
		seen[z] = true
		catalog = append(catalog, z)
	}

	rest := make([]string, 0, len(all))
	for _, z := range all {
		if z == "" || seen[z] {
			continue
		}
		seen[z] = true
		rest = append(rest, z)
	}
	sort.Strings(rest)
	return append(catalog, rest...)
}

// resolveLocation loads name, reporting false and UTC when it is unusable.
func resolveLocation(name string) (*time.Location, bool) {
	if name == "" || name == "Local" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}
