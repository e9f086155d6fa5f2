package config

import (
	"bufio"
	"embed"
	"sort"
	"strings"
	"sync"
)

//go:embed data/iana_timezones.txt
var zoneData embed.FS

var (
	zonesOnce sync.Once
	zoneNames []string
	zonesErr  error
)

// Zones returns the zone names offered as suggestions, sorted.
func Zones() ([]string, error) {
	zonesOnce.Do(func() {
		f, err := zoneData.Open("data/iana_timezones.txt")
		if err != nil {
			zonesErr = err
			return
		}
		defer func() { _ = f.Close() }()

		seen := map[string]struct{}{}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
			zoneNames = append(zoneNames, line)
		}
		zonesErr = scanner.Err()
		sort.Strings(zoneNames)
	})
	if zonesErr != nil {
		return nil, zonesErr
	}
	return append([]string(nil), zoneNames...), nil
}

// SuggestZones returns up to limit zone names containing query, prefix
// matches first. A match at the start of the city segment counts as a prefix
// match, and spaces match underscores, so "sao paulo" finds America/Sao_Paulo.
func SuggestZones(query string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}
	query = strings.ReplaceAll(query, " ", "_")

	zones, err := Zones()
	if err != nil {
		return nil
	}

	type match struct {
		name   string
		prefix bool
	}
	var matches []match
	for _, zone := range zones {
		lower := strings.ToLower(zone)
		if !strings.Contains(lower, query) {
			continue
		}
		city := lower[strings.LastIndex(lower, "/")+1:]
		matches = append(matches, match{
			name:   zone,
			prefix: strings.HasPrefix(lower, query) || strings.HasPrefix(city, query),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}
