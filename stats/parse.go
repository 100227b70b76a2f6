package stats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownKey is returned when a name cannot be resolved to a statistic.
var ErrUnknownKey = errors.New("unknown stat key")

// ParseKey resolves a code ("HEA"), a name ("health") or a near miss
// ("helth") to a Key. Ambiguous near misses are rejected.
func ParseKey(raw string) (Key, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownKey)
	}

	for _, k := range AllKeys {
		if s == strings.ToLower(keyCodes[k]) || s == keyNames[k] {
			return k, nil
		}
	}

	// Prefix of a name, at least three letters
	if len(s) >= 3 {
		for _, k := range AllKeys {
			if strings.HasPrefix(keyNames[k], s) {
				return k, nil
			}
		}
	}

	best, bestDist, tied := Key(0), -1, false
	for _, k := range AllKeys {
		dist := levenshtein.ComputeDistance(s, keyNames[k])
		if dist > levenshteinLimit(len(keyNames[k])) {
			continue
		}
		switch {
		case bestDist < 0 || dist < bestDist:
			best, bestDist, tied = k, dist, false
		case dist == bestDist:
			tied = true
		}
	}
	if bestDist < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, raw)
	}
	if tied {
		return 0, fmt.Errorf("%w: %q is ambiguous", ErrUnknownKey, raw)
	}
	return best, nil
}

// MustParseKey is like ParseKey but panics on error.
func MustParseKey(raw string) Key {
	k, err := ParseKey(raw)
	if err != nil {
		panic(fmt.Sprintf("stats: %v", err))
	}
	return k
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
