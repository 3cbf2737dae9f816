// Package locate resolves glob patterns to exactly one file on disk.
package locate

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoMatch         = errors.New("no matches found")
	ErrMultipleMatches = errors.New("multiple matches found")
)

// SingleMatch returns the only path matching pattern. Zero or several
// matches are errors; ambiguity is never resolved by picking one.
func SingleMatch(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	switch len(matches) {
	case 1:
		logrus.Debugf("Matched %s", matches[0])
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w for %s", ErrNoMatch, pattern)
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w for %s: %v", ErrMultipleMatches, pattern, matches)
	}
}
