package s57

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindUpdateFiles discovers the sequential update files for a base cell.
//
// Given ".../GB5X01SW.000", it looks for "GB5X01SW.001", "GB5X01SW.002",
// etc. in the same directory and returns the paths that exist, in order.
// Updates must be contiguous per S-57 Part 3 §8.3.2.1: the search stops at
// the first missing number rather than skipping gaps.
func FindUpdateFiles(basePath string) ([]string, error) {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var updates []string
	for n := 1; n <= 999; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s.%03d", stem, n))
		if _, err := os.Stat(candidate); err == nil {
			updates = append(updates, candidate)
		} else if os.IsNotExist(err) {
			break
		} else {
			return nil, fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
	return updates, nil
}
