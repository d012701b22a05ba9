package migrate

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks that every .sql file in dir follows the
// <YYYYMMDDHHMMSS>_<name>.sql convention and that no two files share a
// version prefix.
func ValidateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	var bad []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			bad = append(bad, name)
			continue
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s: %s and %s", version, prev, name)
		}
		seen[version] = name
	}

	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("invalid migration filenames: %s", strings.Join(bad, ", "))
	}
	return nil
}
