package dotdir

import (
	"os"
	"path/filepath"
	"strings"
)

// dbFileName is the default name of the SQLite database file.
const dbFileName = "engram.db"

// ResolveDBPath resolves the path to the SQLite database file backing the
// long-term store. Order of precedence:
//  1. Provided override (--db flag or storage.path config)
//  2. ENGRAM_SQLITE or ENGRAM_DB environment variables
//  3. First existing file among the well-known candidate locations
//  4. Default: engram.db inside the resolved .engram/ directory, which is
//     created on demand so first runs work without setup
func ResolveDBPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("ENGRAM_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("ENGRAM_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range dbCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	target, err := NewManager().Target("")
	if err != nil {
		return "", err
	}

	return filepath.Join(target, dbFileName), nil
}

func dbCandidates() []string {
	candidates := []string{
		"engram.db",
		"engram.sqlite",
		filepath.Join(dirName, "engram.db"),
		filepath.Join(dirName, "engram.sqlite"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, dirName, "engram.db"),
			filepath.Join(home, dirName, "engram.sqlite"),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "engram", "engram.db"),
			filepath.Join(xdgHome, "engram", "engram.sqlite"),
		}, candidates...)
	}

	return candidates
}
