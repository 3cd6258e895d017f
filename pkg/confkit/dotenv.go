package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads environment variables from a .env file. ENV_FILE names
// an explicit file; otherwise every .env between this package and the module
// root is tried. Existing variables win unless DOTENV_OVERLOAD=1 is set, and
// NO_DOTENV=1 skips loading entirely.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}
	if dir, ok := sourceDir(); ok {
		walkToRoot(dir, func(d string) { _ = load(filepath.Join(d, ".env")) })
		return
	}
	_ = load(".env")
}
