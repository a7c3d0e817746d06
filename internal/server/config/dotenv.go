package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DotenvFile is read by LoadConfig before the environment is consulted.
const DotenvFile = ".env"

// loadDotenv copies variables from path into the process environment
// without overriding ones that are already set. A missing file is not an
// error.
func loadDotenv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
