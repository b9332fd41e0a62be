package internal

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Every program in the repository reads its settings from the process environment. Values can also be
// placed in a dotenv file with this name in the working directory (cli/envgen generates one with defaults).
const DOTENV_FILENAME = ".env"

var dotenvOnce sync.Once
var dotenvErr error

// This function loads the dotenv file (once per process) and parses the environment into cfg using its
// `env` struct tags. A missing dotenv file is not an error; variables that are already set in the
// environment take precedence over the file.
func LoadConfig[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		err := godotenv.Load(DOTENV_FILENAME)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			dotenvErr = err
		}
	})
	if dotenvErr != nil {
		return dotenvErr
	}
	return env.Parse(cfg)
}
