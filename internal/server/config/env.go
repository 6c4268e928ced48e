package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// dotenvFiles lists the files read by parseEnv before the process
// environment is consulted. Missing files are skipped.
var dotenvFiles = []string{".env"}

// parseEnv overlays AUTHKEEPER_* environment variables onto config. Variables
// from .env never override ones already present in the environment. Invalid
// values panic, like the other sources.
func parseEnv(config *Config) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
