// Package envconfig reads CLI defaults from the environment and an
// optional .env file.
package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

// Journal backends.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
)

// Env holds the settings the CLIs take from the environment. Flags override
// every field.
type Env struct {
	Dataset   string // FOODLOG_DATASET: reference CSV
	DB        string // FOODLOG_DB: sqlite database (foods table and journal)
	Tables    string // FOODLOG_TABLES
	Stoplist  string // FOODLOG_STOPLIST
	Lexicon   string // FOODLOG_LEXICON
	Store     string // FOODLOG_STORE: none, memory, sqlite or badger
	BadgerDir string // FOODLOG_BADGER_DIR
	LogLevel  string // FOODLOG_LOG_LEVEL
}

// Load reads the given .env files (".env" when none are named) into the
// process environment without overriding variables already set, then
// returns the resulting Env. Missing files are not an error.
func Load(files ...string) (*Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w: %v", internalerr.ErrInvalidConfig, err)
	}
	return FromEnv()
}

// FromEnv builds an Env from the current process environment.
func FromEnv() (*Env, error) {
	env := &Env{
		Dataset:   os.Getenv("FOODLOG_DATASET"),
		DB:        os.Getenv("FOODLOG_DB"),
		Tables:    os.Getenv("FOODLOG_TABLES"),
		Stoplist:  os.Getenv("FOODLOG_STOPLIST"),
		Lexicon:   os.Getenv("FOODLOG_LEXICON"),
		Store:     strings.ToLower(getEnvWithDefault("FOODLOG_STORE", StoreNone)),
		BadgerDir: getEnvWithDefault("FOODLOG_BADGER_DIR", "foodlog-journal"),
		LogLevel:  getEnvWithDefault("FOODLOG_LOG_LEVEL", "info"),
	}

	switch env.Store {
	case StoreNone, StoreMemory, StoreSQLite, StoreBadger:
	default:
		return nil, fmt.Errorf("FOODLOG_STORE %q: %w", env.Store, internalerr.ErrInvalidConfig)
	}
	return env, nil
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
