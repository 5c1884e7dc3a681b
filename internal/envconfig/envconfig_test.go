package envconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		k := k
		t.Cleanup(func() { os.Unsetenv(k) })
	}
}

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"FOODLOG_DATASET", "FOODLOG_STORE", "FOODLOG_LOG_LEVEL", "FOODLOG_BADGER_DIR"} {
		t.Setenv(k, "")
	}

	env, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if env.Dataset != "" {
		t.Errorf("Expected empty dataset, got %q", env.Dataset)
	}
	if env.Store != StoreNone {
		t.Errorf("Expected store %q, got %q", StoreNone, env.Store)
	}
	if env.LogLevel != "info" {
		t.Errorf("Expected log level info, got %q", env.LogLevel)
	}
	if env.BadgerDir != "foodlog-journal" {
		t.Errorf("Expected default badger dir, got %q", env.BadgerDir)
	}
}

func TestFromEnvInvalidStore(t *testing.T) {
	t.Setenv("FOODLOG_STORE", "postgres")
	if _, err := FromEnv(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "FOODLOG_TABLES=tables.yaml\nFOODLOG_STORE=SQLite\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("FOODLOG_TABLES")
	os.Unsetenv("FOODLOG_STORE")
	unsetAfter(t, "FOODLOG_TABLES", "FOODLOG_STORE")

	env, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if env.Tables != "tables.yaml" {
		t.Errorf("Expected tables.yaml, got %q", env.Tables)
	}
	if env.Store != StoreSQLite {
		t.Errorf("Expected sqlite store, got %q", env.Store)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Missing env file should be ignored, got %v", err)
	}
}
