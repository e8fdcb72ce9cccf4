// Package framework owns the installer's application state: either a fresh
// install built from configuration, or state rehydrated from the metadata
// artifact a previous run left beside the executable.
package framework

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"liftoff/internal/config"
)

// MetadataFile is the artifact checked for beside the executable. Its
// presence alone selects rehydrate over fresh.
const MetadataFile = "metadata.json"

// LocalPackage records one package a previous run installed. The artifact
// schema is shared with the task pipeline; fields not needed here survive
// round-trips untouched via Extra.
type LocalPackage struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Files   []string        `json:"files,omitempty"`
	Extra   json.RawMessage `json:"extra,omitempty"`
}

// Database is the persisted portion of the framework state.
type Database struct {
	SessionID   string         `json:"session_id"`
	InstallPath string         `json:"install_path"`
	Packages    []LocalPackage `json:"packages"`
}

// Framework is the single in-memory application state value. It is built
// exactly once at startup and afterwards only touched through a Handle.
type Framework struct {
	Config       *config.Config
	Database     Database
	FreshInstall bool
}

// New builds fresh state from configuration.
func New(cfg *config.Config) *Framework {
	return &Framework{
		Config: cfg,
		Database: Database{
			SessionID: uuid.NewString(),
		},
		FreshInstall: true,
	}
}

// FromDatabase rehydrates state from the metadata artifact in dir. A
// present-but-unparseable artifact is an error; the caller must not continue
// past it.
func FromDatabase(cfg *config.Config, dir string) (*Framework, error) {
	path := filepath.Join(dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if db.SessionID == "" {
		db.SessionID = uuid.NewString()
	}

	return &Framework{
		Config:       cfg,
		Database:     db,
		FreshInstall: false,
	}, nil
}

// Bootstrap selects fresh or rehydrated state based on artifact presence in
// dir. Runs exactly once, synchronously, with no retries.
func Bootstrap(cfg *config.Config, dir string) (*Framework, error) {
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err != nil {
		if os.IsNotExist(err) {
			return New(cfg), nil
		}
		return nil, fmt.Errorf("stat metadata: %w", err)
	}
	return FromDatabase(cfg, dir)
}
