package framework

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Handle is the shared, lock-protected reference to the Framework. Every
// control-service handler holds the same *Handle; all access goes through
// Read or Write. Critical sections must not perform network or disk I/O.
type Handle struct {
	mu        sync.RWMutex
	framework *Framework
}

// NewHandle wraps a freshly bootstrapped Framework. After this call the
// Framework must not be touched directly.
func NewHandle(f *Framework) *Handle {
	return &Handle{framework: f}
}

// Read runs fn under the read lock. Concurrent readers do not block each
// other.
func (h *Handle) Read(fn func(*Framework)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.framework)
}

// Write runs fn under the exclusive lock.
func (h *Handle) Write(fn func(*Framework)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.framework)
}

// SaveDatabase persists the install database to the metadata artifact in
// dir. The database is snapshotted under the read lock; marshalling and the
// file write happen outside any critical section.
func (h *Handle) SaveDatabase(dir string) error {
	var snapshot Database
	h.Read(func(f *Framework) {
		snapshot = f.Database
		snapshot.Packages = append([]LocalPackage(nil), f.Database.Packages...)
	})

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(dir, MetadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata %s: %w", path, err)
	}
	return nil
}
