package framework

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Readers must be able to hold the lock simultaneously. Every reader parks
// inside its critical section until all readers have arrived; if readers
// excluded one another this would deadlock instead of completing.
func TestHandle_ConcurrentReadersDoNotBlock(t *testing.T) {
	const readers = 8

	h := NewHandle(New(testConfig(t)))

	var arrived sync.WaitGroup
	arrived.Add(readers)
	release := make(chan struct{})
	done := make(chan struct{})

	for i := 0; i < readers; i++ {
		go func() {
			h.Read(func(*Framework) {
				arrived.Done()
				<-release
			})
		}()
	}

	go func() {
		arrived.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("readers blocked one another")
	}
	close(release)
}

// A writer must be fully serialized against all other access: no reader may
// observe the database with the path set but the package list not yet
// updated (or vice versa).
func TestHandle_WritesAreAtomicToReaders(t *testing.T) {
	h := NewHandle(New(testConfig(t)))

	const rounds = 200
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			h.Write(func(f *Framework) {
				f.Database.InstallPath = "/opt/aurora"
				f.Database.Packages = []LocalPackage{{Name: "Aurora Core"}}
				f.Database.InstallPath = ""
				f.Database.Packages = nil
			})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				h.Read(func(f *Framework) {
					pathSet := f.Database.InstallPath != ""
					pkgSet := len(f.Database.Packages) != 0
					assert.Equal(t, pathSet, pkgSet, "torn write observed")
				})
			}
		}()
	}

	wg.Wait()

	h.Read(func(f *Framework) {
		require.Empty(t, f.Database.InstallPath)
		require.Empty(t, f.Database.Packages)
	})
}
