// Package output writes emitted artifacts under the destination root.
//
// Writes are idempotent, not incremental: every artifact is written
// unconditionally, overwriting whatever is there. Distinct destination
// files may be written concurrently, but each path is written by
// exactly one goroutine, so no file ever sees interleaved partial
// writes. On failure the batch stops handing out new work and the
// result records which artifacts had already been written, so the
// caller can report partial output honestly.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joshuapare/regkit/regmap/emit"
)

// IOError reports a failed artifact write.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Result records what a write batch accomplished.
type Result struct {
	// Written lists the artifact paths successfully written, sorted.
	Written []string
}

// Write writes every artifact under root using up to workers
// concurrent writers. The first failure aborts the remainder of the
// batch; the returned Result still lists everything written before the
// failure.
func Write(root string, artifacts []emit.Artifact, workers int) (Result, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return Result{}, &IOError{Path: root, Err: err}
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > len(artifacts) {
		workers = len(artifacts)
	}

	var (
		mu      sync.Mutex
		written []string
		failed  error
	)

	jobs := make(chan emit.Artifact)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				err := writeOne(root, a)
				mu.Lock()
				if err != nil {
					if failed == nil {
						failed = err
					}
				} else {
					written = append(written, a.Path)
				}
				mu.Unlock()
			}
		}()
	}

	for _, a := range artifacts {
		mu.Lock()
		stop := failed != nil
		mu.Unlock()
		if stop {
			break
		}
		jobs <- a
	}
	close(jobs)
	wg.Wait()

	sort.Strings(written)
	return Result{Written: written}, failed
}

func writeOne(root string, a emit.Artifact) error {
	dest := filepath.Join(root, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &IOError{Path: a.Path, Err: err}
	}
	if err := os.WriteFile(dest, a.Content, 0o644); err != nil {
		return &IOError{Path: a.Path, Err: err}
	}
	return nil
}
