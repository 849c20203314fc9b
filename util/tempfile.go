// util/tempfile.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/mmp/apsched/log"
)

type TempFileRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{} // set of registered paths
}

// MakeTempFileRegistry tracks scratch files (MPS exports, solver solution
// files) so that an interrupted solve doesn't leave them behind.
func MakeTempFileRegistry(lg *log.Logger) *TempFileRegistry {
	r := &TempFileRegistry{
		paths: make(map[string]struct{}),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		lg.Infof("interrupted, removing %d scratch file(s)", len(r.paths))
		r.RemoveAll()
		os.Exit(0)
	}()

	return r
}

func (t *TempFileRegistry) RegisterPath(path string) {
	t.mu.Lock()
	t.paths[path] = struct{}{}
	t.mu.Unlock()
}

func (t *TempFileRegistry) RemoveAllPrefix(prefix string) {
	t.mu.Lock()
	for path := range t.paths {
		if strings.HasPrefix(path, prefix) {
			os.Remove(path) // ignore errors
			delete(t.paths, path)
		}
	}
	t.mu.Unlock()
}

func (t *TempFileRegistry) RemoveAll() {
	t.mu.Lock()
	for path := range t.paths {
		os.RemoveAll(path) // ignore errors; removes registered directories too
	}
	clear(t.paths)
	t.mu.Unlock()
}
