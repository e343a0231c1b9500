package garchive

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

const (
	stateIdle int32 = iota
	stateLoading
	stateReady
)

// Lazy is a set of package files registered under one identifier and read
// on first access. Files are merged in registration order, so a later file
// overrides same-named entries of an earlier one.
type Lazy struct {
	mu    sync.Mutex
	paths []string

	once    sync.Once
	state   atomic.Int32
	archive *Archive
	err     error
}

// NewLazy returns a set holding paths.
func NewLazy(paths ...string) *Lazy {
	return &Lazy{paths: append([]string(nil), paths...)}
}

// Add registers another file. Files added after the first access are not
// loaded.
func (l *Lazy) Add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Load() != stateIdle {
		log.Warn().Str("file", path).Msg("archive already loaded; overlay ignored")
		return
	}
	l.paths = append(l.paths, path)
}

// Paths returns the registered files.
func (l *Lazy) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

// Loaded reports whether the files have been read.
func (l *Lazy) Loaded() bool {
	return l.state.Load() == stateReady
}

// Archive loads the files on first call and returns the merged archive.
// Concurrent first callers block until the single load finishes.
func (l *Lazy) Archive() (*Archive, error) {
	l.once.Do(l.load)
	return l.archive, l.err
}

func (l *Lazy) load() {
	l.mu.Lock()
	l.state.Store(stateLoading)
	paths := append([]string(nil), l.paths...)
	l.mu.Unlock()

	defer l.state.Store(stateReady)

	a := New()
	for _, p := range paths {
		if err := a.LoadFile(p); err != nil {
			l.err = err
			return
		}
		log.Debug().Str("file", p).Int("entries", a.Len()).Msg("archive loaded")
	}
	l.archive = a
}
