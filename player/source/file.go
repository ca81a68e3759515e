package source

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/deepteams/tsplay/internal/pool"
	"github.com/deepteams/tsplay/player"
)

// FileSource reads a local .ts file from disk. When the file is still
// growing (a capture in progress, or a simulated live feed written to
// disk), it watches the file with fsnotify and resumes reading on
// write events instead of reporting end-of-file, per §6's "full file"
// source kind and §12's local-file-follow supplement.
type FileSource struct {
	Path   string
	Follow bool
	Log    zerolog.Logger

	mu          sync.Mutex
	dest        player.SourceDestination
	file        *os.File
	watcher     *fsnotify.Watcher
	stopCh      chan struct{}
	established atomic.Bool
	completed   atomic.Bool
	size        atomic.Int64
	read        atomic.Int64
}

// NewFileSource opens path for reading. When follow is true, the
// source keeps watching path for further writes instead of reporting
// Completed() once the current end-of-file is reached.
func NewFileSource(path string, follow bool, log zerolog.Logger) *FileSource {
	return &FileSource{Path: path, Follow: follow, Log: log, stopCh: make(chan struct{})}
}

func (s *FileSource) Connect(dest player.SourceDestination) {
	s.mu.Lock()
	s.dest = dest
	s.mu.Unlock()
}

func (s *FileSource) Start() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	s.file = f
	if info, err := f.Stat(); err == nil {
		s.size.Store(info.Size())
	}

	var w *fsnotify.Watcher
	if s.Follow {
		w, err = fsnotify.NewWatcher()
		if err != nil {
			s.Log.Warn().Err(err).Msg("fsnotify unavailable, falling back to one-shot read")
		} else if err := w.Add(s.Path); err != nil {
			s.Log.Warn().Err(err).Msg("fsnotify watch failed, falling back to one-shot read")
			_ = w.Close()
			w = nil
		}
	}
	s.watcher = w

	s.established.Store(true)
	go s.run()
	return nil
}

func (s *FileSource) run() {
	s.drain()
	if s.watcher == nil {
		s.completed.Store(true)
		return
	}
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				s.completed.Store(true)
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.drain()
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Source file replaced out from under us (log rotation,
				// restarted capture): the transport stream effectively
				// ends here.
				s.completed.Store(true)
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.Log.Warn().Err(err).Msg("fsnotify watch error")
		case <-s.stopCh:
			return
		}
	}
}

// drain reads everything newly appended to the file since the last
// call, forwarding it to the demuxer.
func (s *FileSource) drain() {
	buf := pool.Get(pool.Size64K)
	defer pool.Put(buf)
	for {
		n, err := s.file.Read(buf)
		if n > 0 {
			s.read.Add(int64(n))
			s.mu.Lock()
			dest := s.dest
			s.mu.Unlock()
			if dest != nil {
				if werr := dest.Write(buf[:n]); werr != nil {
					s.Log.Warn().Err(werr).Msg("ts payload rejected by demuxer")
				}
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			s.Log.Warn().Err(err).Msg("file read error")
			return
		}
		if info, serr := s.file.Stat(); serr == nil {
			s.size.Store(info.Size())
		}
	}
}

// Resume is a no-op: a local file has no flow control to apply.
func (s *FileSource) Resume(headroomSeconds float64) {}

func (s *FileSource) Destroy() {
	close(s.stopCh)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.file != nil {
		_ = s.file.Close()
	}
}

func (s *FileSource) Established() bool { return s.established.Load() }
func (s *FileSource) Completed() bool   { return s.completed.Load() }

// Progress reports bytes read over the last observed file size, 0 if
// the size is not yet known.
func (s *FileSource) Progress() float64 {
	size := s.size.Load()
	if size <= 0 {
		return 0
	}
	p := float64(s.read.Load()) / float64(size)
	if p > 1 {
		p = 1
	}
	return p
}
