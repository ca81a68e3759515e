package source

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/deepteams/tsplay/internal/pool"
	"github.com/deepteams/tsplay/player"
)

// HTTPSource progressively downloads a .ts file over plain HTTP,
// forwarding each chunk to the demuxer as it arrives rather than
// waiting for the full response body. No pack dependency covers
// chunked HTTP download better than the standard library's net/http,
// so this source is the one place in player/source built on stdlib
// alone.
type HTTPSource struct {
	URL       string
	Log       zerolog.Logger
	ChunkSize int

	mu          sync.Mutex
	dest        player.SourceDestination
	body        io.ReadCloser
	stopCh      chan struct{}
	established atomic.Bool
	completed   atomic.Bool
	total       atomic.Int64
	read        atomic.Int64
}

// NewHTTPSource creates a progressive source for url. chunkSize <= 0
// uses a 64KiB default read size.
func NewHTTPSource(url string, chunkSize int, log zerolog.Logger) *HTTPSource {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	return &HTTPSource{URL: url, ChunkSize: chunkSize, Log: log, stopCh: make(chan struct{})}
}

func (s *HTTPSource) Connect(dest player.SourceDestination) {
	s.mu.Lock()
	s.dest = dest
	s.mu.Unlock()
}

func (s *HTTPSource) Start() error {
	resp, err := http.Get(s.URL)
	if err != nil {
		return err
	}
	if resp.ContentLength > 0 {
		s.total.Store(resp.ContentLength)
	} else if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			s.total.Store(n)
		}
	}
	s.body = resp.Body
	s.established.Store(true)
	go s.run()
	return nil
}

func (s *HTTPSource) run() {
	defer func() {
		s.completed.Store(true)
		_ = s.body.Close()
	}()
	buf := pool.Get(s.ChunkSize)
	defer pool.Put(buf)
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		n, err := s.body.Read(buf)
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
		if err != nil {
			if err != io.EOF {
				s.Log.Warn().Err(err).Str("url", s.URL).Msg("http download ended with error")
			}
			return
		}
	}
}

// Resume is a no-op: HTTP download rate is governed by the server and
// TCP flow control, not by the player.
func (s *HTTPSource) Resume(headroomSeconds float64) {}

func (s *HTTPSource) Destroy() {
	close(s.stopCh)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.body != nil {
		_ = s.body.Close()
	}
}

func (s *HTTPSource) Established() bool { return s.established.Load() }
func (s *HTTPSource) Completed() bool   { return s.completed.Load() }

func (s *HTTPSource) Progress() float64 {
	total := s.total.Load()
	if total <= 0 {
		return 0
	}
	p := float64(s.read.Load()) / float64(total)
	if p > 1 {
		p = 1
	}
	return p
}
