// Package kwsserver exposes a keyword-spotting pipeline over WebSocket.
//
// Each binary message a client sends is one clip of little-endian PCM16
// mono audio at the pipeline sample rate. The server replies to every clip
// with one text message: the JSON-encoded kws.ClipReport, or
// {"error": "..."} if the clip could not be classified. Replies arrive in
// the order clips were sent.
//
// A pipeline is not safe for concurrent use, so the server classifies one
// clip at a time across all connections.
package kwsserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/haivivi/kws/pkg/audio/pcm"
	"github.com/haivivi/kws/pkg/kws"
)

// DefaultReadLimit bounds the size of one clip message (about 5 minutes of
// 16 kHz audio).
const DefaultReadLimit = 10 << 20

// Classifier turns one clip into a report. *kws.Pipeline implements it.
type Classifier interface {
	Report(ctx context.Context, name string, index int, buf pcm.Buffer) (kws.ClipReport, error)
}

var _ Classifier = (*kws.Pipeline)(nil)

// ErrorReply is sent in place of a report when a clip fails.
type ErrorReply struct {
	Error string `json:"error"`
}

// Server is an http.Handler that upgrades requests to WebSocket and
// classifies the clips sent over them.
type Server struct {
	classifier Classifier
	rate       int
	readLimit  int64
	sink       func(context.Context, kws.ClipReport) error
	logger     *slog.Logger
	upgrader   websocket.Upgrader

	mu sync.Mutex // serializes classifier use
}

// Option configures a Server.
type Option func(*Server)

// WithSampleRate sets the rate incoming clips are tagged with
// (default pcm.DefaultSampleRate).
func WithSampleRate(rate int) Option {
	return func(s *Server) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

// WithReadLimit sets the maximum clip message size in bytes.
func WithReadLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.readLimit = n
		}
	}
}

// WithSink sets a function called with every successful report before it
// is sent, for example resultstore.Store.Save. A sink error is logged and
// does not fail the reply.
func WithSink(fn func(context.Context, kws.ClipReport) error) Option {
	return func(s *Server) {
		s.sink = fn
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server around c.
func New(c Classifier, opts ...Option) *Server {
	s := &Server{
		classifier: c,
		rate:       pcm.DefaultSampleRate,
		readLimit:  DefaultReadLimit,
		logger:     slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("kwsserver: upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.readLimit)

	log := s.logger.With("remote", r.RemoteAddr)
	log.Info("kwsserver: client connected")

	ctx := r.Context()
	for index := 0; ; {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("kwsserver: client disconnected", "clips", index)
			} else {
				log.Warn("kwsserver: read failed", "clips", index, "error", err)
			}
			return
		}

		var reply any
		if typ != websocket.BinaryMessage {
			reply = ErrorReply{Error: "expected a binary PCM16 message"}
		} else {
			report, err := s.classify(ctx, index, data)
			if err != nil {
				log.Warn("kwsserver: clip failed", "clip", index, "error", err)
				reply = ErrorReply{Error: err.Error()}
			} else {
				reply = report
			}
			index++
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("kwsserver: write failed", "error", err)
			return
		}
	}
}

func (s *Server) classify(ctx context.Context, index int, data []byte) (kws.ClipReport, error) {
	buf, err := pcm.FromBytes(data, s.rate)
	if err != nil {
		return kws.ClipReport{}, err
	}

	s.mu.Lock()
	report, err := s.classifier.Report(ctx, "ws-"+strconv.Itoa(index), index, buf)
	s.mu.Unlock()
	if err != nil {
		return kws.ClipReport{}, err
	}

	if s.sink != nil {
		if err := s.sink(ctx, report); err != nil {
			s.logger.Error("kwsserver: sink failed", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

// ListenAndServe serves s at path on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr, path string, s *Server) error {
	mux := http.NewServeMux()
	mux.Handle(path, s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("kwsserver: listening", "addr", addr, "path", path)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("kwsserver: %w", err)
	case <-ctx.Done():
		if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
