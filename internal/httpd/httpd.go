// ABOUTME: HTTP video sink serving MJPEG streams pulled from the frame relay
// ABOUTME: Multipart stream, JPEG snapshot, and websocket frame push endpoints
// Package httpd exposes the camera over HTTP. Every endpoint is a pull
// consumer of the frame rendezvous: frames are acquired one at a time and
// the borrowed buffer is only touched between Acquire and Release.
package httpd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/bridge"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const streamBoundary = "frame"

// FrameSource is the pull side of the rendezvous channel.
type FrameSource interface {
	// Acquire blocks until the producer delivers a frame. The frame's Data
	// is only valid until Release.
	Acquire(ctx context.Context) (bridge.Frame, error)

	// Release returns the frame buffer to the producer.
	Release()
}

// Config holds HTTP sink configuration.
type Config struct {
	Port int
	Name string
}

// Server serves the video endpoints.
type Server struct {
	config Config
	frames FrameSource

	mux        *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader

	// The relay supports one consumer at a time, so concurrent clients
	// take turns: each gets every Nth frame.
	pullMu sync.Mutex

	clients atomic.Int64
}

// NewServer creates the HTTP sink.
func NewServer(config Config, frames FrameSource) *Server {
	s := &Server{
		config: config,
		frames: frames,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.mux.HandleFunc("/stream", s.handleStream)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: s.mux,
	}

	return s
}

// Start begins serving in the background.
func (s *Server) Start() error {
	log.Printf("HTTP sink listening on :%d", s.config.Port)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Clients returns the number of connected stream clients.
func (s *Server) Clients() int64 {
	return s.clients.Load()
}

// pullFrame serializes one Acquire/Release window and runs fn inside it.
func (s *Server) pullFrame(ctx context.Context, fn func(bridge.Frame) error) error {
	s.pullMu.Lock()
	defer s.pullMu.Unlock()

	frame, err := s.frames.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.frames.Release()

	return fn(frame)
}

// handleStream serves a multipart MJPEG stream until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	clientID := uuid.New().String()[:8]
	s.clients.Add(1)
	defer s.clients.Add(-1)
	log.Printf("Stream client %s connected from %s", clientID, r.RemoteAddr)
	defer log.Printf("Stream client %s disconnected", clientID)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")

	for {
		err := s.pullFrame(r.Context(), func(frame bridge.Frame) error {
			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\nX-Frame-Sequence: %d\r\n\r\n",
				streamBoundary, len(frame.Data), frame.Sequence); err != nil {
				return err
			}
			if _, err := w.Write(frame.Data); err != nil {
				return err
			}
			_, err := fmt.Fprint(w, "\r\n")
			return err
		})
		if err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleSnapshot serves a single frame.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := s.pullFrame(ctx, func(frame bridge.Frame) error {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(frame.Data)))
		_, err := w.Write(frame.Data)
		return err
	})
	if err != nil {
		http.Error(w, "no frame available", http.StatusServiceUnavailable)
	}
}

// handleWS pushes binary JPEG frames over a websocket.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()[:8]
	s.clients.Add(1)
	defer s.clients.Add(-1)
	log.Printf("Websocket client %s connected from %s", clientID, r.RemoteAddr)
	defer log.Printf("Websocket client %s disconnected", clientID)

	// Reads are discarded; the socket is one-way. The read loop notices
	// the peer closing.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		err := s.pullFrame(ctx, func(frame bridge.Frame) error {
			return conn.WriteMessage(websocket.BinaryMessage, frame.Data)
		})
		if err != nil {
			return
		}
	}
}
