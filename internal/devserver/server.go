// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/jeranaias/chatbot-tui/internal/model"
)

// Frame error messages.
const (
	msgNoJSON    = "No JSON data provided"
	msgNoContent = "No message or files provided"
)

// Option configures a Server.
type Option func(*Server)

// WithResponder replaces the EchoResponder.
func WithResponder(r Responder) Option {
	return func(s *Server) { s.responder = r }
}

// WithChunkDelay pauses between streamed chunks.
func WithChunkDelay(d time.Duration) Option {
	return func(s *Server) { s.chunkDelay = d }
}

// WithCORS replaces DefaultCORSConfig. Nil disables CORS headers.
func WithCORS(cfg *CORSConfig) Option {
	return func(s *Server) { s.cors = cfg }
}

// Server is the development chat backend.
type Server struct {
	engine     *gin.Engine
	responder  Responder
	chunkDelay time.Duration
	cors       *CORSConfig
}

// chatRequest mirrors backend.ChatRequest. Streaming defaults to true when
// the field is absent.
type chatRequest struct {
	Message       string               `json:"message"`
	AttachedFiles []model.PreparedFile `json:"attached_files"`
	Streaming     *bool                `json:"streaming"`
}

type chunk struct {
	Content string `json:"content,omitempty"`
	Type    string `json:"type,omitempty"`
	Error   string `json:"error,omitempty"`
}

// New builds a server with its routes registered.
func New(opts ...Option) *Server {
	s := &Server{responder: EchoResponder{}, cors: DefaultCORSConfig()}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.Writer()))
	r.Use(gin.Recovery())
	if s.cors != nil {
		r.Use(corsMiddleware(s.cors))
	}

	r.GET("/", s.home)
	r.GET("/health", s.health)
	r.POST("/chat", s.chat)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("devserver: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "devserver")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "devserver shutdown")
		}
		return nil
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) home(c *gin.Context) {
	c.String(http.StatusOK, "Hello, world! Chatbot API is running.")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"responder":      fmt.Sprintf("%T", s.responder),
		"file_processor": "ready",
	})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("devserver: bad request: %v", err)
		s.fail(c, req, msgNoJSON)
		return
	}
	if strings.TrimSpace(req.Message) == "" && len(req.AttachedFiles) == 0 {
		s.fail(c, req, msgNoContent)
		return
	}

	prompt := Prompt{Message: req.Message, Files: decodeFiles(req.AttachedFiles)}
	ctx := c.Request.Context()

	if !streaming(req) {
		reply, err := s.responder.Respond(ctx, prompt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, chunk{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": reply})
		return
	}

	s.sseHeaders(c)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	reply, err := s.responder.Respond(ctx, prompt)
	if err != nil {
		writeFrame(c, flusher, chunk{Error: err.Error(), Type: "error"})
		return
	}

	for _, word := range strings.SplitAfter(reply, " ") {
		if word == "" {
			continue
		}
		writeFrame(c, flusher, chunk{Content: word, Type: "chunk"})
		if s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				log.Printf("devserver: client went away mid-stream")
				return
			case <-time.After(s.chunkDelay):
			}
		}
	}
	writeFrame(c, flusher, chunk{Type: "end"})
}

// fail reports a request-level error as an error frame when the client asked
// for a stream, and as a 400 otherwise.
func (s *Server) fail(c *gin.Context, req chatRequest, msg string) {
	if !streaming(req) {
		c.JSON(http.StatusBadRequest, chunk{Error: msg})
		return
	}
	s.sseHeaders(c)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusBadRequest, msg)
		return
	}
	writeFrame(c, flusher, chunk{Error: msg})
}

func (s *Server) sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

func writeFrame(c *gin.Context, flusher http.Flusher, ch chunk) {
	b, err := json.Marshal(ch)
	if err != nil {
		log.Printf("devserver: encode frame: %v", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", b)
	flusher.Flush()
}

func streaming(req chatRequest) bool {
	return req.Streaming == nil || *req.Streaming
}

func decodeFiles(files []model.PreparedFile) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		data, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			log.Printf("devserver: error processing file %s: %v", f.Name, err)
			out = append(out, File{Name: f.Name, Type: f.Type, Err: errors.Wrap(err, "invalid base64")})
			continue
		}
		out = append(out, File{Name: f.Name, Type: f.Type, Data: data})
	}
	return out
}
