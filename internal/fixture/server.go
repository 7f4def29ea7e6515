package fixture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// Server serves a Fixture over the recommendation backend's HTTP API.
type Server struct {
	fixture *Fixture
	logger  *zap.Logger

	mu       sync.Mutex
	failures int
}

// NewServer creates a fixture server.
func NewServer(f *Fixture, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{fixture: f, logger: logger.Named("fixture")}
}

// Router builds the gin engine with both endpoints.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginZapLogger(s.logger))

	r.GET("/questions", s.handleQuestions)
	r.POST("/recommend", s.handleRecommend)
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("fixture server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleQuestions(c *gin.Context) {
	body, err := QuestionsJSON(s.fixture)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build questions"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) handleRecommend(c *gin.Context) {
	if s.shouldFail() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulated failure"})
		return
	}

	var req questionnaire.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	c.JSON(http.StatusOK, s.fixture.Recommend(req))
}

func (s *Server) shouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures < s.fixture.FailRecommend {
		s.failures++
		return true
	}
	return false
}

// QuestionsJSON renders the questions payload with keys in fixture order.
func QuestionsJSON(f *Fixture) ([]byte, error) {
	doc := []byte(`{"questions":{},"answer_choices":{}}`)
	var err error
	for _, q := range f.Questions {
		key := escapeKey(q.ID)
		if doc, err = sjson.SetBytes(doc, "questions."+key, q.Text); err != nil {
			return nil, err
		}
		choices := q.Choices
		if choices == nil {
			choices = []string{}
		}
		if doc, err = sjson.SetBytes(doc, "answer_choices."+key, choices); err != nil {
			return nil, err
		}
		if q.Mode != "" && len(q.Choices) > 0 {
			if doc, err = sjson.SetBytes(doc, "selection_modes."+key, q.Mode); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// escapeKey escapes sjson path syntax in an object key.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ginZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request handled", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request handled", fields...)
		default:
			logger.Info("request handled", fields...)
		}
	}
}
