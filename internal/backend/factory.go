package backend

import (
	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/config"
	"github.com/abhisek/choosedb/internal/store"
)

// New creates the HTTP backend client from configuration, wrapped with
// logging and retry middleware. eventRepo may be nil.
func New(cfg config.Config, logger *zap.Logger, eventRepo store.EventRepo) Client {
	base := NewHTTPClient(Options{
		QuestionsURL: cfg.QuestionsURL(),
		RecommendURL: cfg.RecommendURL(),
		DefaultMode:  cfg.Mode(),
		Timeout:      cfg.Timeout,
	}, logger)

	// caller → retry → logging → base
	logged := WithLogging(base, logger, eventRepo)
	return WithRetry(logged, cfg.Retry, logger)
}
