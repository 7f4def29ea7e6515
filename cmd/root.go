package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/app"
	"github.com/abhisek/choosedb/internal/backend"
	"github.com/abhisek/choosedb/internal/config"
	"github.com/abhisek/choosedb/internal/logger"
	"github.com/abhisek/choosedb/internal/screens/survey"
	"github.com/abhisek/choosedb/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "choosedb",
	Short: "Find the right database for your project",
	Long: "choosedb asks a few questions about your data and workload, sends the answers " +
		"to a recommendation service and shows the databases that fit best.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		scr := survey.New(survey.Options{
			Backend:     rt.backend(),
			Submissions: rt.submissions(),
			Logger:      rt.logger,
			RequestName: rt.cfg.RequestName,
			Timeout:     rt.cfg.CallTimeout(),
		})
		return app.Run(scr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "Recommendation service URL (overrides CHOOSEDB_BASE_URL)")
	pf.String("db", "", "Path to SQLite history file (overrides CHOOSEDB_DB)")
	pf.String("log-file", "", "Log file path (overrides CHOOSEDB_LOG_FILE)")
	pf.String("env-file", "", "Load environment variables from this dotenv file")
	pf.Bool("no-history", false, "Do not record requests or submissions")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveFixtureCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtime holds what every command needs: configuration, a logger and the
// optional history store.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.LogFile = v
	}
	if v, _ := cmd.Flags().GetBool("no-history"); v {
		cfg.History = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads configuration, opens the log file and, when history is
// enabled, the history store. Logs go to a file so they never draw over
// the terminal UI.
func setup(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logPath := cfg.LogFile
	if logPath == "" {
		if logPath, err = config.DefaultLogPath(); err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
	} else if err := config.EnsureDir(logPath); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: logPath,
	})
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: log}
	if !cfg.History {
		return rt, nil
	}

	st, err := openStore(cfg)
	if err != nil {
		// History is optional; carry on without it.
		log.Warn("history disabled", zap.Error(err))
		return rt, nil
	}
	rt.store = st
	return rt, nil
}

// openStore resolves the database path and opens the store.
func openStore(cfg config.Config) (*store.Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		var err error
		if dbPath, err = config.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	} else if err := config.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func (rt *runtime) backend() backend.Client {
	var events store.EventRepo
	if rt.store != nil {
		events = rt.store.EventRepo()
	}
	return backend.New(rt.cfg, rt.logger, events)
}

func (rt *runtime) submissions() store.SubmissionRepo {
	if rt.store == nil {
		return nil
	}
	return rt.store.SubmissionRepo()
}

func (rt *runtime) Close() {
	if rt.store != nil {
		rt.store.Close()
	}
	_ = rt.logger.Sync()
}
