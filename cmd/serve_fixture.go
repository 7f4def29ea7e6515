package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/choosedb/internal/fixture"
	"github.com/abhisek/choosedb/internal/logger"
)

var serveFixtureCmd = &cobra.Command{
	Use:   "serve-fixture",
	Short: "Serve a local fake recommendation backend from a YAML fixture",
	Long: "serve-fixture runs the questions and recommend endpoints locally. " +
		"Point choosedb at it with --base-url http://localhost:8089.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := logger.New(logger.Config{
			Level:      cfg.LogLevel,
			Encoding:   "console",
			OutputPath: cfg.LogFile,
		})
		if err != nil {
			return err
		}
		defer log.Sync()

		path, _ := cmd.Flags().GetString("file")
		var f *fixture.Fixture
		if path == "" {
			f, err = fixture.Default()
		} else {
			f, err = fixture.Load(path)
		}
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		return fixture.NewServer(f, log).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveFixtureCmd.Flags().String("file", "", "Fixture YAML file (default: built-in fixture)")
	serveFixtureCmd.Flags().String("addr", ":8089", "Listen address")
}
