package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abhisek/choosedb/internal/app"
	"github.com/abhisek/choosedb/internal/screens/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.store == nil {
			return errors.New("history is disabled or the history database could not be opened")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		return app.Run(history.New(rt.store.SubmissionRepo(), limit))
	},
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "Maximum number of submissions to list")
}
