package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/choosedb/internal/prompt"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer the questionnaire with line prompts instead of the full-screen UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		accessible, _ := cmd.Flags().GetBool("accessible")
		_, err = prompt.Run(cmd.Context(), prompt.Options{
			Backend: rt.backend(),
			Asker: &prompt.HuhAsker{
				Accessible: accessible,
				In:         cmd.InOrStdin(),
				Out:        cmd.OutOrStdout(),
			},
			Out:         cmd.OutOrStdout(),
			Submissions: rt.submissions(),
			Logger:      rt.logger,
			RequestName: rt.cfg.RequestName,
			Timeout:     rt.cfg.CallTimeout(),
		})
		switch {
		case errors.Is(err, prompt.ErrAborted):
			fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
			return nil
		case errors.Is(err, prompt.ErrNoQuestions):
			fmt.Fprintln(cmd.OutOrStdout(), "No questions available.")
			return nil
		}
		return err
	},
}

func init() {
	askCmd.Flags().Bool("accessible", false, "Use plain prompts suitable for screen readers")
}
