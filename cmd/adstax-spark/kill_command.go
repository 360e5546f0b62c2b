package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velocidi/adstax-spark-job-manager/internal/history"
)

func newKillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <submission-id>",
		Short: "Kill a running or queued submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dispatcherClient()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resp, err := client.Kill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("dispatcher refused kill for %s: %s", args[0], resp.Message)
			}

			ctx.recordHistory(cmd.Context(), logger, history.Entry{
				SubmissionID: args[0],
				Action:       history.ActionKill,
				Detail:       resp.Message,
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Kill request accepted for %s\n", args[0])
			if strings.TrimSpace(resp.Message) != "" {
				fmt.Fprintln(out, resp.Message)
			}
			return nil
		},
	}
}
