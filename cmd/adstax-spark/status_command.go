package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velocidi/adstax-spark-job-manager/internal/history"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <submission-id>",
		Short: "Show the dispatcher state of a submission",
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

			resp, err := client.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			ctx.recordHistory(cmd.Context(), logger, history.Entry{
				SubmissionID: args[0],
				Action:       history.ActionStatus,
				State:        string(resp.DriverState),
			})

			rows := [][]string{
				{"Submission", args[0]},
				{"State", string(resp.DriverState)},
			}
			if strings.TrimSpace(resp.Message) != "" {
				rows = append(rows, []string{"Message", strings.TrimSpace(resp.Message)})
			}
			if strings.TrimSpace(resp.ServerSparkVersion) != "" {
				rows = append(rows, []string{"Spark", resp.ServerSparkVersion})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows))
			return nil
		},
	}
}
