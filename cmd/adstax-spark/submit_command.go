package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velocidi/adstax-spark-job-manager/internal/dispatcher"
	"github.com/velocidi/adstax-spark-job-manager/internal/history"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var mainClass string
	var sparkConf []string
	var envVars []string

	cmd := &cobra.Command{
		Use:   "submit <app-resource> [app-args...]",
		Short: "Submit a Spark driver to the cluster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dispatcherClient()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			properties, err := parseKeyValues(sparkConf, "--conf")
			if err != nil {
				return err
			}
			environment, err := parseKeyValues(envVars, "--env")
			if err != nil {
				return err
			}

			resp, err := client.Submit(cmd.Context(), dispatcher.SubmitRequest{
				AppResource:          args[0],
				MainClass:            mainClass,
				AppArgs:              args[1:],
				SparkProperties:      properties,
				EnvironmentVariables: environment,
			})
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("dispatcher rejected submission: %s", resp.Message)
			}

			ctx.recordHistory(cmd.Context(), logger, history.Entry{
				SubmissionID: resp.SubmissionID,
				Action:       history.ActionSubmit,
				State:        string(dispatcher.StateQueued),
				Detail:       args[0],
			})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted %s\n", resp.SubmissionID)
			if strings.TrimSpace(resp.Message) != "" {
				fmt.Fprintln(out, resp.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mainClass, "class", "", "Main class of the application")
	cmd.Flags().StringArrayVar(&sparkConf, "conf", nil, "Spark property as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&envVars, "env", nil, "Environment variable as key=value (repeatable)")
	return cmd
}

func parseKeyValues(pairs []string, flag string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%s expects key=value, got %q", flag, pair)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}
