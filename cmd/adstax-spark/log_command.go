package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/velocidi/adstax-spark-job-manager/internal/history"
	"github.com/velocidi/adstax-spark-job-manager/internal/logsession"
	"github.com/velocidi/adstax-spark-job-manager/internal/mesos"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var showStderr bool
	var tailLines int

	cmd := &cobra.Command{
		Use:   "log <submission-id>",
		Short: "Print or follow the logs of a submission",
		Long: `Print the captured stdout (and optionally stderr) of a submission.

Without --follow the current contents are printed once and the command exits.
With --follow the logs stream continuously until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dispatcherClient, err := ctx.dispatcherClient()
			if err != nil {
				return err
			}
			mesosClient, err := ctx.mesosClient()
			if err != nil {
				return err
			}

			lines := tailLines
			if !cmd.Flags().Changed("lines") {
				lines = cfg.Log.TailLines
			}

			session := logsession.New(logsession.Params{
				Dispatcher:    dispatcherClient,
				Locator:       mesos.NewLocator(mesosClient, logger),
				Reader:        mesosClient,
				CaptureDir:    cfg.Log.CaptureDir,
				ChunkSize:     int64(cfg.Log.ChunkSize),
				PollInterval:  cfg.PollInterval(),
				TailInterval:  cfg.TailInterval(),
				QueueInterval: cfg.QueueInterval(),
				TailLines:     lines,
				Stdout:        cmd.OutOrStdout(),
				Stderr:        cmd.ErrOrStderr(),
				Logger:        logger,
			})

			runCtx := cmd.Context()
			if follow {
				var stop context.CancelFunc
				runCtx, stop = signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
			}

			ctx.recordHistory(cmd.Context(), logger, history.Entry{
				SubmissionID: args[0],
				Action:       history.ActionLog,
			})

			return session.Run(runCtx, args[0], logsession.Options{
				Follow:     follow,
				ShowStderr: showStderr,
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming logs until interrupted")
	cmd.Flags().BoolVar(&showStderr, "stderr", false, "Include the stderr stream")
	cmd.Flags().IntVarP(&tailLines, "lines", "n", 0, "Lines of backlog to print before following")
	return cmd
}
