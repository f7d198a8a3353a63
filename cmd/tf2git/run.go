package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kurobon/tf2git/internal/config"
	"github.com/kurobon/tf2git/internal/gitdest"
	"github.com/kurobon/tf2git/internal/replay"
	"github.com/kurobon/tf2git/internal/tfs"
)

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay the changeset history into the working directory's git repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runMigration(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().String("source", "", "TFVC server path to migrate (e.g. $/Project)")
	cmd.Flags().String("workdir", "", "working directory, becomes the git repository")
	cmd.Flags().String("tf", "", "path to the tf client binary")
	cmd.Flags().String("workspace", "", "TFVC workspace name")
	cmd.Flags().Int("from", 0, "first changeset to replay (inclusive)")
	cmd.Flags().Int("to", 0, "last changeset to replay (inclusive)")
	cmd.Flags().String("usermap", "", "YAML file mapping source users to git identities")
	cmd.Flags().Bool("case-sensitive-history", false, "skip case reconciliation (source history never case-collided)")
	cmd.Flags().Bool("dry-run", false, "list the changesets that would be replayed, touch nothing")
	cmd.Flags().BoolP("verbose", "v", false, "verbose output")

	return cmd
}

func runMigration(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Verbose)

	source := tfs.NewExecClient(cfg.TfExe, cfg.WorkDir, cfg.SourcePath)

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}

	if !cfg.DryRun {
		if err := source.EnsureWorkspace(ctx, cfg.Workspace); err != nil {
			// An existing workspace from an earlier run is fine.
			logger.Warn("workspace create failed, assuming it exists", "workspace", cfg.Workspace, "error", err)
		}
		defer func() {
			if err := source.DeleteWorkspace(ctx, cfg.Workspace); err != nil {
				logger.Warn("workspace delete failed", "workspace", cfg.Workspace, "error", err)
			}
		}()
	}

	raw, err := source.History(ctx, cfg.SourcePath)
	if err != nil {
		return err
	}
	ids, err := tfs.ParseHistory(raw)
	if err != nil {
		return err
	}
	ids, err = replay.Sequence(ids, replay.Range{From: cfg.From, To: cfg.To})
	if err != nil {
		return err
	}
	logger.Info("history parsed", "changesets", len(ids), "first", ids[0], "last", ids[len(ids)-1])

	if cfg.DryRun {
		for _, id := range ids {
			fmt.Printf("would replay changeset %d\n", id)
		}
		return nil
	}

	users, err := replay.LoadUserMap(cfg.UserMapPath)
	if err != nil {
		return err
	}

	dest, err := gitdest.InitOrOpen(cfg.WorkDir)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	orch := &replay.Orchestrator{
		Source: source,
		Mat:    &replay.Materializer{Source: source, Log: logger},
		Rec: &replay.Reconciler{
			Dest:    dest,
			Root:    cfg.SourcePath,
			Enabled: !cfg.CaseSensitiveHistory,
			Log:     logger,
		},
		Comp: &replay.Composer{Dest: dest, Users: users, Root: cfg.SourcePath, Log: logger},
		Log:  logger,
		Progress: func(rec replay.CommitRecord) {
			fmt.Printf("%s changeset %d -> %.8s (%d files)\n", ok("ok"), rec.Changeset, rec.Hash, rec.Files)
		},
	}

	report, runErr := orch.Run(ctx, ids)
	report.Render(os.Stdout)

	if runErr != nil {
		if last := report.Last(); last > 0 {
			logger.Error("run halted", "last_committed", last, "resume_from", last+1, "error", runErr)
		}
		return runErr
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
