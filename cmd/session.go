package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/research-engine/internal/batch"
	"github.com/sells-group/research-engine/internal/model"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage batch research sessions",
}

var (
	sessionOwner     string
	sessionPrompt    string
	sessionFile      string
	sessionBatchSize int
)

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a session from an uploaded XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		up, err := batch.LoadXLSX(sessionFile)
		if err != nil {
			return err
		}

		size := sessionBatchSize
		if size <= 0 {
			size = cfg.Batch.Size
		}
		sess, err := env.Sessions.Create(ctx, sessionOwner, sessionPrompt, up.FileMeta(size))
		if err != nil {
			return err
		}
		return printJSON(sess)
	},
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Sessions.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(sess)
	},
}

var (
	sessionBatchIndex     int
	sessionBatchProviders []string
	sessionBatchInstr     string
)

var sessionBatchCmd = &cobra.Command{
	Use:   "batch <session-id>",
	Short: "Run one batch of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := env.Sessions.Get(ctx, args[0])
		if err != nil {
			return err
		}

		req := &model.ResearchRequest{
			Category:     model.CategoryCompanyDeepResearch,
			Instructions: sessionBatchInstr,
			Providers:    map[string]bool{},
		}
		for _, p := range sessionBatchProviders {
			req.Providers[strings.TrimSpace(p)] = true
		}

		if sessionFile != "" {
			up, err := batch.LoadXLSX(sessionFile)
			if err != nil {
				return err
			}
			rows := up.Page(sessionBatchIndex, sess.File.BatchSize)
			if len(rows) == 0 {
				return eris.Errorf("batch %d is past the end of %s", sessionBatchIndex, up.Filename)
			}
			req.UploadRows = rows
			req.UploadFilename = up.Filename
		}

		resp, err := env.Orch.SubmitBatch(ctx, args[0], sessionBatchIndex, req)
		if err != nil {
			return err
		}
		return printJSON(resp)
	},
}

func transitionCmd(use, short string, op func(*engineEnv, context.Context, string) (*model.ResearchSession, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			sess, err := op(env, ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(sess)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionOwner, "owner", "", "owner id (defaults to guest)")
	sessionCreateCmd.Flags().StringVar(&sessionPrompt, "prompt", "", "research prompt (required)")
	sessionCreateCmd.Flags().StringVar(&sessionFile, "file", "", "XLSX file of research targets (required)")
	sessionCreateCmd.Flags().IntVar(&sessionBatchSize, "batch-size", 0, "rows per batch (default from config)")
	_ = sessionCreateCmd.MarkFlagRequired("prompt")
	_ = sessionCreateCmd.MarkFlagRequired("file")

	sessionBatchCmd.Flags().IntVar(&sessionBatchIndex, "index", 0, "batch index to run")
	sessionBatchCmd.Flags().StringSliceVar(&sessionBatchProviders, "providers", []string{"openai"}, "providers to dispatch")
	sessionBatchCmd.Flags().StringVar(&sessionBatchInstr, "instructions", "", "extra instructions for this batch")
	sessionBatchCmd.Flags().StringVar(&sessionFile, "file", "", "XLSX file of research targets")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionGetCmd)
	sessionCmd.AddCommand(sessionBatchCmd)
	sessionCmd.AddCommand(transitionCmd("pause", "Pause an active session",
		func(e *engineEnv, ctx context.Context, id string) (*model.ResearchSession, error) { return e.Sessions.Pause(ctx, id) }))
	sessionCmd.AddCommand(transitionCmd("resume", "Resume a paused session",
		func(e *engineEnv, ctx context.Context, id string) (*model.ResearchSession, error) { return e.Sessions.Resume(ctx, id) }))
	sessionCmd.AddCommand(transitionCmd("complete", "Complete an active session",
		func(e *engineEnv, ctx context.Context, id string) (*model.ResearchSession, error) { return e.Sessions.Complete(ctx, id) }))
	sessionCmd.AddCommand(transitionCmd("abandon", "Abandon a session",
		func(e *engineEnv, ctx context.Context, id string) (*model.ResearchSession, error) { return e.Sessions.Abandon(ctx, id) }))
	rootCmd.AddCommand(sessionCmd)
}
