package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/research-engine/internal/batch"
	"github.com/sells-group/research-engine/internal/model"
)

var (
	researchQuery        string
	researchCategory     string
	researchDepth        string
	researchProviders    []string
	researchFile         string
	researchWebsite      string
	researchScope        string
	researchInstructions string
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run a one-shot research request",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := &model.ResearchRequest{
			Query:           researchQuery,
			Category:        model.Category(researchCategory),
			Depth:           model.Depth(researchDepth),
			GeographicScope: researchScope,
			TargetWebsite:   researchWebsite,
			Instructions:    researchInstructions,
			Providers:       map[string]bool{},
		}
		for _, p := range researchProviders {
			req.Providers[strings.TrimSpace(p)] = true
		}

		if researchFile != "" {
			up, err := batch.LoadXLSX(researchFile)
			if err != nil {
				return err
			}
			req.UploadRows = up.Rows
			req.UploadFilename = up.Filename
		}

		resp, err := env.Orch.Submit(ctx, req)
		if err != nil {
			return eris.Wrap(err, "submit research")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchQuery, "query", "", "research query (required)")
	researchCmd.Flags().StringVar(&researchCategory, "category", string(model.CategoryGeneralResearch), "research category")
	researchCmd.Flags().StringVar(&researchDepth, "depth", string(model.DepthIntermediate), "research depth (basic|intermediate|comprehensive)")
	researchCmd.Flags().StringSliceVar(&researchProviders, "providers", []string{"openai"}, "providers to dispatch")
	researchCmd.Flags().StringVar(&researchFile, "file", "", "XLSX file of research targets")
	researchCmd.Flags().StringVar(&researchWebsite, "website", "", "target company website")
	researchCmd.Flags().StringVar(&researchScope, "scope", "", "geographic scope")
	researchCmd.Flags().StringVar(&researchInstructions, "instructions", "", "additional instructions")
	_ = researchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(researchCmd)
}
