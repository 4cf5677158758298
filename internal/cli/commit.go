package cli

import (
	"fmt"
	"os"

	"github.com/dshills/gptcommit/internal/commitmsg"
	"github.com/dshills/gptcommit/internal/completion"
	"github.com/dshills/gptcommit/internal/config"
	"github.com/dshills/gptcommit/internal/gitctx"
	"github.com/dshills/gptcommit/internal/pipeline"
	"github.com/dshills/gptcommit/internal/progress"
	"github.com/dshills/gptcommit/internal/review"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runCommit(cmd *cobra.Command, path string) {
	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	repo, err := gitctx.Open(ctx, "")
	if err != nil {
		report(errOut, err)
		return
	}

	cfg, err := loadConfig(repo.Root())
	if err != nil {
		report(errOut, err)
		return
	}
	if !cfg.Privacy.RedactSecrets {
		fmt.Fprintln(errOut, "Warning: secret redaction is disabled; the diff is sent as is.")
	}

	client, err := completion.NewOpenAI(cfg.Completion)
	if err != nil {
		report(errOut, err)
		return
	}
	gen := commitmsg.NewGenerator(client, commitmsg.Options{
		MaxDiffChars:  cfg.MaxDiffChars,
		Temperature:   cfg.Completion.Temperature,
		MaxTokens:     cfg.Completion.MaxTokens,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
	})

	var reviewer pipeline.Reviewer
	if !flagNoEdit {
		editor := review.NewExternalEditor(review.ResolveEditor(ctx, repo.Root()))
		reviewer = review.NewSession(cmd.InOrStdin(), errOut, editor)
	}

	orch := pipeline.New(repo, gen, reviewer, cmd.OutOrStdout(), outputWriter(cfg.Format))
	if progress.IsTerminal(os.Stderr) && !flagVerbose && !flagVeryVerbose {
		orch.Wait = func(desc string) func() { return progress.Start(os.Stderr, desc) }
	}

	meta := repo.Meta(ctx)
	log.Debug().
		Str("repo", meta.Root).
		Str("branch", meta.Branch).
		Str("head", meta.Head).
		Str("path", path).
		Str("model", cfg.Model).
		Str("base_url", client.BaseURL()).
		Bool("dry_run", flagDryRun).
		Msg("Starting commit run")

	res, err := orch.Run(ctx, pipeline.Options{
		Path:             path,
		Model:            cfg.Model,
		DryRun:           flagDryRun,
		NoEdit:           flagNoEdit,
		MaxRegenerations: cfg.MaxRegenerations,
	})
	log.Debug().Str("state", string(res.State)).Int("generations", res.Generations).Msg("Run finished")
	if err != nil {
		report(errOut, err)
	}
}

// loadConfig merges all configuration sources. dotEnvDir is searched for
// a .env file.
func loadConfig(dotEnvDir string) (config.Config, error) {
	return config.LoadFrom(config.Sources{
		ConfigFile:  flagConfig,
		SecretsFile: flagSecrets,
		DotEnvDir:   dotEnvDir,
		Overrides:   buildOverrides(),
	})
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
