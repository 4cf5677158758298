package cli

import (
	"github.com/dshills/gptcommit/internal/catalog"
	"github.com/dshills/gptcommit/internal/completion"
	"github.com/spf13/cobra"
)

func runListModels(cmd *cobra.Command) {
	errOut := cmd.ErrOrStderr()

	cfg, err := loadConfig(workingDir())
	if err != nil {
		report(errOut, err)
		return
	}

	client, err := completion.NewOpenAI(cfg.Completion)
	if err != nil {
		report(errOut, err)
		return
	}

	models, err := catalog.New(client).List(cmd.Context())
	if err != nil {
		report(errOut, err)
		return
	}

	if err := outputWriter(cfg.Format).Models(cmd.OutOrStdout(), models); err != nil {
		report(errOut, err)
	}
}
