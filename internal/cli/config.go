package cli

import (
	"github.com/dshills/gptcommit/internal/config"
	"github.com/spf13/cobra"
)

// runPrintConfig shows the merged configuration with the API key masked.
func runPrintConfig(cmd *cobra.Command) {
	cfg, err := loadConfig(workingDir())
	if err != nil {
		report(cmd.ErrOrStderr(), err)
		return
	}

	data, err := config.Marshal(cfg.Redacted())
	if err != nil {
		report(cmd.ErrOrStderr(), err)
		return
	}
	_, _ = cmd.OutOrStdout().Write(data)
}
