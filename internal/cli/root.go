package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dshills/gptcommit/internal/apperror"
	"github.com/dshills/gptcommit/internal/logging"
	"github.com/dshills/gptcommit/internal/output"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// exitCode is set by command handlers to control the process exit code.
var exitCode = apperror.ExitSuccess

var (
	flagModel        string
	flagListModels   bool
	flagDryRun       bool
	flagNoEdit       bool
	flagFormat       string
	flagMaxDiffChars int
	flagNoRedact     bool
	flagSecrets      string
	flagConfig       string
	flagPrintConfig  bool
	flagVerbose      bool
	flagVeryVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "gpt-commit [flags] <file_path>",
	Short: "Write a commit message for one file with a language model",
	Long: `gpt-commit sends the pending change of a single file to an OpenAI-compatible
completion service, lets you review or edit the proposed commit message, and
then stages and commits that file on its own.`,
	Example: `  gpt-commit notes.txt
  gpt-commit --model openai/gpt-4.1 --dry-run src/main.go
  gpt-commit --no-edit README.md
  gpt-commit --list-models`,
	Version:       version,
	Args:          validateArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(cmd.ErrOrStderr(), flagVerbose, flagVeryVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case flagPrintConfig:
			runPrintConfig(cmd)
		case flagListModels:
			runListModels(cmd)
		default:
			runCommit(cmd, args[0])
		}
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagModel, "model", "", "Model identifier (default from config, openai/gpt-4.1)")
	f.BoolVar(&flagListModels, "list-models", false, "List the models offered by the completion service and exit")
	f.BoolVar(&flagDryRun, "dry-run", false, "Generate and review the message but do not stage or commit")
	f.BoolVar(&flagNoEdit, "no-edit", false, "Skip the review and commit the generated message as is")
	f.StringVar(&flagFormat, "format", "", "Output format for listings and dry runs (text, table, json)")
	f.IntVar(&flagMaxDiffChars, "max-diff-chars", 0, "Truncate the diff sent to the model at this many characters")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	f.StringVar(&flagSecrets, "secrets", "", "Credentials file (default ~/.config/cborg/secrets.json)")
	f.StringVar(&flagConfig, "config", "", "Config file (default $XDG_CONFIG_HOME/gpt-commit/config.yaml)")
	f.BoolVar(&flagPrintConfig, "print-config", false, "Print the effective configuration and exit")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&flagVeryVerbose, "very-verbose", false, "Enable trace logging, including prompts")

	rootCmd.SetVersionTemplate("gpt-commit version {{.Version}}\n")
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	exitCode = apperror.ExitSuccess
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Handlers report their own errors, so anything left is a flag or
		// argument problem.
		report(errOut, apperror.Wrap(apperror.ErrUsage, err, "").
			WithHint("run 'gpt-commit --help' for usage"))
	}
	return exitCode
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if flagListModels || flagPrintConfig {
		// The file path is not needed and is ignored.
		return cobra.MaximumNArgs(1)(cmd, args)
	}
	switch len(args) {
	case 0:
		return fmt.Errorf("missing <file_path> argument")
	case 1:
		return nil
	default:
		return fmt.Errorf("expected one <file_path>, got %d arguments", len(args))
	}
}

// buildOverrides maps the set flags to config keys.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagMaxDiffChars > 0 {
		m["max_diff_chars"] = strconv.Itoa(flagMaxDiffChars)
	}
	if flagNoRedact {
		m["privacy.redact_secrets"] = "false"
	}
	return m
}

// report prints err and records its exit code. Informational outcomes are
// printed without the error prefix.
func report(w io.Writer, err error) {
	exitCode = apperror.ExitCode(err)
	switch {
	case exitCode == apperror.ExitInterrupted:
		fmt.Fprintln(w, "Interrupted.")
	case apperror.IsInformational(err):
		fmt.Fprintln(w, err.Error())
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		if hint := apperror.Hint(err); hint != "" {
			fmt.Fprintf(w, "Hint: %s\n", hint)
		}
	}
}

func outputWriter(format string) output.Writer {
	w, err := output.GetWriter(format)
	if err != nil {
		// Unreachable after config validation.
		return &output.TextWriter{}
	}
	return w
}
