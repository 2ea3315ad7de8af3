// Package cli implements the policyxray command line: scan runs the regex path,
// classify runs the model path
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"policyxray/internal/core/rulepack"
	"policyxray/internal/core/version"
	"policyxray/internal/platform/config"
	"policyxray/internal/platform/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RootOptions holds global flags
type RootOptions struct {
	JSON         bool
	NoColor      bool
	RulepackPath string
	Verbose      bool
}

type app struct {
	opts RootOptions
	cfg  config.Conf
	out  io.Writer
	err  io.Writer
}

// NewRootCommand builds the command tree writing to out and errOut
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{cfg: config.New().Prefix("XRAY_"), out: out, err: errOut}
	bi := version.Info()

	cmd := &cobra.Command{
		Use:     "policyxray",
		Short:   "Score privacy policies for risky clauses",
		Long:    "policyxray scores a privacy policy against weighted regex risk categories,\nor classifies its relevant clauses with a language model backend.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", bi.Version, bi.Commit, bi.Date),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if a.opts.NoColor || !isTerminal(out) {
				color.NoColor = true
			}
			lo := logger.FromEnv()
			lo.Writer = errOut
			lo.Level = a.cfg.MayString("LOG_LEVEL", "warn")
			if a.opts.Verbose {
				lo.Level = "debug"
			}
			logger.Init(lo)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.BoolVar(&a.opts.JSON, "json", false, "print the raw result as JSON")
	pf.BoolVar(&a.opts.NoColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log backend calls to stderr")
	pf.StringVar(&a.opts.RulepackPath, "rulepack", "", "category file (default: XRAY_RULEPACK_PATH or the embedded pack)")

	cmd.AddCommand(a.newScanCmd(), a.newClassifyCmd())
	return cmd
}

// Execute runs the CLI against the process streams and returns the exit code
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return 1
	}
	return 0
}

func (a *app) loadPack() (*rulepack.Pack, error) {
	path := a.opts.RulepackPath
	if path == "" {
		path = a.cfg.MayString("RULEPACK_PATH", "")
	}
	if path == "" {
		return rulepack.Load()
	}
	return rulepack.LoadFile(path)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
