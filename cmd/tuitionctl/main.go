package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tuition/internal/eligibility"
	"tuition/internal/eligibility/ruleset"
	"tuition/internal/platform/logger"
)

// Exit statuses: a high-tier verdict is not an error, but scripts need to
// tell it apart from a low-tier one.
const (
	exitLowTier  = 0
	exitError    = 1
	exitHighTier = 2
)

// exitCodeError carries a non-zero exit status without printing an error.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exit exitCodeError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitLowTier
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "tuitionctl",
		Short:         "Evaluate tuition tiers against an eligibility ruleset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("rules", "", "ruleset YAML file (default ruleset when empty)")

	root.AddCommand(
		evaluateCmd(),
		rulesCmd(),
	)
	return root
}

func evaluateCmd() *cobra.Command {
	var (
		name        string
		income      int64
		scholarship bool
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one registration and print its tuition tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := ruleset.LoadRules(cmd.Flag("rules").Value.String())
			if err != nil {
				return err
			}
			record, err := eligibility.NewRegistrationRecord(strings.TrimSpace(name), income, scholarship)
			if err != nil {
				return err
			}

			var opts []eligibility.EvaluatorOption
			if verbose {
				opts = append(opts, eligibility.WithDiagnostics(logger.New(cmd.ErrOrStderr(), "text", "debug")))
			}
			explanation := eligibility.NewEvaluator(rules, opts...).Explain(record)
			printExplanation(cmd.OutOrStdout(), record, explanation)

			if !explanation.Passed {
				return exitCodeError{code: exitHighTier}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "student name")
	cmd.Flags().Int64Var(&income, "income", 0, "parent income")
	cmd.Flags().BoolVar(&scholarship, "scholarship", false, "student received a scholarship")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every rule check to stderr")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect eligibility rulesets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate <file>",
			Short: "Load a ruleset file and print its rule order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rules, err := ruleset.LoadRules(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d rule(s)\n", args[0], len(rules))
				for i, rule := range rules {
					fmt.Fprintf(out, "  %d. %s\n", i+1, eligibility.RuleName(rule))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "default",
			Short: "Print the default ruleset as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := ruleset.Marshal(ruleset.DefaultDocument())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)
	return cmd
}

func printExplanation(w io.Writer, record eligibility.RegistrationRecord, ex eligibility.Explanation) {
	fmt.Fprintf(w, "%s: %s tier\n", record.Name(), ex.Tier())
	for _, c := range ex.Checks {
		mark := "pass"
		if !c.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s", mark, c.Rule)
		if c.Detail != "" {
			fmt.Fprintf(w, ": %s", c.Detail)
		}
		fmt.Fprintln(w)
	}
}
