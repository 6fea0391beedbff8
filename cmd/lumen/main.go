// Command lumen is an example embedder: it registers a small stdlib of
// native functions, then evaluates a script file and prints the result. It is explicitly an external collaborator of the
// engine (spec §1 "Out of scope": example runner programs), not part of
// package lumen itself.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lumenscript/lumen"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "lumen",
		Short: "Run Lumen scripts against a small example stdlib",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML host config")

	root.AddCommand(runCmd(), checkCmd())

	if err := root.Execute(); err != nil {
		os.Exit(renderAndExitCode(err))
	}
}

// renderAndExitCode prints err to stderr and picks an exit code by error
// kind: lex/parse failures already carry a caret-annotated snippet (produced
// by lumen.WrapWithSource before the error reaches here) and exit 2; every
// other structured kind just prints its message and exits 1.
func renderAndExitCode(err error) int {
	var lex *lumen.LexError
	var parse *lumen.ParseError
	if errors.As(err, &lex) || errors.As(err, &parse) {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func buildEngine() (*lumen.Engine, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading host config")
	}
	e := lumen.New().WithSourceReader(rootedSourceReader{root: cfg.ImportRoot})
	for _, group := range cfg.Builtins {
		registerBuiltinGroup(e, group)
	}
	return e, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Evaluate a script file and print its trailing value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}
			v, err := e.EvalValue(string(src))
			if err != nil {
				return err
			}
			fmt.Println(formatResult(v))
			return nil
		},
	}
}

// formatResult renders a script's trailing value for the `run` command's
// stdout, without assuming the host knows the result type up front.
func formatResult(v lumen.Value) string {
	switch v.Type() {
	case lumen.TypeString:
		return v.MustString()
	case lumen.TypeInt:
		return fmt.Sprintf("%d", v.MustInt())
	case lumen.TypeFloat:
		return fmt.Sprintf("%g", v.MustFloat())
	case lumen.TypeBool:
		return fmt.Sprintf("%t", v.MustBool())
	case lumen.TypeUnit:
		return "()"
	default:
		return fmt.Sprintf("<%s value>", v.Type())
	}
}

func checkCmd() *cobra.Command {
	var fn string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print the registered overloads for a function name",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			for _, sig := range e.Describe(fn) {
				fmt.Printf("%s(%v)\n", sig.Name, sig.Args)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fn, "fn", "", "function name to describe")
	return cmd
}
