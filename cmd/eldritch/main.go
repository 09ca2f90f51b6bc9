// Command eldritch is a thin CLI front end over the eldritch package: a
// run subcommand for executing a script file and a repl subcommand for
// an interactive session, grounded on the teacher's cobra-based cli/main.go
// entry point style (cobra.Command, RunE, persistent flags) but without any
// of the teacher's plan/vault/scrubber machinery — those concerns belong
// to the transport/C2 surface this module does not implement.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spellshift/eldritch/internal/diag"
	"github.com/spellshift/eldritch/internal/value"

	eldritch "github.com/spellshift/eldritch"
)

func main() {
	var fakeLibraries bool

	rootCmd := &cobra.Command{
		Use:           "eldritch",
		Short:         "Run or explore Eldritch scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&fakeLibraries, "fake", false,
		"install canned-data fake libraries instead of real host I/O")

	runCmd := &cobra.Command{
		Use:   "run [script.eldritch]",
		Short: "Execute a script file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], fakeLibraries)
		},
	}

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(fakeLibraries)
		},
	}

	rootCmd.AddCommand(runCmd, replCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFile(path string, fake bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ie := eldritch.New(nil, eldritch.Options{FakeLibraries: fake})
	v, err := ie.Interpret(string(src))
	if err != nil {
		if de, ok := err.(*diag.Error); ok {
			fmt.Fprintln(os.Stderr, diag.Render(string(src), de))
			return fmt.Errorf("script failed")
		}
		return err
	}
	if v.Kind() != value.KindNone {
		fmt.Println(value.Repr(v))
	}
	return nil
}

func runREPL(fake bool) error {
	ie := eldritch.New(nil, eldritch.Options{FakeLibraries: fake})
	r := ie.REPL()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(r.Prompt())
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		res := r.Input(scanner.Text())
		if res.Payload != "" {
			fmt.Println(res.Payload)
		}
	}
}
