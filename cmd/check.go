// hiergen check <path> [backend libraries functions]
package cmd

import (
	"fmt"
	"os"

	"github.com/qobs-build/hiergen/internal/check"
	"github.com/qobs-build/hiergen/internal/hierarchy"
	"github.com/qobs-build/hiergen/internal/msg"
	"github.com/spf13/cobra"
)

var (
	checkName string
	checkStd  = NewEnumValue("c99", standards)
)

// checkOptions returns the options the tree at root is compared against:
// the explicit arguments when given, the tree's manifest otherwise.
func checkOptions(root string, args []string, name, std string) (hierarchy.Options, error) {
	if len(args) == 0 {
		m, err := hierarchy.ReadManifest(root)
		if err != nil {
			return hierarchy.Options{}, fmt.Errorf("no arguments given and %w", err)
		}
		return m.Options(root), nil
	}
	if len(args) != 3 {
		return hierarchy.Options{}, fmt.Errorf("%w: expected <backend> <libraries> <functions>, got %d argument(s)", hierarchy.ErrConfiguration, len(args))
	}

	opts := hierarchy.DefaultOptions()
	opts.Root = root
	opts.Backend = args[0]
	var err error
	if opts.Libraries, err = hierarchy.ParseCount("library count", args[1]); err != nil {
		return opts, err
	}
	if opts.Functions, err = hierarchy.ParseCount("functions per library", args[2]); err != nil {
		return opts, err
	}
	if name != "" {
		opts.Name = name
	}
	if std != "" {
		opts.Std = std
	}
	return opts, opts.Validate()
}

func doCheck(cmd *cobra.Command, args []string) {
	root := args[0]
	var std string
	if cmd.Flags().Changed("std") {
		std = checkStd.Value()
	}
	opts, err := checkOptions(root, args[1:], checkName, std)
	if err != nil {
		msg.Fatal("%v", err)
	}

	report, err := check.Run(root, opts)
	if err != nil {
		msg.Fatal("%v", err)
	}
	clean, err := reportDrift(report, opts)
	if err != nil {
		msg.Fatal("%v", err)
	}
	if !clean {
		os.Exit(1)
	}
}

// reportDrift prints the report followed by a one-line verdict and tells
// whether the tree is clean. Drift is a result, not a failure of the command.
func reportDrift(report *check.Report, opts hierarchy.Options) (bool, error) {
	if err := report.Write(msg.Out); err != nil {
		return false, err
	}
	if !report.Clean() {
		msg.Error("%s has drifted: %d difference(s)", report.Root, len(report.Entries))
		return false, nil
	}
	msg.Info("%s is up to date (%s, %d libraries, %d functions each)", report.Root, opts.Backend, opts.Libraries, opts.Functions)
	return true, nil
}

var checkCmd = &cobra.Command{
	Use:   "check <path> [backend libraries functions]",
	Short: "Compare a generated tree with a fresh generation",
	Long: `Regenerate the hierarchy in a scratch directory and report every file that
is missing, extra or modified in the tree at <path>. Without the optional
arguments the options are read from the tree's ` + hierarchy.ManifestFile + `.
Exits with status 1 when the tree has drifted.`,
	Args: cobra.RangeArgs(1, 4),
	Run:  doCheck,
}

func init() {
	// hiergen check subcommand
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkName, "name", "", "Project name the tree was generated with")
	checkCmd.Flags().Var(&checkStd, "std", "C language standard the tree was generated with, one of "+checkStd.HelpString())
	checkCmd.RegisterFlagCompletionFunc("std", checkStd.CompletionFunc())
}
