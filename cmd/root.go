// hiergen <backend> <path> <libraries> <functions>, hiergen generate ...
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/qobs-build/hiergen/internal/hierarchy"
	"github.com/qobs-build/hiergen/internal/msg"
	"github.com/qobs-build/hiergen/internal/vcs"
	"github.com/spf13/cobra"
)

// Version is reported by -v/--version and recorded in manifests.
var Version = "0.1.0"

var standards = map[string]string{
	"c89":   "ANSI C",
	"c99":   "ISO C99 (default)",
	"c11":   "ISO C11",
	"c17":   "ISO C17",
	"c23":   "ISO C23",
	"gnu89": "C89 with GNU extensions",
	"gnu99": "C99 with GNU extensions",
	"gnu11": "C11 with GNU extensions",
	"gnu17": "C17 with GNU extensions",
}

type generateFlags struct {
	config   string
	name     string
	std      EnumValue
	manifest bool
	git      bool
	quiet    bool
}

var flags = generateFlags{std: NewEnumValue("c99", standards)}

// resolveOptions layers the config file, the positional arguments and the
// flags, in that order. stdSet tells whether --std was given explicitly.
func resolveOptions(args []string, f *generateFlags, stdSet bool) (hierarchy.Options, error) {
	opts := hierarchy.DefaultOptions()
	var librariesSet, functionsSet bool

	configPath := f.config
	if configPath == "" && len(args) == 0 {
		if _, err := os.Stat(hierarchy.ConfigFile); err == nil {
			configPath = hierarchy.ConfigFile
		}
	}
	if configPath != "" {
		cfg, err := hierarchy.ParseConfigFromFile(configPath, hierarchy.NewConfigEnv())
		if err != nil {
			return opts, err
		}
		cfg.Apply(&opts)
		librariesSet = cfg.Hierarchy.Libraries != nil
		functionsSet = cfg.Hierarchy.Functions != nil
	}

	if len(args) > 0 {
		opts.Backend = args[0]
	}
	if len(args) > 1 {
		opts.Root = args[1]
	}
	if len(args) > 2 {
		n, err := hierarchy.ParseCount("library count", args[2])
		if err != nil {
			return opts, err
		}
		opts.Libraries = n
		librariesSet = true
	}
	if len(args) > 3 {
		n, err := hierarchy.ParseCount("functions per library", args[3])
		if err != nil {
			return opts, err
		}
		opts.Functions = n
		functionsSet = true
	}

	if f.name != "" {
		opts.Name = f.name
	}
	if stdSet {
		opts.Std = f.std.Value()
	}
	opts.Manifest = opts.Manifest || f.manifest
	opts.Git = opts.Git || f.git

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	if !librariesSet {
		return opts, fmt.Errorf("%w: no library count given", hierarchy.ErrConfiguration)
	}
	if !functionsSet {
		return opts, fmt.Errorf("%w: no function count given", hierarchy.ErrConfiguration)
	}
	return opts, nil
}

// doGenerate writes the hierarchy described by opts and optionally commits it
func doGenerate(opts hierarchy.Options, quiet bool) error {
	h, err := opts.NewHierarchy(Version)
	if err != nil {
		return err
	}
	if !quiet {
		h.Progress = msg.NewProgressBar("Generating", int64(opts.Libraries+1), 0, os.Stderr)
	}
	if err := h.Create(); err != nil {
		return err
	}
	if h.Progress != nil {
		h.Progress.Finish()
	}

	if opts.Git {
		hash, err := vcs.CommitTree(opts.Root, opts.CommitMessage)
		switch {
		case errors.Is(err, vcs.ErrNothingToCommit):
			msg.Warn("%s is unchanged, nothing committed", opts.Root)
		case err != nil:
			return err
		case !quiet:
			msg.Info("committed %s", hash[:7])
		}
	}

	if !quiet {
		msg.Info("generated %d libraries with %d functions each (%s) in %s",
			opts.Libraries, opts.Functions, opts.Backend, opts.Root)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) {
	opts, err := resolveOptions(args, &flags, cmd.Flags().Changed("std"))
	if err != nil {
		msg.Fatal("%v", err)
	}
	if err := doGenerate(opts, flags.quiet); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hiergen <backend> <path> <libraries> <functions>",
	Short: "Generate synthetic multi-library C projects",
	Long: `Generate a synthetic C project: a number of static libraries with a number
of trivial functions each, and one test application that calls all of them,
described by build files for the chosen backend.`,
	Version:           Version,
	Args:              cobra.MaximumNArgs(4),
	ValidArgsFunction: completeBackend,
	Run:               runGenerate,
}

var generateCmd = &cobra.Command{
	Use:               "generate <backend> <path> <libraries> <functions>",
	Short:             "Generate a hierarchy",
	Long:              `Generate a hierarchy. Arguments left out are taken from the config file.`,
	Args:              cobra.MaximumNArgs(4),
	ValidArgsFunction: completeBackend,
	Run:               runGenerate,
}

func init() {
	rootCmd.SetVersionTemplate("hiergen version {{.Version}}\n")
	addGenerateFlags(rootCmd)

	// hiergen generate subcommand
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "Read options from the given config file (default "+hierarchy.ConfigFile+" when no arguments are given)")
	cmd.Flags().StringVar(&flags.name, "name", "", "Project name declared by the root build file")
	cmd.Flags().Var(&flags.std, "std", "C language standard, one of "+flags.std.HelpString())
	cmd.Flags().BoolVar(&flags.manifest, "manifest", false, "Write "+hierarchy.ManifestFile+" describing the generated tree")
	cmd.Flags().BoolVar(&flags.git, "git", false, "Commit the generated tree to a git repository")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print errors")
	cmd.RegisterFlagCompletionFunc("std", flags.std.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
