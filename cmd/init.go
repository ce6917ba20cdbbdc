// hiergen init [path]
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/qobs-build/hiergen/internal/hierarchy"
	"github.com/qobs-build/hiergen/internal/msg"
	"github.com/spf13/cobra"
)

const sampleConfig = `[hierarchy]
name = "hierarchy"
backend = "cmake"
path = "out/{{ target_os }}"
libraries = 10
functions = 100
std = "c99"

[hierarchy.'target_os == "windows"']
backend = "vs2022"

[output]
manifest = true
git = false
commit-message = "Generate hierarchy"
`

// initIn writes a sample config into dir
func initIn(dir string) error {
	created, err := writefile(sampleConfig, dir, hierarchy.ConfigFile)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, hierarchy.ConfigFile)
	if !created {
		msg.Warn("%s already exists, leaving it untouched", filepath.ToSlash(path))
		return nil
	}

	programName := getProgramName()
	fmt.Fprintf(msg.Out, "You can now edit it and run %s to generate the hierarchy.\n",
		color.HiCyanString(programName+" -c "+filepath.ToSlash(path)))
	return nil
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample " + hierarchy.ConfigFile,
	Long:  `Write a sample ` + hierarchy.ConfigFile + `. If no path is given, uses ".". An existing file is never overwritten.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		if err := initIn(dir); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	// hiergen init subcommand
	rootCmd.AddCommand(initCmd)
}
