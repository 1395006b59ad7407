package cmd

import (
	"maps"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/pilotkpi/schema"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pilotkpi.",
	Long: `Display version information including build details and the input file
extensions this binary can read.`,
	Run: func(cmd *cobra.Command, _ []string) {
		extensions := slices.Sorted(maps.Keys(schema.SourceExtensions))

		cmd.Printf("pilotkpi CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Inputs:  %s\n", strings.Join(extensions, " "))
	},
}
