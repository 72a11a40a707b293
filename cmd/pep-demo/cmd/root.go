package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

var cfgPath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pep-demo",
	Short: "Demo CLI for the PEP authorization client",
	Long: `pep-demo exercises a pep.Client end to end: it builds a sample
XACML request, runs it through the configured PIP and obligation
handler chain, and prints the PDP's decision.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (YAML); defaults to built-in values")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose (debug-level) logging")
}
