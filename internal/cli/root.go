package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/propdoc/propdoc/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propdoc",
	Short: "Propdoc - property documentation extractor for C++ codebases",
	Long: `Propdoc extracts configuration property declarations from C++ source
trees and renders them as structured JSON documentation. It pairs header
and implementation files, parses the property constructor calls, and
classifies each property's type, defaults, and constraints.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .propdoc.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the effective configuration, honoring --config when set.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.NewFileLoader(cfgFile).Load()
	}
	return config.LoadConfig()
}
