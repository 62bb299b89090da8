// Command imagine is the command-line front end of imaginarium. It reads
// English sentences that define an ontology and prints the individuals it
// imagines from them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"imaginarium/internal/config"
	"imaginarium/internal/logging"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	definitions string
	seed        int64

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "imagine",
	Short: "imaginarium - procedural generation from English definitions",
	Long: `imaginarium builds an ontology from simple English sentences and
imagines random individuals that satisfy it.

  a cat is a kind of animal.
  cats can be black, white, or ginger.
  imagine 3 cats.

Run without arguments to start the interactive prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Solver.Seed = seed
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := logging.Initialize(logging.Config{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			OutputPath: cfg.Logging.File,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			return err
		}
		logging.BootDebug("config %s: seed=%d solver timeout=%s", configPath, cfg.Solver.Seed, cfg.Solver.Timeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runRepl,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "imaginarium.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&definitions, "definitions", "d", "", "Definitions file to load first")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Solver seed (0 = random)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.BootError("%v", err)
		logging.Sync()
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
