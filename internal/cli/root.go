// Package cli implements the xbsearch command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/seclorum/xbsearch/internal/config"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var (
	infoTag    = color.New(color.FgCyan).Sprint("[INFO]")
	warnTag    = color.New(color.FgYellow).Sprint("[WARNING]")
	errorTag   = color.New(color.FgRed).Sprint("[ERROR]")
	successTag = color.New(color.FgGreen).Sprint("[SUCCESS]")
)

// rootCmd represents the base command; running it performs the harvest.
var rootCmd = &cobra.Command{
	Use:   "xbsearch",
	Short: "Collect unique domains from search engine results",
	Long: `xbsearch runs a word list through a search engine and collects the unique
domains appearing in the results. Each word is combined with an optional
dork, a fixed number of result pages is fetched per word, and every hostname
seen is written to a single output file, one per line.`,
	RunE:          runHarvest,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, printing fatal errors in the CLI's
// status-line style.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorTag, err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.xbsearch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable per-word progress logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", warnTag, err)
		cfg = config.Default()
	}

	// Merge verbose flag from config if not set via CLI
	if cfg.Verbose && !verbose {
		verbose = true
	}
}

// versionCmd prints the release version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the xbsearch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("xbsearch v%s\n", version)
	},
}

// configCmd shows where configuration is read from and what it holds.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}

		fmt.Printf("Path:           %s\n", path)
		fmt.Printf("Exists:         %v\n", config.Exists(path))

		if cfg != nil {
			fmt.Printf("Engine:         %s\n", cfg.Engine)
			fmt.Printf("Pages:          %d\n", cfg.Pages)
			fmt.Printf("Delay:          %gs\n", cfg.Delay)
			fmt.Printf("Jitter:         %g\n", cfg.Jitter)
			fmt.Printf("Timeout:        %gs\n", cfg.Timeout)
			fmt.Printf("Strip www:      %v\n", cfg.StripWWW)
			fmt.Printf("Respect robots: %v\n", cfg.RespectRobots)
			fmt.Printf("Journal:        %s\n", cfg.Journal)
			fmt.Printf("Metrics port:   %d\n", cfg.MetricsPort)
		}
	},
}
