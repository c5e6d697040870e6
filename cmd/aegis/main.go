// Package main provides the Aegis CLI entry point.
// Aegis is a terminal workspace for orchestrating conversations with several LLM bots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aegis/internal/logger"
	"aegis/internal/output"
	"aegis/internal/services"
	"aegis/internal/version"
)

var (
	logLevel  string
	logFile   string
	testMode  bool
	theme     string
	wrapWidth int
	detailed  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "Aegis OS - multi-bot conversation workspace",
	Long: `Aegis keeps several LLM bots loaded side by side, lets you chat with each one,
and forwards messages or gathered context from one bot to another.`,
	SilenceUsage: true,
	RunE:         runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	RunE:  runShell,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <botfile>",
	Short: "Print the messages of a bot file with their display ids",
	Long: `Load a bot file and list every message with its display id (U1, A1, ...) and a
one-line preview. With --id, print the full text of that message instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		if detailed {
			output.Println(version.Detailed())
			return
		}
		output.Println(version.String())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringVar(&theme, "theme", "", "Color theme (default|dark|light|plain)")
	flags.IntVar(&wrapWidth, "wrap-width", 0, "Column full messages are wrapped at [default: 90]")
	flags.String(services.KeyRoot, "", "Directory holding projects/ and templates/ [env: AEGIS_ROOT]")
	flags.String(services.KeyProvider, "", "Model provider (gemini|openai|anthropic|offline) [env: AEGIS_PROVIDER]")
	flags.String(services.KeyModel, "", "Model name [env: AEGIS_MODEL]")

	for _, name := range []string{"log-level", "log-file", "test-mode", services.KeyRoot, services.KeyProvider, services.KeyModel} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	inspectCmd.Flags().String("id", "", "Print the full text of one message, e.g. A2")
	versionCmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed build information")

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
	if testMode {
		output.ConfigureGlobal(output.TestMode())
	}
}
