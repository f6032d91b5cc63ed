package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the reserve-it application
var rootCmd = &cobra.Command{
	Use:   "reserve-it",
	Short: "Shows whether a calendar-backed resource is busy right now",
	Long: `reserve-it watches a Google Calendar, for example the calendar of a
meeting room, and prints "Busy" or "Available" once per second.

On first start it asks you to authorize read-only access to your calendars
and caches the token in ~/.credentials/reserver-it.json. The calendar to
watch is taken from CALENDAR_ID, which may also be set in a .env file in the
working directory.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// debugMode lowers the log level to debug for every command.
var debugMode bool

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "reserve-it version %s\n" .Version}}`)

	// If no subcommand is provided, run the watch command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "watch")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging. Can also use LOG_LEVEL=debug.")

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}
