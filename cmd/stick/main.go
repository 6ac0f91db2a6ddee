package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stick",
		Short: "Stick dispatcher",
		Long: `Stick serves the routes declared in a config file, simulates
requests against them and lists the route table.

Every flag can also be set through a STICK_ environment variable,
e.g. STICK_CACHE=redis=localhost:6379 or STICK_DEBUG=3.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (.ini or .yaml)")
	flags.Int("debug", 0, "debug verbosity")
	flags.String("cache", "", `page cache DSN ("true", "redis=host:port", "memcache=host:port", "folder=dir")`)
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("sentry-dsn", "", "report errors to Sentry")
	flags.String("env", "development", "deployment environment")

	v.SetEnvPrefix("STICK")
	v.SetEnvKeyReplacer(envKeys)
	v.AutomaticEnv()

	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newRoutesCmd(v))
	rootCmd.AddCommand(newMockCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("stick %s (%s)\n", Version, GitCommit)
		},
	}
}
