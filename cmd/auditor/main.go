// Command auditor runs maintenance jobs against the Snapfeed store: the media
// reference integrity sweep, category purges, collection stats and fetching a
// test identity token from the configured provider.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "auditor",
	Short:         "Snapfeed maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mongo-uri", "", "MongoDB connection string (MONGODB_URI)")
	flags.String("db", "", "MongoDB database name (MONGODB_DB_NAME)")
	flags.String("redis-url", "", "Redis URL whose feed cache is invalidated after changes (REDIS_URL)")
	flags.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	for key, name := range map[string]string{
		"MONGODB_URI":     "mongo-uri",
		"MONGODB_DB_NAME": "db",
		"REDIS_URL":       "redis-url",
		"LOG_LEVEL":       "log-level",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}

	rootCmd.AddCommand(auditCmd, purgeCmd, statsCmd, tokenCmd)
}

// loadConfig reads the environment with any flags given on the command line
// taking precedence.
func loadConfig() (*config.Config, error) {
	return config.LoadFrom(viper.GetViper())
}

// printJSON writes v to stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
