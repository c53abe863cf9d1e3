package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usememos/convo/internal/profile"
	"github.com/usememos/convo/server"
	"github.com/usememos/convo/server/auth"
	"github.com/usememos/convo/store"
	"github.com/usememos/convo/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "convo",
		Short: "A conversation store for code-search assistants.",
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := loadProfile()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid profile", "err", err)
				os.Exit(1)
			}

			ctx, cancel := context.WithCancel(context.Background())
			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to create db driver", "err", err)
				os.Exit(1)
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				_ = storeInstance.Close()
				slog.Error("failed to migrate", "err", err)
				os.Exit(1)
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				_ = storeInstance.Close()
				slog.Error("failed to create server", "err", err)
				os.Exit(1)
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				cancel()
				_ = storeInstance.Close()
				slog.Error("failed to start server", "err", err)
				os.Exit(1)
			}

			<-c
			s.Shutdown(ctx)
			cancel()
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile := loadProfile()
			if err := instanceProfile.Validate(); err != nil {
				return err
			}
			userID, err := cmd.Flags().GetString("user")
			if err != nil {
				return err
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			var expiresAt time.Time
			if ttl > 0 {
				expiresAt = time.Now().Add(ttl)
			}
			token, err := auth.GenerateAccessToken(userID, expiresAt, []byte(instanceProfile.Secret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign access tokens")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "secret"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	tokenCmd.Flags().String("user", "", "user id the token identifies")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	rootCmd.AddCommand(tokenCmd)

	viper.SetEnvPrefix("convo")
	viper.AutomaticEnv()
}

func loadProfile() *profile.Profile {
	return &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Secret:  viper.GetString("secret"),
		Version: version,
	}
}

func main() {
	// Load .env file if it exists.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
