// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for Signet using the
// Cobra library. It defines the root command, subcommands (like update,
// signer, source), flags, and the main entry point for execution.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/signet/buildvars"
	"github.com/toeirei/signet/internal/config"
	"github.com/toeirei/signet/internal/db"
	"github.com/toeirei/signet/internal/i18n"
	"github.com/toeirei/signet/internal/logging"
)

var cfgFile string
var verbosity int

// appConfig holds the configuration resolved during PersistentPreRunE.
// Command bodies read it and, for the signer/source commands, mutate it.
var appConfig *config.Config

// main is the entry point of the application.
func main() {
	if err := rootCmd.Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

var rootCmd *cobra.Command

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()

	// Set defaults in viper. These are used if not set in the config file or by flags.
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.dsn", "./signet.db")
	viper.SetDefault("language", "en")
}

// newRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signet",
		Short: "Signet keeps an OpenSSH allowed_signers file in sync with your forges.",
		Long: `Signet resolves the SSH signing keys your signers publish on GitHub or
GitLab and writes them to the allowed_signers file Git consults when
verifying signed commits and tags. The file is rebuilt from scratch on
every update; the forges remain the source of truth.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetVerbosity(verbosity)
			// Viper has already read the config by this point.
			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}
			appConfig = cfg
			i18n.Init(cfg.Language)
			if err := db.InitDB(cfg.Database.Type, cfg.Database.Dsn); err != nil {
				return errors.New(i18n.T("config.error_init_db", err))
			}
			return nil
		},
	}

	// Add subcommands to the newly created root command.
	cmd.AddCommand(updateCmd)
	cmd.AddCommand(signerCmd)
	cmd.AddCommand(sourceCmd)
	cmd.AddCommand(historyCmd)
	cmd.AddCommand(backupCmd)
	cmd.AddCommand(restoreCmd)

	// Set version
	cmd.Version = buildvars.VersionOrDefault("dev")

	// Define flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signet.yaml or ./.signet.yaml)")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v for info, -vv for debug)")
	cmd.PersistentFlags().String("db-type", "sqlite", "Database type (e.g., sqlite, postgres)")
	cmd.PersistentFlags().String("db-dsn", "./signet.db", "Database connection string (DSN)")
	cmd.PersistentFlags().String("lang", "en", `Output language ("en", "de")`)

	// Bind flags to viper
	viper.BindPFlag("database.type", cmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("database.dsn", cmd.PersistentFlags().Lookup("db-dsn"))
	viper.BindPFlag("language", cmd.PersistentFlags().Lookup("lang"))

	return cmd
}

// defaultConfigPath is where a default config file is created when none is
// found anywhere in the search path.
const defaultConfigPath = ".signet.yaml"

// defaultConfigContent is the commented template written on first run.
const defaultConfigContent = `# Signet configuration file.
# This file is automatically generated with default values.
# You can modify these settings to configure Signet.

# The allowed signers file to write. When unset, Signet falls back to
# gpg.ssh.allowedsignersfile from your git configuration.
#allowed_signers: ~/.config/git/allowed_signers

database:
  # The type of database used for run history and key state.
  # Supported values: "sqlite", "postgres", "mysql".
  type: sqlite

  # The Data Source Name (DSN) for the database connection.
  # For SQLite, this is the path to the database file.
  dsn: ./signet.db

# The output language. Supported: "en", "de".
language: en

# Signers are the people whose signing keys get resolved. Each signer has
# one or more principals (the identities checked against signatures, usually
# email addresses) and the sources to query. Manage them with
# 'signet signer add' and 'signet signer remove'.
#signers:
#  - name: octocat
#    principals:
#      - octocat@github.com
#    sources:
#      - github

# Sources are the forges keys are fetched from. "github" and "gitlab" are
# built in; add entries for self-hosted instances. Tokens can also be
# supplied via environment variables, e.g. SIGNET_TOKEN_GITHUB.
#sources:
#  - name: company-gitlab
#    provider: gitlab
#    url: https://gitlab.example.com
#    token: glpat-...
`

// initConfig reads in a configuration file and environment variables.
// It uses Viper to search for a config file (e.g., .signet.yaml) in the home
// and current directories. If a config file is not found, it attempts to create
// a default one. It also binds environment variables prefixed with "SIGNET".
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory and current directory with name ".signet" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".signet")
	}

	viper.SetEnvPrefix("SIGNET")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can create one with default values
		// to make configuration discoverable for the user.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// We only do this if no config file was found and none was specified
			// via flag. If writing fails (e.g., due to permissions), we don't
			// treat it as a fatal error. The app simply runs with the defaults
			// set in memory. The file is owner-only since it may hold tokens.
			if err := os.WriteFile(defaultConfigPath, []byte(defaultConfigContent), 0o600); err == nil {
				fmt.Println(i18n.T("config.created_default", defaultConfigPath))
			}
		}
	}
}

// configFilePath returns the file configuration mutations are saved to: the
// file viper loaded, or the default path when running without one.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigPath
}

// promptForConfirmation displays a prompt and reads a line from stdin.
func promptForConfirmation(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer))
}
