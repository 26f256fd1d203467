// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/signet/internal/config"
	"github.com/toeirei/signet/internal/i18n"
	"golang.org/x/term"
)

// sourceCmd is the root command for source management operations.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the forges keys are fetched from",
	Long: `The 'source' command group manages key sources in the config file.
The public github and gitlab sources are built in; add entries for
self-hosted instances:
  - Add a source with a provider type and base URL
  - Remove a source (only when no signer references it)
  - List all configured sources`,
}

// sourceAddCmd adds a key source to the config file and saves it.
var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <provider> <base-url>",
	Short: "Add a key source",
	Long: `Add a key source to the config file. The provider selects the API dialect
("github" or "gitlab"); the base URL points at the instance, e.g.
https://gitlab.example.com. With --token, an access token is prompted for
and stored in the config file. Tokens can also be supplied per source via
environment variables such as SIGNET_TOKEN_GITHUB, which take precedence.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, provider, baseURL := args[0], args[1], args[2]

		var token string
		if withToken, _ := cmd.Flags().GetBool("token"); withToken {
			t, err := promptForToken(name)
			if err != nil {
				return errors.New(i18n.T("source.token_read_error", err))
			}
			token = t
		}

		if err := appConfig.AddSource(name, provider, baseURL, token); err != nil {
			if errors.Is(err, config.ErrSourceExists) {
				return errors.New(i18n.T("source.exists", name))
			}
			return err
		}
		if err := appConfig.Save(configFilePath()); err != nil {
			return err
		}
		fmt.Println(i18n.T("source.added", name, provider, baseURL))
		if token != "" {
			fmt.Println(i18n.T("source.token_saved", name))
		}
		return nil
	},
}

// sourceRemoveCmd removes a source from the config file.
var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a key source",
	Long:  `Remove a key source from the config file. Sources still referenced by a signer cannot be removed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := appConfig.RemoveSource(name); err != nil {
			var inUse *config.SourceInUseError
			if errors.As(err, &inUse) {
				return errors.New(i18n.T("source.in_use", inUse.Source, inUse.Signer))
			}
			if errors.Is(err, config.ErrSourceNotFound) {
				return errors.New(i18n.T("source.not_found", name))
			}
			return err
		}
		if err := appConfig.Save(configFilePath()); err != nil {
			return err
		}
		fmt.Println(i18n.T("source.removed", name))
		return nil
	},
}

// sourceListCmd lists the configured sources, built-in defaults included.
var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured sources",
	Long:  `Display all sources in table format. The TOKEN column shows whether a token is configured, not the token itself.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := appConfig.ModelSources()
		if len(sources) == 0 {
			fmt.Println(i18n.T("source.none"))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPROVIDER\tURL\tTOKEN")
		for _, s := range sources {
			token := "-"
			if s.Token != "" {
				token = "set"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.Provider, s.BaseURL, token)
		}
		w.Flush()

		return nil
	},
}

// promptForToken reads an access token without echoing it when stdin is a
// terminal. Piped input is read as a single line so scripts can supply
// tokens non-interactively.
func promptForToken(sourceName string) (string, error) {
	fmt.Print(i18n.T("source.token_prompt", sourceName))
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	sourceAddCmd.Flags().Bool("token", false, "prompt for an access token and store it in the config file")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceListCmd)
}
