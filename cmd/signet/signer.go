// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/signet/internal/config"
	"github.com/toeirei/signet/internal/i18n"
)

// signerCmd is the root command for signer management operations.
var signerCmd = &cobra.Command{
	Use:   "signer",
	Short: "Manage the signers whose keys are resolved",
	Long: `The 'signer' command group manages the signers in the config file:
  - Add a signer with its principals and the sources to query
  - Remove a signer
  - List all configured signers

Adding or removing a signer immediately rewrites the allowed signers file
unless --no-update is given.`,
}

// signerAddCmd adds a signer to the config file and saves it.
var signerAddCmd = &cobra.Command{
	Use:   "add <name> <principal>...",
	Short: "Add a signer",
	Long: `Add a signer to the config file. The name is the account name looked up on
each source; the principals are the identities matched against signatures,
usually email addresses.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		principals := args[1:]
		if len(principals) == 0 {
			return errors.New(i18n.T("signer.principals_required"))
		}

		sources, _ := cmd.Flags().GetStringSlice("source")
		if err := appConfig.AddSigner(name, principals, sources); err != nil {
			if errors.Is(err, config.ErrSignerExists) {
				return errors.New(i18n.T("signer.exists", name))
			}
			return err
		}
		if err := appConfig.Save(configFilePath()); err != nil {
			return err
		}
		fmt.Println(i18n.T("signer.added", name, len(principals)))

		if noUpdate, _ := cmd.Flags().GetBool("no-update"); noUpdate {
			return nil
		}
		return runUpdateFlow(cmd.Context(), appConfig, "")
	},
}

// signerRemoveCmd removes a signer from the config file.
var signerRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a signer",
	Long: `Remove a signer from the config file. The following update drops the
signer's keys from the allowed signers file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := appConfig.RemoveSigner(name); err != nil {
			if errors.Is(err, config.ErrSignerNotFound) {
				return errors.New(i18n.T("signer.not_found", name))
			}
			return err
		}
		if err := appConfig.Save(configFilePath()); err != nil {
			return err
		}
		fmt.Println(i18n.T("signer.removed", name))

		if noUpdate, _ := cmd.Flags().GetBool("no-update"); noUpdate {
			return nil
		}
		return runUpdateFlow(cmd.Context(), appConfig, "")
	},
}

// signerListCmd lists the configured signers.
var signerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured signers",
	Long:  `Display all signers in table format with their principals and sources.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		signers := appConfig.ModelSigners()
		if len(signers) == 0 {
			fmt.Println(i18n.T("signer.none"))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPRINCIPALS\tSOURCES")
		for _, s := range signers {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				s.Name, strings.Join(s.Principals, ","), strings.Join(s.SourceNames, ","))
		}
		w.Flush()

		return nil
	},
}

func init() {
	signerAddCmd.Flags().StringSliceP("source", "s", nil, "source to query for this signer (repeatable, default github)")
	signerAddCmd.Flags().Bool("no-update", false, "skip rewriting the allowed signers file")
	signerRemoveCmd.Flags().Bool("no-update", false, "skip rewriting the allowed signers file")

	signerCmd.AddCommand(signerAddCmd)
	signerCmd.AddCommand(signerRemoveCmd)
	signerCmd.AddCommand(signerListCmd)
}
