package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var auditOpts struct {
	dryRun    bool
	batchSize int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Repair or remove posts whose media reference is not canonical or does not resolve",
	Long: `Sweeps every post once. References that can be repaired are rewritten to
the canonical /media/<id> form, posts whose media is missing or whose
reference cannot be parsed are deleted, and posts waiting for a new image
are left alone. A post modified concurrently is reported as unchanged.

Usage examples:

	auditor audit --dry-run
	auditor audit --batch-size 500
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			report, err := a.auditor.Run(cmd.Context(), usecasecontract.AuditOptions{
				DryRun:    auditOpts.dryRun,
				BatchSize: auditOpts.batchSize,
			})
			if report != nil {
				if perr := printJSON(cmd, report); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d posts could not be processed", report.Failed)
			}
			return nil
		})
	},
}

var purgeOpts struct {
	category string
	all      bool
	dryRun   bool
}

var purgeCmd = &cobra.Command{
	Use:   "purge-media",
	Short: "Delete every media record of one category, or all media",
	Long: `Deletes all media of the given type, or of every type with --all. Posts
that referenced one of the deleted records are marked as waiting for a new
image first.

	auditor purge-media --type feed --dry-run
	auditor purge-media --all
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		categories, err := purgeCategories(purgeOpts.category, purgeOpts.all)
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app) error {
			reports, err := runPurge(cmd.Context(), a.auditor, categories, purgeOpts.dryRun)
			if len(reports) > 0 {
				if perr := printJSON(cmd, reports); perr != nil {
					return perr
				}
			}
			return err
		})
	},
}

// purgeCategories resolves the --type and --all flags.
func purgeCategories(category string, all bool) ([]entity.MediaCategory, error) {
	switch {
	case all && category != "":
		return nil, errors.New("--type and --all are mutually exclusive")
	case all:
		return entity.MediaCategories(), nil
	case category == "":
		return nil, errors.New("one of --type or --all is required")
	default:
		return []entity.MediaCategory{entity.MediaCategory(category)}, nil
	}
}

// runPurge purges each category in turn and stops at the first failure,
// returning the reports gathered so far.
func runPurge(ctx context.Context, auditor usecasecontract.IIntegrityAuditor, categories []entity.MediaCategory, dryRun bool) ([]*entity.PurgeReport, error) {
	reports := make([]*entity.PurgeReport, 0, len(categories))
	for _, category := range categories {
		report, err := auditor.PurgeCategory(ctx, category, dryRun)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, fmt.Errorf("purge %s: %w", category, err)
		}
	}
	return reports, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print media, post and user counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			stats, err := a.auditor.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		})
	},
}

var tokenOpts struct {
	username string
	password string
	scopes   []string
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Fetch an identity token from the provider with the password grant",
	Long: `Requests a token from IDP_TOKEN_URL using IDP_CLIENT_ID and
IDP_CLIENT_SECRET and prints the id_token, ready to be sent as a bearer
credential to the API.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IDPTokenURL == "" || cfg.IDPClientID == "" {
			return errors.New("IDP_TOKEN_URL and IDP_CLIENT_ID must be set")
		}
		if tokenOpts.username == "" {
			return errors.New("--username is required")
		}

		oc := &oauth2.Config{
			ClientID:     cfg.IDPClientID,
			ClientSecret: cfg.IDPClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.IDPTokenURL},
			Scopes:       tokenOpts.scopes,
		}
		tok, err := oc.PasswordCredentialsToken(cmd.Context(), tokenOpts.username, tokenOpts.password)
		if err != nil {
			return fmt.Errorf("token request failed: %w", err)
		}
		idToken, _ := tok.Extra("id_token").(string)
		if idToken == "" {
			return errors.New("provider response carried no id_token")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), idToken)
		return err
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditOpts.dryRun, "dry-run", false, "report what would change without writing")
	auditCmd.Flags().IntVar(&auditOpts.batchSize, "batch-size", 0, "posts per batch (default AUDIT_BATCH_SIZE)")

	purgeCmd.Flags().StringVar(&purgeOpts.category, "type", "", "media type to purge: profile, post or feed")
	purgeCmd.Flags().BoolVar(&purgeOpts.all, "all", false, "purge media of every type")
	purgeCmd.Flags().BoolVar(&purgeOpts.dryRun, "dry-run", false, "report what would be deleted without writing")

	tokenCmd.Flags().StringVar(&tokenOpts.username, "username", "", "account name at the provider")
	tokenCmd.Flags().StringVar(&tokenOpts.password, "password", "", "account password")
	tokenCmd.Flags().StringSliceVar(&tokenOpts.scopes, "scope", []string{"openid", "email", "profile"}, "requested scopes")
}
