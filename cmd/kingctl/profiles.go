package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"sitesmith/internal/domain"
)

func newProfilesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage stored King forensic profiles",
	}
	cmd.AddCommand(
		newProfilesListCmd(c),
		newProfilesShowCmd(c),
		newProfilesExtractCmd(c),
		newProfilesSeedCmd(c),
		newProfilesDeactivateCmd(c),
	)
	return cmd
}

func newProfilesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active profiles, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.App(cmd)
			if err != nil {
				return err
			}
			res, err := app.Forensics.Lookup(cmd.Context(), domain.LookupRequest{ListAll: true})
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "URL", "Industry", "Extracted", "Completeness"})
			for _, s := range res.Summaries {
				t.AppendRow(table.Row{s.Name, s.URL, s.Industry, s.ExtractedAt.Format(time.RFC3339), s.Completeness})
			}
			t.Render()
			return nil
		},
	}
}

func newProfilesShowCmd(c *cli) *cobra.Command {
	var url, name string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored profile by --url or --name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.App(cmd)
			if err != nil {
				return err
			}
			res, err := app.Forensics.Lookup(cmd.Context(), domain.LookupRequest{URL: url, Name: name})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Profile)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "exact King URL")
	cmd.Flags().StringVar(&name, "name", "", "case-insensitive name substring")
	cmd.MarkFlagsMutuallyExclusive("url", "name")
	cmd.MarkFlagsOneRequired("url", "name")
	return cmd
}

func newProfilesExtractCmd(c *cli) *cobra.Command {
	var req domain.ExtractRequest
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract (or serve from cache) a King profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.App(cmd)
			if err != nil {
				return err
			}
			res, err := app.Forensics.Extract(cmd.Context(), req)
			if err != nil {
				return err
			}
			if res.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", res.Warning)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"cached":           res.Cached,
				"extractedAt":      res.Profile.ExtractedAt,
				"completeness":     res.Completeness,
				"missingFields":    res.MissingFields,
				"tokensUsed":       res.TokensUsed,
				"extractionTimeMs": res.ExtractionTimeMs,
				"profile":          res.Profile.ProfileData,
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.URL, "url", "", "King URL")
	f.StringVar(&req.Name, "name", "", "business name")
	f.StringVar(&req.Industry, "industry", "", "industry tag (default general)")
	f.StringSliceVar(&req.AdditionalPages, "page", nil, "additional same-site page to include (repeatable)")
	f.BoolVar(&req.ForceRefresh, "force", false, "ignore a fresh stored profile")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProfilesSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Upsert profiles from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var profiles []domain.Profile
			if err := json.Unmarshal(raw, &profiles); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			app, err := c.App(cmd)
			if err != nil {
				return err
			}
			for _, p := range profiles {
				stored, err := app.Forensics.Seed(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s (completeness %d)\n", stored.KingURL, stored.CompletenessScore)
			}
			return nil
		},
	}
}

func newProfilesDeactivateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <url>",
		Short: "Soft-delete the stored profile for a King URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.App(cmd)
			if err != nil {
				return err
			}
			if err := app.Forensics.Deactivate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %s\n", args[0])
			return nil
		},
	}
}
