package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newIndustriesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "industries",
		Short: "Browse the industry catalog",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List industries, optionally filtered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := c.Catalog()
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Category", "Sections"})

			categories := cat.Industries.Categories()
			if category != "" {
				categories = []string{category}
			}
			for _, name := range categories {
				for _, ind := range cat.Industries.ListByCategory(name) {
					t.AppendRow(table.Row{ind.ID, ind.Name, ind.Category, len(ind.Sections)})
				}
			}
			t.Render()
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "only show this category")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the resolved industry record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.Catalog()
			if err != nil {
				return err
			}
			ind, hit := cat.Industries.Resolve(args[0])
			if !hit {
				fmt.Fprintf(cmd.ErrOrStderr(), "industry %q not in catalog, showing fallback %q\n", args[0], ind.ID)
			}
			return printJSON(cmd.OutOrStdout(), ind)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func newTemplatesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse hero templates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List template keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := c.Catalog()
			if err != nil {
				return err
			}
			for _, k := range cat.Templates.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	})
	return cmd
}
