package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel/internal/catalog"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/render"
	"github.com/oarkflow/mebel/internal/result"
)

var (
	catalogSearch   string
	catalogCategory string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the storefront catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Long: `List the products shown in the storefront, newest first.

Example:
  mebel catalog list --search sofa
  mebel catalog list --category Kursi`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogSearch != "" && catalogCategory != "" {
			return fmt.Errorf("--search and --category are exclusive")
		}
		c, err := openConsole()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var res result.Result[[]catalog.Item]
		switch {
		case strings.TrimSpace(catalogSearch) != "":
			res = c.Catalog.Search(ctx, catalogSearch)
		case catalogCategory != "" && catalogCategory != gateway.AllCategories:
			res = c.Catalog.ByCategory(ctx, catalogCategory)
		default:
			res = c.Catalog.All(ctx)
		}

		items, err := outcome(cmd.OutOrStdout(), res)
		if err != nil {
			return err
		}
		render.Catalog(cmd.OutOrStdout(), items)
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the detail page of a catalog item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		d, err := outcome(cmd.OutOrStdout(), c.Catalog.Detail(cmd.Context(), id))
		if err != nil {
			return err
		}
		render.Detail(cmd.OutOrStdout(), d)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the admin dashboard counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		summary, err := outcome(cmd.OutOrStdout(), c.Dashboard.Summary(cmd.Context()))
		if err != nil {
			return err
		}
		render.Dashboard(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	catalogListCmd.Flags().StringVarP(&catalogSearch, "search", "s", "", "search text")
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "category")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
