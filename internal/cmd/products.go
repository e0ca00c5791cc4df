package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/render"
	"github.com/oarkflow/mebel/internal/result"
)

var (
	productList  listFlags
	productInput productFlags
	stockAdd     bool
	stockSub     bool
)

// productFlags back the create and update flags.
type productFlags struct {
	name        string
	category    string
	description string
	unit        string
	stock       int64
	price       string
	threshold   int64
	discount    int64
	status      string
	image       string
}

func (p *productFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.name, "name", "", "product name")
	fs.StringVar(&p.category, "category", "", "category")
	fs.StringVar(&p.description, "description", "", "description")
	fs.StringVar(&p.unit, "unit", "", "unit, e.g. pcs or set")
	fs.Int64Var(&p.stock, "stock", 0, "stock on hand")
	fs.StringVar(&p.price, "price", "", "unit price, e.g. 1250000 or Rp1.250.000")
	fs.Int64Var(&p.threshold, "threshold", 0, "low stock threshold")
	fs.Int64Var(&p.discount, "discount", 0, "discount in percent")
	fs.StringVar(&p.status, "status", "", "status (aktif|menipis|nonaktif)")
	fs.StringVar(&p.image, "image", "", "image URL or local file")
}

// fields collects the flags that were set on the command line.
func (p *productFlags) fields(fs *pflag.FlagSet) (gateway.ProductFields, error) {
	var f gateway.ProductFields
	if fs.Changed("name") {
		f.Name = gateway.Text(p.name)
	}
	if fs.Changed("category") {
		f.Category = gateway.Text(p.category)
	}
	if fs.Changed("description") {
		f.Description = gateway.Text(p.description)
	}
	if fs.Changed("unit") {
		f.Unit = gateway.Text(p.unit)
	}
	if fs.Changed("stock") {
		f.Stock = gateway.Num(p.stock)
	}
	if fs.Changed("price") {
		price, err := render.ParseRupiah(p.price)
		if err != nil {
			return f, fmt.Errorf("invalid price %q", p.price)
		}
		f.Price = gateway.Num(price.String())
	}
	if fs.Changed("threshold") {
		f.LowStockThreshold = gateway.Num(p.threshold)
	}
	if fs.Changed("discount") {
		if p.discount < 0 || p.discount > 100 {
			return f, fmt.Errorf("discount must be between 0 and 100")
		}
		f.Discount = gateway.Num(p.discount)
	}
	if fs.Changed("status") {
		status, err := gateway.ParseStatus(p.status)
		if err != nil {
			return f, err
		}
		f.Status = gateway.StatusPtr(status)
	}
	if fs.Changed("image") {
		img, err := imageInput(p.image)
		if err != nil {
			return f, err
		}
		f.Image = gateway.Text(img)
	}
	return f, nil
}

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Manage products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `List one page of products.

Example:
  mebel products list --search meja --sort harga --order asc
  mebel products list --status menipis`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		q, err := productList.query(c.ProductView)
		if err != nil {
			return err
		}
		page, err := outcome(cmd.OutOrStdout(), c.Products.List(cmd.Context(), q))
		if err != nil {
			return err
		}
		render.Products(cmd.OutOrStdout(), page)
		return nil
	},
}

var productsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through products interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConsole()
		if err != nil {
			return err
		}
		b := &browser[gateway.Product]{
			ctl:     c.ProductList(),
			render:  render.Products,
			filters: map[string]string{"c": "kategori", "st": "status"},
			toggle: func(ctx context.Context, id int64) result.Result[gateway.Product] {
				current := c.Products.Get(ctx, id)
				if !current.OK() {
					return current
				}
				next, err := toggleStatus(current.Data().Status)
				if err != nil {
					return result.Fail[gateway.Product](err)
				}
				return c.Products.UpdateStatus(ctx, id, next)
			},
		}
		return b.run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var productsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one product",
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
		p, err := outcome(cmd.OutOrStdout(), c.Products.Get(cmd.Context(), id))
		if err != nil {
			return err
		}
		render.Product(cmd.OutOrStdout(), p)
		return nil
	},
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product",
	Long: `Add a product. Name, category, price and stock are required.

Example:
  mebel products create --name "Meja Lipat" --category Meja --price 450000 --stock 12 --image ./meja.jpg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := productInput.fields(cmd.Flags())
		if err != nil {
			return err
		}
		if fields.Stock == nil {
			return fmt.Errorf("--stock is required")
		}
		if err := fields.Validate(true); err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		p, err := outcome(cmd.OutOrStdout(), c.Products.Create(cmd.Context(), fields))
		if err != nil {
			return err
		}
		render.Product(cmd.OutOrStdout(), p)
		return nil
	},
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change a product",
	Long:  `Change a product. Only the flags given are sent.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		fields, err := productInput.fields(cmd.Flags())
		if err != nil {
			return err
		}
		if fields == (gateway.ProductFields{}) {
			return fmt.Errorf("nothing to update")
		}
		if err := fields.Validate(false); err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		p, err := outcome(cmd.OutOrStdout(), c.Products.Update(cmd.Context(), id, fields))
		if err != nil {
			return err
		}
		render.Product(cmd.OutOrStdout(), p)
		return nil
	},
}

var productsStockCmd = &cobra.Command{
	Use:   "stock ID N",
	Short: "Set or adjust the stock of a product",
	Long: `Set the stock of a product to N, or with --add / --subtract move it
by N. Subtracting never goes below zero.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("stock must be a non-negative number")
		}
		if stockAdd && stockSub {
			return fmt.Errorf("--add and --subtract are exclusive")
		}

		c, err := openConsole()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		stock := n
		if stockAdd || stockSub {
			current, err := outcome(out, c.Products.Get(ctx, id))
			if err != nil {
				return err
			}
			stock = gateway.AdjustedStock(current.Stock, n, stockAdd)
		}

		p, err := outcome(out, c.Products.Update(ctx, id, gateway.ProductFields{Stock: gateway.Num(stock)}))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: stok %d\n", p.Name, p.Stock)
		return nil
	},
}

var productsStatusCmd = &cobra.Command{
	Use:       "status ID STATUS",
	Short:     "Change the status of a product",
	ValidArgs: []string{"aktif", "nonaktif"},
	Args:      cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status := gateway.Status(args[1])
		if !status.Toggleable() {
			return fmt.Errorf("status must be aktif or nonaktif")
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		_, err = outcome(cmd.OutOrStdout(), c.Products.UpdateStatus(cmd.Context(), id, status))
		return err
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete products",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		c, err := openConsole()
		if err != nil {
			return err
		}
		return deleteAll(cmd, ids, c.Products.Delete)
	},
}

func init() {
	productList.register(productsListCmd,
		filterFlag{flag: "category", filter: "kategori", usage: "filter by category"},
		filterFlag{flag: "status", filter: "status", usage: "filter by status (aktif|menipis|nonaktif)"},
	)
	productInput.register(productsCreateCmd.Flags())
	productInput.register(productsUpdateCmd.Flags())
	productsStockCmd.Flags().BoolVar(&stockAdd, "add", false, "add N to the current stock")
	productsStockCmd.Flags().BoolVar(&stockSub, "subtract", false, "take N from the current stock")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsBrowseCmd)
	productsCmd.AddCommand(productsShowCmd)
	productsCmd.AddCommand(productsCreateCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsStockCmd)
	productsCmd.AddCommand(productsStatusCmd)
	productsCmd.AddCommand(productsDeleteCmd)
}
