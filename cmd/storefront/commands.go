// cmd/storefront/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kanistore/storefront/internal/appstate"
	"github.com/kanistore/storefront/internal/browser"
	"github.com/kanistore/storefront/internal/client"
	"github.com/kanistore/storefront/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive catalog browser",
	RunE:  runBrowse,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _ := newBrowser()
		defer b.Close()

		if err := b.LoadCategories(cmd.Context()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range b.View().Categories {
			fmt.Fprintf(out, "%s\t%s\n", c.ID, c.Name)
		}
		return nil
	},
}

var subcategoriesCmd = &cobra.Command{
	Use:   "subcategories <category-name>",
	Short: "List the subcategories of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _ := newBrowser()
		defer b.Close()

		if err := b.SelectCategory(cmd.Context(), args[0]); err != nil {
			return err
		}
		b.VerifyImages(cmd.Context())

		out := cmd.OutOrStdout()
		subs := b.View().Subcategories
		if len(subs) == 0 {
			fmt.Fprintln(out, "No subcategories")
		}
		for _, s := range subs {
			fmt.Fprintf(out, "%s\t%s\t%s\n", s.ID, s.Name, b.SubcategoryImage(s))
		}
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products <subcategory-id>",
	Short: "List the products of a subcategory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _ := newBrowser()
		defer b.Close()

		if err := b.SelectSubcategory(cmd.Context(), client.Subcategory{ID: args[0]}); err != nil {
			return err
		}
		view := b.View()
		if view.NoProducts {
			fmt.Fprintln(cmd.OutOrStdout(), "No products available")
			return nil
		}
		printProducts(cmd.OutOrStdout(), view.Products)
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <product-id>",
	Short: "Show a product with its related products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _ := newBrowser()
		defer b.Close()

		if err := b.OpenProduct(cmd.Context(), args[0]); err != nil {
			return err
		}
		b.VerifyImages(cmd.Context())

		detail := b.View().Detail
		out := cmd.OutOrStdout()

		p := detail.Product
		fmt.Fprintf(out, "%s\n", p.ProductName)
		if p.BrandName != "" {
			fmt.Fprintf(out, "Brand: %s\n", p.BrandName)
		}
		fmt.Fprintf(out, "Price: %s\n", priceText(browser.PriceOf(p, "")))
		for _, o := range p.QuantityOptions {
			fmt.Fprintf(out, "  %s\t%s\n", o.Quantity, browser.FormatPrice(o.Price))
		}
		fmt.Fprintf(out, "Image: %s\n", b.Images().Source(detail.ActiveImage))
		if desc := browser.DescriptionText(p.Description); desc != "" {
			fmt.Fprintf(out, "\n%s\n", desc)
		}
		if len(detail.Related) > 0 {
			fmt.Fprintln(out, "\nRelated products:")
			printProducts(out, detail.Related)
		}
		return nil
	},
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Check the configured shopper credentials",
	Long: `signin signs in with auth.email (or --email) and the password from
STOREFRONT_AUTH_PASSWORD, then prints the shopper it signed in as. The
browser signs in the same way when an email is configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.Email == "" {
			return errors.New("set auth.email or --email to sign in")
		}

		store := appstate.NewMemoryStore()
		if err := signIn(cmd.Context(), store); err != nil {
			return err
		}
		user := store.Get().User
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search products by name, brand or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, search := newBrowser()

		if err := search.SetQuery(cmd.Context(), strings.Join(args, " ")); err != nil {
			return err
		}
		view := search.View()
		if view.Empty() {
			fmt.Fprintln(cmd.OutOrStdout(), view.Text())
			return nil
		}
		printProducts(cmd.OutOrStdout(), view.Results)
		return nil
	},
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store := appstate.NewMemoryStore()
	if err := signIn(ctx, store); err != nil {
		return err
	}

	b := browser.New(api, store, browser.OptionsFromConfig(cfg.UI))
	defer b.Close()

	debounce := time.Duration(cfg.UI.SearchDebounceMs) * time.Millisecond
	model := tui.New(ctx, b, browser.NewSearchOverlay(api), store, debounce)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	detach := model.Attach(program.Send)
	defer detach()

	_, err := program.Run()
	return err
}

func printProducts(out io.Writer, products []client.Product) {
	for _, p := range products {
		fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, p.ProductName, priceText(browser.PriceOf(p, "")))
	}
}

func priceText(d browser.PriceDisplay) string {
	text := browser.FormatPrice(d.Current)
	if d.Label != "" {
		text += " (" + d.Label + ")"
	}
	if d.HasStruck() {
		text += " was " + browser.FormatPrice(d.Struck.Decimal)
	}
	return text
}
