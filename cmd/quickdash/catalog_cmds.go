package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Mdhelaluddin3391/quickdash-go/catalog"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
)

var (
	productsSearch string
	productsSlug   string
	productsPage   int
	feedPage       int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/catalog")
		if err != nil {
			return err
		}
		defer app.close()

		page, err := app.catalog.Products(cmd.Context(), productsSlug, productsSearch, productsPage)
		if err != nil {
			return err
		}
		if len(page.Results) == 0 {
			fmt.Println("No products found.")
			return nil
		}
		for _, p := range page.Results {
			printProduct(p)
		}
		if page.Count > 0 {
			fmt.Printf("%d items total\n", page.Count)
		}
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <sku>",
	Short: "Show a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/product")
		if err != nil {
			return err
		}
		defer app.close()

		p, err := app.catalog.Product(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printProduct(*p)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the storefront feed for the active location",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/")
		if err != nil {
			return err
		}
		defer app.close()

		loc := app.locations.Context()
		if loc.Type == location.ContextNone {
			// No location: fall back to the generic feed.
			page, err := app.catalog.Feed(cmd.Context(), feedPage)
			if err != nil {
				return err
			}
			for _, section := range page.Sections {
				fmt.Printf("== %s ==\n", section.Title)
				for _, p := range section.Products {
					printProduct(p)
				}
			}
			return nil
		}

		display := app.locations.DisplayLocation()
		fmt.Printf("Shopping at: %s (%s)\n\n", display.Label, display.Subtext)

		page, err := app.catalog.Storefront(cmd.Context(), loc.Lat, loc.Lng, "", feedPage)
		if err != nil {
			return err
		}
		if !page.IsServiceable() {
			return errors.New("this location is not serviceable yet")
		}
		for _, category := range page.Categories {
			if len(category.Products) == 0 {
				continue
			}
			fmt.Printf("== %s ==\n", category.Name)
			for _, p := range category.Products {
				printProduct(p)
			}
		}
		return nil
	},
}

func printProduct(p catalog.Product) {
	stock := ""
	if !p.InStock {
		stock = "  [out of stock]"
	}
	fmt.Printf("%-14s %-32s ₹%.2f / %s%s\n", p.SKUCode, p.Name, p.Price, p.Unit, stock)
}

func init() {
	productsCmd.Flags().StringVarP(&productsSearch, "search", "s", "", "Search query")
	productsCmd.Flags().StringVarP(&productsSlug, "category", "c", "", "Category slug")
	productsCmd.Flags().IntVar(&productsPage, "page", 1, "Page number")
	feedCmd.Flags().IntVar(&feedPage, "page", 1, "Page number")
}
