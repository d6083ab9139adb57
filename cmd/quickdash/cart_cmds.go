package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/cart")
		if err != nil {
			return err
		}
		defer app.close()

		current, err := app.carts.GetCart(cmd.Context())
		if err != nil {
			return err
		}
		if len(current.Items) == 0 {
			fmt.Println("Cart is empty.")
			return nil
		}
		for _, item := range current.Items {
			fmt.Printf("%-14s %-32s x%-3d ₹%.2f\n", item.SKUCode, item.SKUName, item.Quantity, item.TotalPrice)
		}
		fmt.Printf("Total: ₹%.2f\n", current.TotalAmount)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <sku> <quantity>",
	Short: "Set the quantity of a SKU (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}

		app, err := newApp(cmd.Context(), "/cart")
		if err != nil {
			return err
		}
		defer app.close()

		current, err := app.carts.UpdateItem(cmd.Context(), args[0], quantity)
		if err != nil {
			return err
		}
		snapshot := app.carts.Snapshot()
		fmt.Printf("Cart updated: %d items, ₹%.2f\n", snapshot.Count, current.TotalAmount)
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/cart")
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.carts.ClearCart(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cart cleared.")
		return nil
	},
}

func init() {
	cartCmd.AddCommand(cartListCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartClearCmd)
}
