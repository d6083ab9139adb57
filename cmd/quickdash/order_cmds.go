package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mdhelaluddin3391/quickdash-go/orders"
	"github.com/Mdhelaluddin3391/quickdash-go/tracking"
)

var (
	checkoutFee float64
	cancelOrder bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the current cart (cash on delivery)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/checkout")
		if err != nil {
			return err
		}
		defer app.close()

		orderID, err := app.orders.Checkout(cmd.Context(), orders.PaymentCOD, checkoutFee)
		if err != nil {
			return err
		}
		fmt.Printf("Order placed: %s\n", orderID)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders [id]",
	Short: "List orders, or show (and optionally cancel) one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/orders")
		if err != nil {
			return err
		}
		defer app.close()

		if len(args) == 0 {
			list, err := app.orders.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			for _, order := range list {
				fmt.Printf("%-10s %-18s ₹%.2f  %s\n", order.ID, order.Status, order.TotalAmount, order.CreatedAt)
			}
			return nil
		}

		if cancelOrder {
			if err := app.orders.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Order cancelled.")
			return nil
		}

		order, err := app.orders.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Order %s: %s, ₹%.2f\n", order.ID, order.Status, order.TotalAmount)
		for _, item := range order.Items {
			fmt.Printf("  %-14s %-32s x%d\n", item.SKUCode, item.SKUName, item.Quantity)
		}
		return nil
	},
}

var trackCmd = &cobra.Command{
	Use:   "track <order-id>",
	Short: "Stream live tracking for an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/track_order")
		if err != nil {
			return err
		}
		defer app.close()

		order, err := app.orders.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Order #%s — %s\n", order.ID, order.Status)

		return app.tracker.Track(cmd.Context(), args[0], func(update tracking.Update) {
			if update.Status != "" {
				fmt.Printf("Status: %s\n", update.Status)
			}
			if update.RiderLocation != nil {
				fmt.Printf("Rider at %.5f, %.5f\n", update.RiderLocation.Lat, update.RiderLocation.Lng)
			}
		})
	},
}

func init() {
	checkoutCmd.Flags().Float64Var(&checkoutFee, "fee", 0, "Delivery fee added to the cart total")
	ordersCmd.Flags().BoolVar(&cancelOrder, "cancel", false, "Cancel the given order")
}
