package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quickdash",
	Short: "QuickDash grocery delivery client",
	Long:  `Command-line client for the QuickDash quick-commerce platform: browse, manage your cart, check out, and track orders.`,
	Run: func(cmd *cobra.Command, args []string) {
		displayAppName("QuickDash")
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(supportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func displayAppName(name string) {
	myFigure := figure.NewFigure(name, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
