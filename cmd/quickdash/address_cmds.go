package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage saved addresses",
}

var addressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/addresses")
		if err != nil {
			return err
		}
		defer app.close()

		list, err := app.addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No addresses saved yet.")
			return nil
		}
		selected := app.locations.Context().AddressID
		for _, addr := range list {
			marker := " "
			if addr.ID == selected {
				marker = "*"
			}
			fmt.Printf("%s %-10s %-8s %s, %s - %s\n", marker, addr.ID, addr.Label, addr.AddressText, addr.City, addr.Pincode)
		}
		return nil
	},
}

var addressSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Use an address for delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/addresses")
		if err != nil {
			return err
		}
		defer app.close()

		list, err := app.addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, addr := range list {
			if addr.ID == args[0] {
				if err := app.addresses.Select(addr); err != nil {
					return err
				}
				fmt.Printf("Delivering to %s (%s).\n", addr.Label, addr.City)
				return nil
			}
		}
		return errors.Errorf("no saved address with id %q", args[0])
	},
}

var addressDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/addresses")
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.addresses.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Address deleted.")
		return nil
	},
}

func init() {
	addressCmd.AddCommand(addressListCmd)
	addressCmd.AddCommand(addressSelectCmd)
	addressCmd.AddCommand(addressDeleteCmd)
}
