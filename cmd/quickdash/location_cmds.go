package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mdhelaluddin3391/quickdash-go/location"
)

var (
	locLat  float64
	locLng  float64
	locCity string
	locArea string
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage the browsing location",
}

var locationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active location context",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/")
		if err != nil {
			return err
		}
		defer app.close()

		display := app.locations.DisplayLocation()
		fmt.Printf("%s — %s\n", display.Label, display.Subtext)

		loc := app.locations.Context()
		if loc.Type != location.ContextNone {
			fmt.Printf("Context: %s at %.5f, %.5f", loc.Type, loc.Lat, loc.Lng)
			if loc.AddressID != "" {
				fmt.Printf(" (address %s)", loc.AddressID)
			}
			fmt.Println()
		}
		return nil
	},
}

var locationSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the browsing location by coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/")
		if err != nil {
			return err
		}
		defer app.close()

		err = app.locations.SetServiceLocation(location.ServiceInput{
			Lat:      locLat,
			Lng:      locLng,
			City:     locCity,
			AreaName: locArea,
		})
		if err != nil {
			return err
		}
		display := app.locations.DisplayLocation()
		fmt.Printf("Browsing from %s.\n", display.Label)
		return nil
	},
}

var locationClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear both location contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/")
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.locations.Clear(); err != nil {
			return err
		}
		fmt.Println("Location cleared.")
		return nil
	},
}

func init() {
	locationSetCmd.Flags().Float64Var(&locLat, "lat", 0, "Latitude")
	locationSetCmd.Flags().Float64Var(&locLng, "lng", 0, "Longitude")
	locationSetCmd.Flags().StringVar(&locCity, "city", "", "City")
	locationSetCmd.Flags().StringVar(&locArea, "area", "", "Area name")
	_ = locationSetCmd.MarkFlagRequired("lat")
	_ = locationSetCmd.MarkFlagRequired("lng")

	locationCmd.AddCommand(locationShowCmd)
	locationCmd.AddCommand(locationSetCmd)
	locationCmd.AddCommand(locationClearCmd)
}
