package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginPhone string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a phone number and OTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/auth")
		if err != nil {
			return err
		}
		defer app.close()

		if app.store.LoggedIn() && !app.store.TokenExpired() {
			fmt.Println("Already logged in.")
			return nil
		}

		phone := loginPhone
		in := bufio.NewReader(os.Stdin)
		if phone == "" {
			fmt.Print("Mobile number (10 digits): ")
			line, err := in.ReadString('\n')
			if err != nil {
				return err
			}
			phone = strings.TrimSpace(line)
		}

		res, err := app.auth.SendOTP(cmd.Context(), phone)
		if err != nil {
			return err
		}
		if res.DebugOTP != "" {
			fmt.Printf("Dev OTP: %s\n", res.DebugOTP)
		} else {
			fmt.Println("OTP sent.")
		}

		fmt.Print("Enter OTP: ")
		line, err := in.ReadString('\n')
		if err != nil {
			return err
		}
		if err := app.auth.VerifyOTP(cmd.Context(), phone, strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Println("Login successful.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/")
		if err != nil {
			return err
		}
		defer app.close()

		if err := app.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPhone, "phone", "p", "", "Mobile number (10 digits)")
}
