package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	ticketOrderID string
	ticketSubject string
)

var supportCmd = &cobra.Command{
	Use:   "support",
	Short: "Support tickets and assistant chat",
}

var supportTicketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List support tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/support")
		if err != nil {
			return err
		}
		defer app.close()

		tickets, err := app.support.ListTickets(cmd.Context())
		if err != nil {
			// Offline fallback: show whatever the cache holds.
			cached := app.support.CachedTickets()
			if len(cached) == 0 {
				return err
			}
			fmt.Println("(offline, showing cached tickets)")
			tickets = cached
		}
		if len(tickets) == 0 {
			fmt.Println("No tickets.")
			return nil
		}
		for _, t := range tickets {
			fmt.Printf("%-10s %-10s %s\n", t.ID, t.Status, t.Subject)
		}
		return nil
	},
}

var supportNewCmd = &cobra.Command{
	Use:   "new <message>",
	Short: "File a support ticket",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/support")
		if err != nil {
			return err
		}
		defer app.close()

		subject := ticketSubject
		if subject == "" {
			subject = "Order Issue"
		}
		ticket, err := app.support.CreateTicket(cmd.Context(), ticketOrderID, subject, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Ticket %s created.\n", ticket.ID)
		return nil
	},
}

var supportChatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the support assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), "/support")
		if err != nil {
			return err
		}
		defer app.close()

		reply, err := app.support.Chat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	},
}

func init() {
	supportNewCmd.Flags().StringVar(&ticketOrderID, "order", "", "Order id the ticket is about")
	supportNewCmd.Flags().StringVar(&ticketSubject, "subject", "", "Ticket subject")

	supportCmd.AddCommand(supportTicketsCmd)
	supportCmd.AddCommand(supportNewCmd)
	supportCmd.AddCommand(supportChatCmd)
}
