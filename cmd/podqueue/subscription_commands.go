package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podqueue/internal/queue"
)

func newSubscriptionCommand(ctx *commandContext) *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manage podcast subscriptions",
	}
	subCmd.AddCommand(newSubscriptionAddCommand(ctx))
	return subCmd
}

func newSubscriptionAddCommand(ctx *commandContext) *cobra.Command {
	var title, feedURL string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a podcast subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store, _ *queue.Orderer) error {
				sub, err := store.AddSubscription(cmd.Context(), title, feedURL)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded subscription %d (%s)\n", sub.ID, sub.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Podcast title")
	cmd.Flags().StringVar(&feedURL, "url", "", "Feed URL")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
