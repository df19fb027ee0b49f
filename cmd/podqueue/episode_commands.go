package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"podqueue/internal/api"
	"podqueue/internal/queue"
)

func newEpisodeCommand(ctx *commandContext) *cobra.Command {
	episodeCmd := &cobra.Command{
		Use:   "episode",
		Short: "Record and inspect episodes",
	}
	episodeCmd.AddCommand(newEpisodeAddCommand(ctx))
	episodeCmd.AddCommand(newEpisodeShowCommand(ctx))
	episodeCmd.AddCommand(newEpisodeListCommand(ctx))
	return episodeCmd
}

func newEpisodeAddCommand(ctx *commandContext) *cobra.Command {
	var (
		input   queue.NewEpisode
		pubDate string
		enqueue bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an episode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(pubDate) != "" {
				parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(pubDate))
				if err != nil {
					return fmt.Errorf("parse --pub-date: %w", err)
				}
				input.PubDate = parsed
			}
			return ctx.withStore(func(store *queue.Store, orderer *queue.Orderer) error {
				episode, err := store.AddEpisode(cmd.Context(), input)
				if err != nil {
					return err
				}
				if enqueue {
					if err := orderer.AddToQueue(cmd.Context(), episode.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded episode %d (%s)\n", episode.ID, episode.Title)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input.Title, "title", "", "Episode title")
	flags.StringVar(&input.GUID, "guid", "", "Feed GUID (random when omitted)")
	flags.Int64Var(&input.SubscriptionID, "subscription", 0, "Owning subscription id")
	flags.StringVar(&input.MediaURL, "url", "", "Media URL")
	flags.StringVar(&input.Link, "link", "", "Episode web page")
	flags.StringVar(&input.Description, "description", "", "Episode description")
	flags.Int64Var(&input.FileSize, "size", 0, "Expected payload size in bytes")
	flags.Int64Var(&input.Duration, "duration", 0, "Playback length in milliseconds")
	flags.StringVar(&pubDate, "pub-date", "", "Publication date (RFC3339)")
	flags.BoolVar(&enqueue, "queue", false, "Append the episode to the queue")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEpisodeShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEpisodeID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store, _ *queue.Orderer) error {
				episode, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if episode == nil {
					return &queue.NotFoundError{ID: id}
				}
				storageDir := ctx.config.Paths.StorageDir
				if asJSON {
					return writeJSON(cmd, api.EpisodeResponse{Episode: api.FromEpisode(episode, storageDir)})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %d\n", episode.ID)
				fmt.Fprintf(out, "Title:       %s\n", episode.Title)
				fmt.Fprintf(out, "Podcast:     %s\n", valueOrDash(episode.SubscriptionTitle))
				fmt.Fprintf(out, "Queue:       %s\n", episode.QueuePosition)
				fmt.Fprintf(out, "Published:   %s\n", formatPubDate(episode.PubDate))
				fmt.Fprintf(out, "Length:      %s\n", formatMillis(episode.Duration))
				fmt.Fprintf(out, "Size:        %s\n", formatSize(episode.FileSize))
				fmt.Fprintf(out, "Downloaded:  %s\n", yesNo(episode.IsDownloaded(storageDir)))
				fmt.Fprintf(out, "File:        %s\n", valueOrDash(episode.Filename(storageDir)))
				fmt.Fprintf(out, "Media URL:   %s\n", valueOrDash(episode.MediaURL))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the episode as JSON")
	return cmd
}

func newEpisodeListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded episode, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store, _ *queue.Orderer) error {
				episodes, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(episodes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No episodes recorded")
					return nil
				}
				rows := make([][]string, 0, len(episodes))
				for _, ep := range episodes {
					rows = append(rows, []string{
						fmt.Sprint(ep.ID),
						ep.Title,
						valueOrDash(ep.SubscriptionTitle),
						formatPubDate(ep.PubDate),
						ep.QueuePosition.String(),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(out,
					[]string{"ID", "Title", "Podcast", "Published", "Queue"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
