package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podqueue/internal/api"
	"podqueue/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and reorder the episode queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueMoveCommand(ctx))
	queueCmd.AddCommand(newQueueCheckCommand(ctx))
	queueCmd.AddCommand(newQueueRepairCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued episodes in play order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store, _ *queue.Orderer) error {
				episodes, err := store.Queue(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, api.EpisodeListResponse{Episodes: api.FromEpisodes(episodes, ctx.config.Paths.StorageDir)})
				}
				if len(episodes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(out,
					[]string{"#", "ID", "Title", "Podcast", "Length", "Size", "Downloaded"},
					buildQueueRows(episodes, ctx.config.Paths.StorageDir),
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the queue as JSON")
	return cmd
}

func buildQueueRows(episodes []*queue.Episode, storageDir string) [][]string {
	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		rows = append(rows, []string{
			ep.QueuePosition.String(),
			strconv.FormatInt(ep.ID, 10),
			ep.Title,
			valueOrDash(ep.SubscriptionTitle),
			formatMillis(ep.Duration),
			formatSize(ep.FileSize),
			yesNo(ep.IsDownloaded(storageDir)),
		})
	}
	return rows
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>",
		Short: "Append an episode to the end of the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return placeEpisode(cmd, ctx, args[0], queue.TargetEnd)
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an episode from the queue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return placeEpisode(cmd, ctx, args[0], queue.TargetNone)
		},
	}
}

func newQueueMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position|end|none>",
		Short: "Move an episode to a zero-based queue position",
		Long: "Move an episode to a zero-based queue position. Position 0 plays next.\n" +
			"\"end\" appends, \"none\" removes the episode from the queue.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := queue.ParseTarget(args[1])
			if err != nil {
				return err
			}
			return placeEpisode(cmd, ctx, args[0], target)
		},
	}
}

func placeEpisode(cmd *cobra.Command, ctx *commandContext, rawID string, target queue.Target) error {
	id, err := parseEpisodeID(rawID)
	if err != nil {
		return err
	}
	return ctx.withStore(func(store *queue.Store, orderer *queue.Orderer) error {
		if err := orderer.SetPosition(cmd.Context(), id, target); err != nil {
			return err
		}
		episode, err := store.GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		if episode == nil {
			return &queue.NotFoundError{ID: id}
		}
		out := cmd.OutOrStdout()
		if rank, ok := episode.QueuePosition.Rank(); ok {
			fmt.Fprintf(out, "Episode %d (%s) is at queue position %d\n", id, episode.Title, rank)
		} else {
			fmt.Fprintf(out, "Episode %d (%s) is not queued\n", id, episode.Title)
		}
		return nil
	})
}

func newQueueCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify queue positions are dense and unique",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store, _ *queue.Orderer) error {
				report, err := store.Check(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.String())
				if !report.OK() {
					return fmt.Errorf("queue positions need repair; run `podqueue queue repair`")
				}
				return nil
			})
		},
	}
}

func newQueueRepairCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Renumber queue positions to 0..k-1 keeping the current order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *queue.Store, orderer *queue.Orderer) error {
				changed, err := orderer.Repair(cmd.Context())
				if err != nil {
					return err
				}
				if changed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue already consistent")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renumbered %d episodes\n", changed)
				return nil
			})
		},
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
