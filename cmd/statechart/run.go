package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/internal/config"
	"github.com/comalice/statechart/internal/logging"
	"github.com/comalice/statechart/internal/production"
	"github.com/comalice/statechart/realtime"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <chart>",
		Short: "Feed events to a chart and print the final configuration",
		Long: `Spawns the chart as an actor on the selected runtime, delivers the events
in order, waits for the actor to drain its mailbox, and prints the active
leaf states one per line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			if rt, _ := cmd.Flags().GetString("runtime"); rt != "" {
				cfg.Runtime = rt
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			d, err := loadDescriptor(args[0], logger)
			if err != nil {
				return err
			}
			names, _ := cmd.Flags().GetStringSlice("events")
			events := make([]statechart.Event, 0, len(names))
			for _, name := range names {
				if name = strings.TrimSpace(name); name != "" {
					events = append(events, statechart.NewEvent(name, nil))
				}
			}

			observers := statechart.Observers{logging.NewObserver(logger, d)}
			var (
				trace chan production.PublishedTransition
				pub   *production.ChannelPublisher
			)
			if on, _ := cmd.Flags().GetBool("trace"); on {
				trace = make(chan production.PublishedTransition, len(events)+1)
				pub = production.NewChannelPublisher(trace, d)
				observers = append(observers, pub)
			}
			m, err := statechart.New(d, statechart.NewVars(d.InitialContext()), statechart.WithObserver(observers))
			if err != nil {
				return err
			}
			h := actor.NewMachineHandler(m)

			logger.Debug("running chart", "chart", d.ID(), "runtime", cfg.Runtime, "events", len(events))
			if cfg.Runtime == config.RuntimeRealtime {
				err = runRealtime(cmd.Context(), cfg, logger, d.ID(), h, events)
			} else {
				err = runAsync(cmd.Context(), cfg, logger, d.ID(), h, events)
			}

			out := cmd.OutOrStdout()
			if pub != nil {
				pub.Close()
				printTrace(out, trace)
			}
			if err != nil {
				return err
			}
			for _, name := range m.StateNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("events", nil, "Comma-separated events to deliver in order")
	cmd.Flags().String("runtime", "", "Runtime adapter: async or realtime (default from config)")
	cmd.Flags().Bool("trace", false, "Print every step before the final configuration")
	return cmd
}

func runAsync(ctx context.Context, cfg *config.Config, logger *slog.Logger, name string, h *actor.MachineHandler[statechart.Vars], events []statechart.Event) error {
	sys := actor.NewSystem(ctx, actor.WithLogger(logger), actor.WithFaultPolicy(actor.Escalate))
	addr, err := actor.Spawn[statechart.Event](sys, h, cfg.MailboxCapacity, actor.WithName(name))
	if err != nil {
		return err
	}
	for _, evt := range events {
		if err := addr.Send(ctx, evt); err != nil {
			break
		}
	}
	addr.Close()
	return sys.Wait()
}

func runRealtime(ctx context.Context, cfg *config.Config, logger *slog.Logger, name string, h *actor.MachineHandler[statechart.Vars], events []statechart.Event) error {
	s := realtime.NewScheduler(realtime.Config{
		TickRate:         cfg.TickRate,
		MaxEventsPerPoll: cfg.MaxEventsPerPoll,
		MaxActors:        cfg.MaxActors,
		Logger:           logger,
	})
	addr, err := realtime.Spawn[statechart.Event](s, h, cfg.MailboxCapacity, name)
	if err != nil {
		return err
	}
	for _, evt := range events {
		if err := addr.Send(ctx, evt); err != nil {
			break
		}
	}
	addr.Close()
	return s.Run(ctx)
}

func printTrace(w io.Writer, trace <-chan production.PublishedTransition) {
	for rec := range trace {
		if rec.Ignored {
			fmt.Fprintf(w, "# %s: ignored\n", rec.Event.Type)
			continue
		}
		fmt.Fprintf(w, "# %s: exit [%s] enter [%s]\n",
			rec.Event.Type, strings.Join(rec.Exited, " "), strings.Join(rec.Entered, " "))
	}
}

// initialStates returns the configuration a fresh machine starts in.
func initialStates(d *statechart.Descriptor[statechart.Vars]) []string {
	m, err := statechart.New(d, statechart.NewVars(d.InitialContext()))
	if err != nil {
		return nil
	}
	return m.StateNames()
}
