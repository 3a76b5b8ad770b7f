package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/consultation-scheduling/internal/app"
	"github.com/hackgods/consultation-scheduling/internal/config"
	"github.com/hackgods/consultation-scheduling/internal/logging"
	"github.com/hackgods/consultation-scheduling/internal/scheduling"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "schedulerctl",
		Short:         "Operate the consultation scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				return a.Migrate(ctx)
			})
		},
	}
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run one scheduling pass over pending requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(ctx context.Context, a *app.App) error {
				err := a.Job.RunOnce(ctx)
				if errors.Is(err, scheduling.ErrRunInProgress) {
					return errors.New("another scheduling run holds the batch lock")
				}
				return err
			})
		},
	}
}

func remindCmd() *cobra.Command {
	var twoWeek, dayBefore bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send due reminder notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !twoWeek && !dayBefore {
				twoWeek, dayBefore = true, true
			}
			return withDispatcher(func(ctx context.Context, a *app.App) error {
				if twoWeek {
					n, err := a.Reminders.SendTwoWeekReminders(ctx)
					if err != nil {
						return fmt.Errorf("two week reminders: %w", err)
					}
					fmt.Printf("two week reminders sent: %d\n", n)
				}
				if dayBefore {
					n, err := a.Reminders.SendDayBeforeReminders(ctx)
					if err != nil {
						return fmt.Errorf("day before reminders: %w", err)
					}
					fmt.Printf("day before reminders sent: %d\n", n)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&twoWeek, "two-week", false, "only send reminders for scheduled appointments within two weeks")
	cmd.Flags().BoolVar(&dayBefore, "day-before", false, "only send reminders for confirmed appointments tomorrow")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <appointment-id>",
		Short: "Print an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid appointment id: %w", err)
			}
			return withApp(func(ctx context.Context, a *app.App) error {
				appt, err := a.Service.GetAppointment(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("id:        %s\n", appt.ID)
				fmt.Printf("patient:   %s\n", appt.PatientID)
				fmt.Printf("specialty: %s\n", appt.Specialty)
				fmt.Printf("priority:  %s\n", appt.Priority)
				fmt.Printf("status:    %s\n", appt.Status)
				if appt.ScheduledAt != nil {
					fmt.Printf("doctor:    %s\n", deref(appt.DoctorID))
					fmt.Printf("at:        %s\n", appt.ScheduledAt.Format("2006-01-02 15:04 MST"))
					fmt.Printf("location:  %s\n", deref(appt.Location))
				}
				return nil
			})
		},
	}
}

func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Env, cfg.LogFormat).With().Str("service", "schedulerctl").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// withDispatcher runs fn with the notification dispatcher running and
// drains it before returning.
func withDispatcher(fn func(ctx context.Context, a *app.App) error) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		dispatchCtx, stopDispatch := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Dispatcher.Run(dispatchCtx)
		}()

		err := fn(ctx, a)

		stopDispatch()
		wg.Wait()
		logDone(a.Logger, err)
		return err
	})
}

func logDone(logger zerolog.Logger, err error) {
	if err != nil {
		logger.Error().Err(err).Msg("command failed")
		return
	}
	logger.Info().Msg("command finished")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
