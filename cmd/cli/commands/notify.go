package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/notify"
	"github.com/jakechorley/event-rota/pkg/core/services"
)

// NotifyCmd creates the notify command
func NotifyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify [assignment_id]...",
		Short: "Email volunteers their assignments (defaults to every pending assignment)",
		Long: `Email each affected volunteer one message listing their assignments.

Messages are sent in batches with a pause between batches. Press Ctrl-C to stop
after the current batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("notify command", zap.Strings("assignment_ids", args))
			return runNotify(app, args)
		},
	}
}

// runNotify dispatches notifications through Gmail and prints progress per batch
func runNotify(app *AppContext, assignmentIDs []string) error {
	renderer, err := notify.NewTemplateRenderer(app.Cfg.Event.Name)
	if err != nil {
		return err
	}

	transport := notify.NewRetryingTransport(app.GmailClient, renderer, app.Logger)
	transport.MaxRetries = app.Cfg.Dispatch.MaxRetries
	transport.BaseDelay = app.Cfg.RetryBaseDelay()
	transport.Concurrency = app.Cfg.Dispatch.Concurrency

	ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt)
	defer stop()

	fmt.Println()
	result, err := services.NotifyAssignees(
		ctx,
		app.Database,
		transport,
		app.Cfg.DispatchOptions(),
		app.Cfg.Event.PortalURL,
		app.Logger,
		assignmentIDs,
		func(p dispatch.Progress) {
			fmt.Printf("  Batch %d/%d: %d sent, %d failed\n", p.Batch, p.TotalBatches, p.BatchSent, p.BatchFailed)
		},
	)
	if err != nil {
		return err
	}

	if result.Failed == 0 && !result.Cancelled {
		fmt.Printf("\n✓ %s\n\n", result.Summary())
	} else {
		fmt.Printf("\n⚠️  %s\n\n", result.Summary())
	}

	if len(result.Failures) > 0 {
		fmt.Printf("Failed:\n")
		for _, f := range result.Failures {
			fmt.Printf("  ✗ %s (%s): %s [%s]\n", f.Job.RecipientName, f.Job.RecipientAddress, f.Err, f.Kind)
		}
		fmt.Println()
	}

	if len(result.Unreachable) > 0 {
		fmt.Printf("No email address on file for: %v\n\n", result.Unreachable)
	}

	return nil
}
