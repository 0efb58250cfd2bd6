// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/marine14f/geminipwa-sub000/internal/client"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/service"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/models"
)

// appOpener builds the client for one command run.
type appOpener func(ctx context.Context, cfg *config.ClientConfig, notifier tui.Notifier, log *logger.Logger) (client.Client, error)

func openApp(ctx context.Context, cfg *config.ClientConfig, notifier tui.Notifier, log *logger.Logger) (client.Client, error) {
	return client.NewApp(ctx, cfg, notifier, log)
}

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

type rootOptions struct {
	flags *config.Flags
	yes   bool
	no    bool

	info models.AppBuildInfo
	open appOpener
}

func newRootCmd(info models.AppBuildInfo, open appOpener) *cobra.Command {
	opts := &rootOptions{info: info, open: open}

	root := &cobra.Command{
		Use:   "chatsync",
		Short: "Synchronize the local chat dataset through a shared blob store",
		Long: `chatsync keeps the chat dataset of this device (profiles, chats, memories,
assets and settings) in sync with other devices through a shared blob store.

Every push uploads a full snapshot; every pull replaces the local dataset.
Prompts can be answered up front with --yes or --no.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to every prompt")
	root.PersistentFlags().BoolVar(&opts.no, "no", false, "Answer no to every prompt")
	root.MarkFlagsMutuallyExclusive("yes", "no")

	root.AddCommand(
		newPushCmd(opts),
		newPullCmd(opts),
		newStatusCmd(opts),
		newRecoverCmd(opts),
		newDaemonCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newVersionCmd(opts),
	)

	return root
}

// withApp loads the configuration, opens the client and runs fn with it.
func (o *rootOptions) withApp(cmd *cobra.Command, unattended bool, fn func(ctx context.Context, app client.Client) error) error {
	cfg, err := config.GetClientConfig(o.flags)
	if err != nil {
		return err
	}

	log := logger.NewClientLogger("chatsync", cfg.App.LogFile)
	logger.SetLevel(cfg.App.LogLevel)
	log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("device", cfg.App.DeviceName)
	})
	ctx := log.WithContext(cmd.Context())

	app, err := o.open(ctx, cfg, o.notifier(cmd, unattended, log), log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			log.Err(cerr).Msg("failed to close client")
		}
	}()

	return humanize(fn(ctx, app))
}

// notifier picks how prompts are answered. Unattended runs never block on
// stdin.
func (o *rootOptions) notifier(cmd *cobra.Command, unattended bool, log *logger.Logger) tui.Notifier {
	switch {
	case o.yes:
		return &tui.AutoNotifier{Answer: true, Logger: log}
	case o.no, unattended:
		return &tui.AutoNotifier{Answer: false, Logger: log}
	default:
		return tui.NewTerminalNotifierWithIO(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
}

// humanize turns a declined prompt into a plain message.
func humanize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrConflictDeclined),
		errors.Is(err, service.ErrReplaceDeclined),
		errors.Is(err, service.ErrRecoveryDeclined):
		return fmt.Errorf("cancelled: %w", err)
	}
	if msg := tui.HumanizeError(err); msg != err.Error() {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}
