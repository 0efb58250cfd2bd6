package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marine14f/geminipwa-sub000/internal/client"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
)

func newPushCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the local dataset to the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, false, func(ctx context.Context, app client.Client) error {
				if err := app.Push(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pushed.")
				return nil
			})
		},
	}
}

func newPullCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the local dataset with the remote one",
		Long: `Pull adopts the dataset last pushed by any device. It is a full replace:
local changes that were not pushed are lost, so a dirty device asks first.
When the remote is empty the local dataset is pushed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, false, func(ctx context.Context, app client.Client) error {
				if err := app.Pull(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Up to date.")
				return nil
			})
		},
	}
}

func newStatusCmd(o *rootOptions) *cobra.Command {
	var copyID bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync state of this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, true, func(_ context.Context, app client.Client) error {
				state, mode := app.Status()
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSyncStatus(state, mode))

				if !copyID {
					return nil
				}
				id := state.LastSyncIDValue()
				if id == "" {
					return errors.New("nothing to copy: this device never synced")
				}
				if err := copyToClipboard(id); err != nil {
					return fmt.Errorf("copy sync id: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Sync id copied to the clipboard.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyID, "copy-sync-id", false, "Copy the last sync id to the clipboard")

	return cmd
}

func newRecoverCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Finish or resolve a sync that was interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, false, func(ctx context.Context, app client.Client) error {
				if err := app.Recover(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing left to recover.")
				return nil
			})
		},
	}
}

func newDaemonCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Keep this device in sync in the background",
		Long: `The daemon recovers interrupted syncs, pulls on start and then keeps
pulling periodically and whenever another device pushes. Prompts are
answered with no unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, true, func(ctx context.Context, app client.Client) error {
				return app.Daemon(ctx)
			})
		},
	}
}

func newImportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a dataset export and push it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, false, func(ctx context.Context, app client.Client) error {
				if err := app.Import(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s.\n", args[0])
				return nil
			})
		},
	}
}

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write the local dataset to a file",
		Long:  "Export writes every collection except device-only settings such as API keys.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, true, func(ctx context.Context, app client.Client) error {
				if err := app.Export(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s.\n", args[0])
				return nil
			})
		},
	}
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBuildInfo(o.info))
		},
	}
}
