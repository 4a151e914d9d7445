package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/five82/homeclip/internal/app"
)

func newCopyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "copy",
		Short: "Copy the shared document to the system clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				if err := e.Coordinator.Reload(cmd.Context()); err != nil {
					return err
				}
				content, _ := e.Store.Document()
				if err := clipboard.WriteAll(content); err != nil {
					return fmt.Errorf("write clipboard: %w", err)
				}
				printf(cmd.ErrOrStderr(), "copied %d bytes\n", len(content))
				return nil
			})
		},
	}
}

func newPasteCmd(flags *rootFlags) *cobra.Command {
	var appendMode bool
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Replace the shared document with the system clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := clipboard.ReadAll()
			if err != nil {
				return fmt.Errorf("read clipboard: %w", err)
			}
			return withEngine(flags, func(e *app.Engine) error {
				if appendMode {
					if err := e.Coordinator.Reload(cmd.Context()); err != nil {
						return err
					}
					current, _ := e.Store.Document()
					if current != "" {
						text = current + "\n" + text
					}
				}
				e.Edit(text)
				return e.Scheduler.FlushSync(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "Append to the document instead of replacing it")
	return cmd
}
