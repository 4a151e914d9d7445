package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/homeclip/internal/app"
	"github.com/five82/homeclip/internal/logging"
	"github.com/five82/homeclip/internal/watch"
)

func newPullCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [FILE]",
		Short: "Write the shared document to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				if err := e.Coordinator.Reload(cmd.Context()); err != nil {
					return err
				}
				content, _ := e.Store.Document()
				if len(args) == 0 || args[0] == "-" {
					_, err := io.WriteString(cmd.OutOrStdout(), content)
					return err
				}
				return watch.WriteDocument(args[0], content)
			})
		},
	}
}

func newPushCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push [FILE|-]",
		Short: "Replace the shared document with FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return withEngine(flags, func(e *app.Engine) error {
				e.Edit(string(data))
				return e.Scheduler.FlushSync(cmd.Context())
			})
		},
	}
}

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var keepLocal bool
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Mirror a local file: saves to FILE are autosaved to the server",
		Long: `Mirror a local file into the shared document.

FILE is first overwritten with the server copy (unless --keep-local), then
every save made to it by any editor is autosaved after the usual pause.
Stop with ctrl+c; unsaved edits are sent before exiting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withEngine(flags, func(e *app.Engine) error {
				w, err := watch.New(args[0], e.Scheduler, e.Logger.With("component", "watch"))
				if err != nil {
					return err
				}

				if keepLocal {
					if _, err := os.Stat(w.Path()); errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("%s does not exist", w.Path())
					}
					if _, err := w.Sync(); err != nil {
						return err
					}
				} else {
					if err := e.Coordinator.Reload(ctx); err != nil {
						return err
					}
					content, _ := e.Store.Document()
					if err := watch.WriteDocument(w.Path(), content); err != nil {
						return err
					}
				}

				// Status goes to stderr; the log file keeps the detail.
				console := logging.Stderr(flags.Debug)
				go func() {
					last := ""
					for {
						select {
						case <-ctx.Done():
							return
						case <-e.Changed():
						}
						if text := e.Status.Snapshot().Text; text != last {
							console.Info(text, "file", w.Path())
							last = text
						}
					}
				}()

				return w.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&keepLocal, "keep-local", false, "Upload FILE as the document instead of overwriting it")
	return cmd
}
