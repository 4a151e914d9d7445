package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/homeclip/internal/app"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	ConfigPath string
	PrefsPath  string
	Server     string
	Debug      bool
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.ConfigPath,
		PrefsPath:  f.PrefsPath,
		Server:     f.Server,
		Debug:      f.Debug,
	}
}

// NewRootCmd builds the homeclip command tree. Without a subcommand it runs
// the TUI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "homeclip",
		Short:         "Shared clipboard document and file drop for your home server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Edit the shared document
  homeclip

  # Scriptable commands
  homeclip pull notes.md
  echo "buy milk" | homeclip push -
  homeclip files upload ~/Downloads/report.pdf
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file (default ~/.config/homeclip/config.toml)")
	cmd.PersistentFlags().StringVar(&flags.PrefsPath, "prefs", "", "Preferences file (default ~/.config/homeclip/prefs.toml)")
	cmd.PersistentFlags().StringVar(&flags.Server, "server", "", "Server address, overrides config and $HOMECLIP_SERVER")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Write debug entries to the log")

	cmd.AddCommand(newPullCmd(flags))
	cmd.AddCommand(newPushCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newFilesCmd(flags))
	cmd.AddCommand(newCopyCmd(flags))
	cmd.AddCommand(newPasteCmd(flags))
	cmd.AddCommand(newLogsCmd(flags))

	return cmd
}

// withEngine opens an Engine for one command and closes it afterwards, which
// flushes anything the command left unsaved.
func withEngine(flags *rootFlags, fn func(*app.Engine) error) (err error) {
	engine, err := app.Open(flags.options())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(engine)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
