package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/homeclip/internal/config"
	"github.com/five82/homeclip/internal/logtail"
)

func newLogsCmd(flags *rootFlags) *cobra.Command {
	var (
		lines   int
		level   string
		rotated bool
		plain   bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the homeclip log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			threshold, err := parseThreshold(level)
			if err != nil {
				return err
			}

			var out []string
			if rotated {
				out, err = logtail.ReadRotated(cfg.LogFile, lines)
			} else {
				out, err = logtail.Read(cfg.LogFile, lines)
			}
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			out = logtail.Filter(out, threshold)
			if !plain {
				out = logtail.DefaultPalette().ColorizeLines(out)
			}
			for _, line := range out {
				printf(cmd.OutOrStdout(), "%s\n", line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines; 0 shows everything")
	cmd.Flags().StringVar(&level, "level", "info", "Minimum level (debug|info|warn|error)")
	cmd.Flags().BoolVar(&rotated, "rotated", false, "Include rotated backups")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")
	return cmd
}

func parseThreshold(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return 0, fmt.Errorf("invalid level %q", name)
	}
	return lvl, nil
}
