package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/homeclip/internal/app"
	"github.com/five82/homeclip/internal/config"
	"github.com/five82/homeclip/internal/expiry"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/homeclip"
)

func newFilesCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List, upload, download and delete shared files",
	}
	cmd.AddCommand(newFilesListCmd(flags))
	cmd.AddCommand(newFilesUploadCmd(flags))
	cmd.AddCommand(newFilesDownloadCmd(flags))
	cmd.AddCommand(newFilesRemoveCmd(flags))
	return cmd
}

func newFilesListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List shared files in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				if err := e.Files.Load(cmd.Context()); err != nil {
					return err
				}
				list := e.Files.Files()
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					printf(out, "%s\n", files.EmptyText)
					return nil
				}
				now := time.Now()
				printf(out, "%-12s  %-32s  %10s  %-16s  %s\n", "ID", "NAME", "SIZE", "UPLOADED", "EXPIRES")
				for _, f := range list {
					uploaded := "-"
					if !f.UploadedAt.IsZero() {
						uploaded = humanize.RelTime(f.UploadedAt, now, "ago", "from now")
					}
					exp := expiry.Label(f.ExpiresAt, now)
					if exp == "" {
						exp = "-"
					}
					printf(out, "%-12s  %-32s  %10s  %-16s  %s\n", f.ID, f.FileName, files.Size(f.Size), uploaded, exp)
				}
				return nil
			})
		},
	}
}

func newFilesUploadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload PATH...",
		Short: "Upload files one at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				uploaded, err := e.Files.Upload(cmd.Context(), args...)
				for _, a := range uploaded {
					printf(cmd.OutOrStdout(), "uploaded %s (%s)\n", a.FileName, a.ID)
				}
				return err
			})
		},
	}
}

func newFilesDownloadCmd(flags *rootFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download a file; existing files are never overwritten",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				file, err := lookup(cmd.Context(), e, args[0])
				if err != nil {
					return err
				}
				target := e.Config.DownloadDir
				if dir != "" {
					if target, err = config.ExpandPath(dir); err != nil {
						return err
					}
				}
				path, err := e.Files.Download(cmd.Context(), file.ID, file.FileName, target)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default from config)")
	return cmd
}

func newFilesRemoveCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a file after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(flags, func(e *app.Engine) error {
				file, err := lookup(cmd.Context(), e, args[0])
				if err != nil {
					return err
				}
				confirmer := files.Confirmer(files.ConfirmFunc(confirmDelete))
				if yes {
					confirmer = files.Approve
				}
				err = e.Files.Delete(cmd.Context(), file.ID, confirmer)
				if errors.Is(err, files.ErrDeclined) {
					printf(cmd.OutOrStdout(), "kept %s\n", file.FileName)
					return nil
				}
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "deleted %s\n", file.FileName)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// lookup resolves id against a fresh listing.
func lookup(ctx context.Context, e *app.Engine, id string) (homeclip.Attachment, error) {
	if err := e.Files.Load(ctx); err != nil {
		return homeclip.Attachment{}, err
	}
	file, ok := e.Files.Attachment(id)
	if !ok {
		return homeclip.Attachment{}, fmt.Errorf("file %s not found", id)
	}
	return file, nil
}

func confirmDelete(_ context.Context, file homeclip.Attachment) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %s?", file.FileName)).
		Description(files.Size(file.Size)).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
