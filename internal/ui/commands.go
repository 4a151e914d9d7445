package ui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/homeclip/internal/autosave"
	"github.com/five82/homeclip/internal/config"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/visibility"
)

// Messages

// changedMsg is sent when the engine signals a status or countdown change.
type changedMsg struct{}

// clockMsg repaints relative times.
type clockMsg time.Time

// reloadedMsg is sent when a reload from the server finished.
type reloadedMsg struct {
	err error
}

// opDoneMsg is sent when a file operation or manual save finished.
type opDoneMsg struct {
	notice string
	err    error
}

// noticeMsg replaces the local notice.
type noticeMsg string

// Commands

func listenCmd(changed <-chan struct{}) tea.Cmd {
	if changed == nil {
		return nil
	}
	return func() tea.Msg {
		<-changed
		return changedMsg{}
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// reloadCmd fetches the document. With show set it runs the full show
// protocol, which waits for an in-flight save first.
func reloadCmd(ctx context.Context, coord *visibility.Coordinator, show bool) tea.Cmd {
	if coord == nil {
		return nil
	}
	return func() tea.Msg {
		var err error
		if show {
			err = coord.Show(ctx)
		} else {
			err = coord.Reload(ctx)
		}
		return reloadedMsg{err: err}
	}
}

func flushCmd(ctx context.Context, sched *autosave.Scheduler) tea.Cmd {
	if sched == nil {
		return nil
	}
	return func() tea.Msg {
		err := sched.FlushSync(ctx)
		if errors.Is(err, autosave.ErrInFlight) {
			return opDoneMsg{notice: "Save already in progress", err: err}
		}
		return opDoneMsg{err: err}
	}
}

func uploadCmd(ctx context.Context, reg *files.Registry, paths []string) tea.Cmd {
	if reg == nil || len(paths) == 0 {
		return nil
	}
	expanded := make([]string, 0, len(paths))
	for _, p := range paths {
		if full, err := config.ExpandPath(p); err == nil {
			p = full
		}
		expanded = append(expanded, p)
	}
	return func() tea.Msg {
		_, err := reg.Upload(ctx, expanded...)
		return opDoneMsg{err: err}
	}
}

func deleteCmd(ctx context.Context, reg *files.Registry, id string) tea.Cmd {
	if reg == nil {
		return nil
	}
	return func() tea.Msg {
		// The confirm modal already asked.
		err := reg.Delete(ctx, id, files.Approve)
		return opDoneMsg{err: err}
	}
}

func downloadCmd(ctx context.Context, reg *files.Registry, id, fileName, dir string) tea.Cmd {
	if reg == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := reg.Download(ctx, id, fileName, dir)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{notice: "Saved to " + path}
	}
}

func copyCmd(content string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(content); err != nil {
			return noticeMsg("Clipboard unavailable")
		}
		return noticeMsg("Copied to clipboard")
	}
}
