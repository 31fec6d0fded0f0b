package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/monitor"
	"github.com/aretw0/arbor/pkg/domain"
)

// MonitorOptions selects the feed of a monitor session. Exactly one of URL
// and File must be set.
type MonitorOptions struct {
	// URL is a websocket tree feed (ws:// or wss://).
	URL string
	// File is re-read every time it changes on disk.
	File   string
	Out    io.Writer
	Logger *slog.Logger
}

// RunMonitor switches the editor to monitor mode and feeds it until ctx is
// done. Every accepted tree prints a status line.
func RunMonitor(ctx context.Context, ed *arbor.Editor, opts MonitorOptions) error {
	if (opts.URL == "") == (opts.File == "") {
		return errors.New("monitor needs exactly one of a feed URL or a file")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	ed.SetMode(domain.ModeMonitor)
	sink := &statusSink{editor: ed, out: opts.Out}

	if opts.URL != "" {
		client, err := monitor.Dial(ctx, opts.URL, monitor.WithLogger(opts.Logger),
			monitor.WithErrorHandler(func(err error) {
				fmt.Fprintln(opts.Out, tui.Semaphore(false, err.Error()))
			}))
		if err != nil {
			return err
		}
		printSystemMessage(opts.Out, "Monitoring %s", opts.URL)
		return client.Run(ctx, sink)
	}
	return watchFile(ctx, opts.File, sink, opts)
}

func watchFile(ctx context.Context, path string, sink *statusSink, opts MonitorOptions) error {
	changes, err := file.WatchFile(ctx, path)
	if err != nil {
		return err
	}
	printSystemMessage(opts.Out, "Monitoring %s", path)

	feed := func() {
		data, err := os.ReadFile(path)
		if err == nil {
			data, err = sanitize.Document(data)
		}
		if err == nil {
			err = sink.FeedXML(data)
		}
		if err != nil {
			opts.Logger.Warn("Feed document rejected", "path", path, "err", err)
			fmt.Fprintln(opts.Out, tui.Semaphore(false, err.Error()))
		}
	}
	feed()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			feed()
		}
	}
}

// statusSink feeds an editor and prints its status after each tree.
type statusSink struct {
	editor *arbor.Editor
	out    io.Writer
}

func (s *statusSink) FeedXML(data []byte) error {
	if err := s.editor.FeedXML(data); err != nil {
		return err
	}
	st := s.editor.Status()
	fmt.Fprintln(s.out, tui.Semaphore(st.Valid, fmt.Sprintf("%s: %d nodes", st.Tab, st.Nodes)))
	return nil
}
