package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/poideck/internal/config"
	"github.com/verte-zerg/poideck/internal/controller"
	"github.com/verte-zerg/poideck/internal/gpsd"
	"github.com/verte-zerg/poideck/internal/panel"
	"github.com/verte-zerg/poideck/internal/panel/streamdeck"
	"github.com/verte-zerg/poideck/internal/serialgps"
	"github.com/verte-zerg/poideck/internal/tui"
)

const glyphSize = 72

type fixSource interface {
	controller.FixSource
	io.Closer
}

type livePanel interface {
	panel.Panel
	io.Closer
}

func runLive(settings config.Settings) error {
	glyphs, err := panel.LoadGlyphs(settings.IconDir, settings.Categories, glyphSize)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(settings.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	src, err := openSource(settings)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Printf("[loop] failed to close source: %v", cerr)
		}
	}()

	pnl, logFile, err := openPanel(settings)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer func() {
			log.SetOutput(os.Stderr)
			if cerr := logFile.Close(); cerr != nil {
				logErrf("failed to close log file: %v\n", cerr)
			}
		}()
	}
	defer func() {
		if cerr := pnl.Close(); cerr != nil {
			log.Printf("[loop] failed to close panel: %v", cerr)
		}
	}()

	loop, err := controller.New(controller.Options{
		Source:      src,
		Panel:       pnl,
		Store:       st,
		Glyphs:      glyphs,
		Interface:   settings.Interface,
		PollTimeout: settings.PollTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d, ok := pnl.(*tui.Deck); ok {
		go func() {
			select {
			case <-d.Done():
				stop()
			case <-ctx.Done():
			}
		}()
	}

	if err := loop.Start(ctx, settings.Brightness); err != nil {
		return err
	}
	err = loop.Run(ctx)
	if errors.Is(err, tui.ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openSource(settings config.Settings) (fixSource, error) {
	switch settings.SourceType {
	case config.SourceNMEA:
		return serialgps.Open(settings.NMEAPort, settings.NMEABaud, settings.PollTimeout)
	default:
		client, err := gpsd.Dial(settings.GPSDAddr, settings.PollTimeout)
		if err != nil {
			return nil, err
		}
		if err := client.Watch(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	}
}

// openPanel opens the configured panel. The terminal panel also returns the
// log file that replaces stderr while it owns the screen; the caller closes it.
func openPanel(settings config.Settings) (livePanel, *os.File, error) {
	switch settings.PanelType {
	case config.PanelTerminal:
		logFile, err := openLogFile(settings.LogFile)
		if err != nil {
			return nil, nil, err
		}
		return tui.Open(), logFile, nil
	default:
		deck, err := streamdeck.Open(settings.VendorID, settings.ProductID)
		if err != nil {
			return nil, nil, err
		}
		return deck, nil, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "poideck")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
