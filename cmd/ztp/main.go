package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/metrics"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
	"github.com/vanderheijden86/ztprofile/pkg/ui"
	"github.com/vanderheijden86/ztprofile/pkg/version"
	"github.com/vanderheijden86/ztprofile/pkg/watcher"
	"github.com/vanderheijden86/ztprofile/pkg/weather"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ztp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default "+config.ConfigPath()+")")
	storePath := fs.String("store", "", "Profile database file (overrides store.path)")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	setup := fs.Bool("setup", false, "Edit the configuration interactively")
	printFlag := fs.Bool("print", false, "Print the profile without starting the TUI")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help {
		fmt.Fprintln(stdout, "Usage: ztp [options]")
		fmt.Fprintln(stdout, "\nA terminal profile card: about me, local temperature and a link.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "ztp %s\n", version.Version)
		return 0
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
	}

	if *setup {
		if err := runSetup(cfgPath, cfg); err != nil {
			fmt.Fprintf(stderr, "Setup failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Saved %s\n", cfgPath)
		return 0
	}

	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config %s: %v\n", cfgPath, err)
		return 1
	}

	store := openStore(cfg, stderr)
	defer store.Close()

	client := weather.NewClient(cfg.Weather)

	if *printFlag {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		writeSummary(stdout, collectSummary(ctx, cfg, client, store))
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(stderr, "ztp needs a terminal; use --print for plain output")
		return 1
	}

	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer closeLog()
	}

	pic, w := loadPortrait(cfg)
	if w != nil {
		defer w.Stop()
	}

	app, err := ui.NewApp(ui.Deps{
		Config:   cfg,
		Weather:  client,
		Store:    store,
		Opener:   ui.SystemOpener{},
		Portrait: pic,
		Watcher:  w,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	// Unmount hooks run however the program ends. Deferred after the store
	// so pending saves finish before it closes.
	defer app.Close()

	if err := runTUIProgram(app); err != nil {
		fmt.Fprintf(stderr, "Error running ztp: %v\n", err)
		return 1
	}
	logMetrics()
	return 0
}

// openStore opens the SQLite store, falling back to an in-memory store so
// the app still runs when the state directory is not writable.
func openStore(cfg config.Config, stderr io.Writer) kvstore.Store {
	path := cfg.StorePath()
	s, err := kvstore.OpenSQLite(path)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: cannot open %s: %v (changes will not be saved)\n", path, err)
		return kvstore.NewMemory()
	}
	return s
}

// setupLogging sends log output to $ZTP_LOG or StateDir/ztp.log so it does
// not draw over the alternate screen.
func setupLogging() (func(), error) {
	path := os.Getenv("ZTP_LOG")
	if path == "" {
		path = filepath.Join(config.StateDir(), "ztp.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := tea.LogToFile(path, "ztp")
	if err != nil {
		return nil, err
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// loadPortrait returns the configured portrait, or nil for the drawn
// default, and a running watcher when a portrait file is configured.
func loadPortrait(cfg config.Config) (*portrait.Portrait, *watcher.Watcher) {
	path := cfg.Profile.PortraitPath
	if path == "" {
		return nil, nil
	}

	var pic *portrait.Portrait
	if img, err := portrait.Load(path); err != nil {
		debug.Warn("Error loading portrait %s: %v", path, err)
	} else {
		pic = portrait.New(img)
	}

	w, err := watcher.New(path)
	if err != nil {
		debug.Warn("Error watching portrait %s: %v", path, err)
		return pic, nil
	}
	if err := w.Start(context.Background()); err != nil {
		debug.Warn("Error watching portrait %s: %v", path, err)
		return pic, nil
	}
	if pic == nil {
		// Keep a live portrait to reload into once the file appears.
		pic = portrait.New(portrait.Default(96, 144, portrait.Initials(cfg.Profile.Name)))
	}
	return pic, w
}

func logMetrics() {
	for _, s := range metrics.AllTimingStats() {
		debug.Log("metric %s: count=%d avg=%.1fms max=%.1fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
	}
}

func runTUIProgram(m tea.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set ZTP_TUI_AUTOCLOSE_MS.
	if ms := autoCloseAfter(os.Getenv("ZTP_TUI_AUTOCLOSE_MS")); ms > 0 {
		go func() {
			timer := time.NewTimer(ms)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func autoCloseAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
