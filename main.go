package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"pedalprompt/internal/config"
	"pedalprompt/internal/convert"
	"pedalprompt/internal/domain"
	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
	"pedalprompt/internal/library"
	"pedalprompt/internal/navigation"
	"pedalprompt/internal/ui"
)

func main() {
	var (
		configPath string
		rootDir    string
		dump       bool
		headless   bool
	)
	flag.StringVar(&configPath, "config", "", "Path to the config file")
	flag.StringVar(&rootDir, "root", "", "Library folder holding the collections")
	flag.StringVar(&rootDir, "d", "", "Library folder (shorthand)")
	flag.BoolVar(&dump, "dump", false, "Load the library, print it as JSON and exit")
	flag.BoolVar(&headless, "headless", false, "Run without the terminal UI, printing state changes")
	flag.Parse()

	if rootDir == "" && flag.NArg() > 0 {
		rootDir = flag.Arg(0)
	}

	configSvc := config.NewConfigService()
	if configPath != "" {
		configSvc = config.NewConfigServiceAt(configPath)
	}
	cfg, err := configSvc.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if rootDir != "" {
		cfg.LibraryRoot = rootDir
	}

	// Set up logging
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Could not open log file: %v", err)
		} else {
			defer logFile.Close()
			log.SetOutput(logFile)
		}
	}

	root, err := library.ResolveRoot(cfg.RootCandidates())
	if err != nil {
		log.Printf("No library: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	log.Printf("Library root %s (config %s)", root, configSvc.Path())

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := eventbus.New()
	defer bus.Close()

	cache := convert.NewCache(cfg.CacheDir,
		convert.SofficeConverter{Binary: cfg.Convert.Soffice},
		convert.PdftoppmRasterizer{Binary: cfg.Convert.Pdftoppm},
		convert.WithBus(bus),
		convert.WithCoverWidth(cfg.Convert.CoverWidth),
	)
	loader := library.NewLoader(bus, cache, library.Options{
		Extensions:     cfg.DeckExtensions,
		IgnorePrefix:   cfg.IgnorePrefix,
		CollectionRows: cfg.Grid.CollectionRows,
		CollectionCols: cfg.Grid.CollectionCols,
		ItemRows:       cfg.Grid.ItemRows,
		ItemCols:       cfg.Grid.ItemCols,
	})

	lib, err := loader.Load(ctx, root)
	if err != nil {
		log.Printf("Loading %s: %v", root, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Loaded %s", library.Summary(lib))

	if dump {
		if err := library.Dump(os.Stdout, lib); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	engine := navigation.NewEngine(lib, bus)

	// Physical devices; the terminal keyboard always works as a fallback
	fuser := input.NewFuser(bus)
	sources, err := input.Discover(cfg.Devices.PedalSuffix, cfg.Devices.KeyboardSuffix, cfg.Devices.Grab)
	if err != nil {
		if !errors.Is(err, input.ErrDeviceUnavailable) {
			log.Printf("Input discovery failed: %v", err)
		}
		log.Printf("Continuing with terminal keys only")
	}

	interactive := !headless && term.IsTerminal(int(os.Stdin.Fd()))

	var terminal *input.VirtualSource
	if interactive {
		terminal = input.NewVirtualSource("terminal", input.TerminalKeymap(),
			input.WithReleaseAfter(time.Duration(cfg.Devices.ReleaseAfterMs)*time.Millisecond))
		sources = append(sources, terminal)
	}
	fuser.Start(ctx, sources...)
	defer fuser.Stop()

	// Reloads are serialized
	var reloadMu sync.Mutex
	var deliver func(*domain.Library, error)
	reload := func() {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		lib, err := loader.Load(ctx, root)
		if err == nil {
			log.Printf("Reloaded %s", library.Summary(lib))
		}
		deliver(lib, err)
	}

	var (
		libraries chan *domain.Library
		model     *ui.Model
		program   *tea.Program
		forwarder *ui.Forwarder
	)
	if interactive {
		model = ui.NewModel(bus, engine, ui.WithTerminal(terminal), ui.WithReload(reload))
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		model.SetProgram(program)
		forwarder = ui.NewForwarder(program.Send)
		deliver = forwarder.Library
	} else {
		libraries = make(chan *domain.Library, 1)
		deliver = func(lib *domain.Library, err error) {
			if err != nil {
				log.Printf("Reload failed: %v", err)
				return
			}
			select {
			case libraries <- lib:
			case <-ctx.Done():
			}
		}
	}

	if cfg.Watch {
		watcher := library.NewWatcher(root, bus, library.DefaultDebounce, cfg.IgnorePrefix)
		if err := watcher.Start(ctx); err != nil {
			log.Printf("Not watching %s: %v", root, err)
		} else {
			defer watcher.Stop()
			bus.Subscribe(eventbus.EventLibraryChanged, func(e eventbus.DomainEvent) {
				go reload()
			})
		}
	}

	if !interactive {
		if err := ui.RunHeadless(ctx, engine, fuser.Events(), libraries, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fwdCtx, stopForwarding := context.WithCancel(ctx)
	forwarder.Start(fwdCtx, bus, fuser.Events())

	if os.Getenv("PEDALPROMPT_E2E_TEST") == "1" {
		fmt.Println("__READY__")
	}

	log.Printf("Starting UI...")
	_, err = program.Run()
	stopForwarding()
	forwarder.Stop()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Printf("Error running program: %v", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Printf("UI exited normally")
}
