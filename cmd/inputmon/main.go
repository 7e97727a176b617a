// Command inputmon prints the logical events produced by the configured
// input devices. It is used to check a foot switch before a service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pedalprompt/internal/config"
	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
)

func main() {
	var (
		configPath string
		list       bool
		noGrab     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to the config file")
	flag.BoolVar(&list, "list", false, "List input devices and exit")
	flag.BoolVar(&noGrab, "no-grab", false, "Do not take the device exclusively")
	flag.Parse()

	if list {
		devices, err := input.ListDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, d := range devices {
			fmt.Printf("%s\t%s\n", d.Path, d.Name)
		}
		return
	}

	configSvc := config.NewConfigService()
	if configPath != "" {
		configSvc = config.NewConfigServiceAt(configPath)
	}
	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	sources, err := input.Discover(cfg.Devices.PedalSuffix, cfg.Devices.KeyboardSuffix, cfg.Devices.Grab && !noGrab)
	if err != nil {
		if errors.Is(err, input.ErrDeviceUnavailable) {
			fmt.Fprintf(os.Stderr, "No %q or %q found; try -list\n", cfg.Devices.PedalSuffix, cfg.Devices.KeyboardSuffix)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	bus := eventbus.New()
	defer bus.Close()
	bus.Subscribe(eventbus.EventDeviceAttached, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.DeviceAttachedEvent); ok {
			fmt.Printf("attached %s %s\n", ev.Name, ev.Path)
		}
	})
	bus.Subscribe(eventbus.EventDeviceLost, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.DeviceLostEvent); ok {
			fmt.Printf("lost %s: %v\n", ev.Name, ev.Err)
			cancel()
		}
	})

	fuser := input.NewFuser(bus)
	fuser.Start(ctx, sources...)
	defer fuser.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-fuser.Events():
			fmt.Printf("%s %s\n", ev.Time.Format("15:04:05.000"), ev)
		}
	}
}
