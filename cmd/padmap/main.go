package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/synrais/PadMap-GO/pkg/config"
	"github.com/synrais/PadMap-GO/pkg/history"
	"github.com/synrais/PadMap-GO/pkg/input"
	"github.com/synrais/PadMap-GO/pkg/logging"
	"github.com/synrais/PadMap-GO/pkg/mapper"
	"github.com/synrais/PadMap-GO/pkg/supervisor"
)

// dumpConfig shows the loaded config in a dynamic, always up-to-date
// format.
func dumpConfig(cfg *config.UserConfig) {
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Println("[MAIN] Failed to dump config:", err)
		return
	}
	fmt.Println("==== PadMap Configuration ====")
	fmt.Println(string(out))
	fmt.Println("==============================")
}

func printHistory() int {
	journal, err := history.Open(config.JournalPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "[MAIN] Failed to open journal:", err)
		return 1
	}
	defer journal.Close()

	entries, err := journal.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[MAIN] Failed to read journal:", err)
		return 1
	}
	for _, e := range entries {
		if e.Detail != "" {
			fmt.Printf("%s %s (%s)\n", e.Time.Format("2006-01-02 15:04:05"), e.Event, e.Detail)
		} else {
			fmt.Printf("%s %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Event)
		}
	}
	return 0
}

// runEngine is the worker mode the supervisor spawns: open the first
// controller, map until it disconnects or we are told to stop.
func runEngine(cfg *config.UserConfig) int {
	logger := logging.New("[MAP]", config.LogPath())

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Printf("config: %s", w)
	}
	if err != nil {
		logger.Printf("configuration error: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kb, err := input.NewVirtualKeyboard()
	if err != nil {
		logger.Printf("keyboard device error: %v", err)
		return 1
	}
	defer kb.Close()

	pad, err := input.OpenFirst(cfg.PadMap.DeviceFilter)
	if err != nil {
		logger.Printf("device error: %v", err)
		return 1
	}
	defer pad.Close()

	eng, err := mapper.New(cfg, pad, kb, logger)
	if err != nil {
		logger.Printf("configuration error: %v", err)
		return 1
	}

	if err := eng.Run(ctx); err != nil {
		if errors.Is(err, mapper.ErrDisconnected) {
			return 0 // normal session end
		}
		logger.Printf("engine error: %v", err)
		return 1
	}
	return 0
}

// runSupervisor is the default long-running mode.
func runSupervisor(cfg *config.UserConfig) int {
	logger := logging.New("[SUP]", config.LogPath())

	// Validation failures are not fatal here: the supervisor stays up
	// and each spawn attempt fails loudly until the operator fixes the
	// config.
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Printf("config: %s", w)
	}
	if err != nil {
		logger.Printf("configuration error, engine will not start until fixed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := supervisor.NewExecController("-map")
	if err != nil {
		logger.Printf("cannot start: %v", err)
		return 1
	}

	record := &supervisor.Record{Path: config.RecordPath()}

	var journal supervisor.Journal
	if j, err := history.Open(config.JournalPath()); err != nil {
		logger.Printf("journal unavailable: %v", err)
	} else {
		journal = j
		defer j.Close()
	}

	wake, err := supervisor.WatchHotplug(ctx, filepath.Dir(input.DeviceGlob))
	if err != nil {
		logger.Printf("hotplug watch unavailable, polling only: %v", err)
	}

	probe := &supervisor.DeviceProbe{Filter: cfg.PadMap.DeviceFilter}
	sup := supervisor.New(probe, proc, record, journal, logger, supervisor.Options{
		AutoRestart: cfg.PadMap.AutoRestart,
		Wake:        wake,
	})

	_ = sup.Run(ctx)
	return 0
}

func main() {
	// Optional overrides (data dir, ini path) from a .env next to the
	// binary.
	_ = godotenv.Load(filepath.Join(config.BaseDir(), ".env"))

	iniPath, err := config.EnsureIni()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[MAIN] Config error:", err)
		os.Exit(1)
	}

	cfg, err := config.LoadUserConfig(iniPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "[MAIN] Config load error:", err)
		os.Exit(1)
	}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		os.Exit(runSupervisor(cfg))
	case "-map":
		os.Exit(runEngine(cfg))
	case "-config":
		dumpConfig(cfg)
	case "-history":
		os.Exit(printHistory())
	default:
		fmt.Println("Usage: padmap [-map|-config|-history]")
		os.Exit(1)
	}
}
