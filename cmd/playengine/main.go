// Command playengine is a thin terminal entry point wiring the playback
// core's collaborators together: config → library (sqlite) → output device
// → player.Core → the control façade/bus, per SPEC_FULL.md §6.1.
//
// Grounded on the teacher's cmd/desktop/main.go: flag-based config path and
// debug override, graceful shutdown on SIGINT/SIGTERM via a cancellable
// context, and [MAIN]-tagged startup logging - minus the fyne app lifecycle,
// which has no role in a headless playback engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tramhao/termusic-sub005/internal/config"
	"github.com/tramhao/termusic-sub005/internal/control"
	"github.com/tramhao/termusic-sub005/internal/library"
	"github.com/tramhao/termusic-sub005/internal/output"
	"github.com/tramhao/termusic-sub005/internal/player"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	debug      = flag.Bool("debug", false, "Enable debug mode - shows detailed logging for all components")
	version    = "dev"
)

func main() {
	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("[MAIN] Debug mode enabled - all components will log detailed information")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}
	log.Printf("[MAIN] playengine %s starting", version)
	log.Printf("[MAIN] - Database Path: %s", cfg.Storage.DatabasePath)
	log.Printf("[MAIN] - Cache Directory: %s", cfg.Storage.CacheDir)
	log.Printf("[MAIN] - Gapless: %v, Volume: %.2f, Speed: %.2f", cfg.Playback.Gapless, cfg.Playback.Volume, cfg.Playback.Speed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib, err := library.Open(cfg.Storage.DatabasePath, cfg.Debug)
	if err != nil {
		log.Fatalf("[MAIN] Failed to open library database: %v", err)
	}
	defer lib.Close()

	stream, err := output.Init(output.Options{
		DeviceSampleRate: cfg.Audio.DeviceSampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("[MAIN] Failed to initialize output device: %v", err)
	}
	defer stream.Close()

	core, err := player.New(player.Options{
		Library: lib,
		Stream:  stream,
		Gapless: cfg.Playback.Gapless,
		Volume:  cfg.Playback.Volume,
		Speed:   cfg.Playback.Speed,
		Debug:   cfg.Debug,
	})
	if err != nil {
		log.Fatalf("[MAIN] Failed to construct player core: %v", err)
	}

	// The control façade and its command vocabulary exist for a front-end
	// (terminal UI, future RPC transport) to drive; wiring an actual
	// transport here is out of this engine's scope (§6.1). The bus is
	// started so any future subscriber sees events from startup onward.
	bus := control.NewBus()
	go bus.Pump(core)

	go core.Run(ctx)

	setupGracefulShutdown(cancel, core)

	<-ctx.Done()
	log.Printf("[MAIN] shutdown complete")
}

func setupGracefulShutdown(cancel context.CancelFunc, core *player.Core) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		log.Printf("[MAIN] Received signal: %v", sig)
		log.Printf("[MAIN] Initiating graceful shutdown...")
		core.Shutdown()
		cancel()
	}()
}
