package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/vsmbar/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/vsmbar/config.toml)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	backend := flag.String("backend", "", "search backend to start with: local or hosted (optional)")
	flag.Parse()

	switch *backend {
	case "", "local", "hosted":
	default:
		fmt.Fprintf(os.Stderr, "vsmbar: unknown backend %q (want local or hosted)\n", *backend)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Backend:    *backend,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "vsmbar: %v\n", err)
		return 1
	}
	return 0
}
