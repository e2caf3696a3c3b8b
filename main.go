package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"annotator/internal/config"
	"annotator/internal/net"
	"annotator/internal/state"
	"annotator/internal/ui"

	"github.com/hashicorp/mdns"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML configuration file")
		image       = flag.String("image", "", "background image path or URL")
		drawable    = flag.Bool("drawable", false, "allow pen and eraser modes")
		mode        = flag.String("mode", "", "start mode: view, pen or eraser")
		background  = flag.String("background", "", "comma-separated background annotation JSON files")
		foreground  = flag.String("foreground", "", "foreground annotation JSON file")
		feedAddr    = flag.String("feed", "", "publish the foreground annotation over websocket on this address, e.g. :8899")
		advertise   = flag.Bool("mdns", false, "advertise the feed on the local network")
		transparent = flag.Bool("transparent-toolbar", false, "draw the toolbar without a background")
		browse      = flag.Duration("browse", 0, "list advertised feeds for this long and exit")
	)
	flag.Parse()

	if *browse > 0 {
		runBrowse(*browse)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[MAIN] Failed to load config: %v", err)
		}
		cfg = c
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			cfg.Image = *image
		case "drawable":
			cfg.Drawable = *drawable
		case "mode":
			cfg.Mode = *mode
		case "background":
			cfg.BackgroundAnnotations = splitList(*background)
		case "foreground":
			cfg.ForegroundAnnotation = *foreground
		case "feed":
			cfg.Feed.Listen = *feedAddr
		case "mdns":
			cfg.Feed.Advertise = *advertise
		case "transparent-toolbar":
			cfg.TransparentToolbar = *transparent
		}
	})

	opts, err := buildOptions(cfg)
	if err != nil {
		log.Fatalf("[MAIN] %v", err)
	}
	startMode, err := cfg.CanvasMode()
	if err != nil {
		log.Fatalf("[MAIN] %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Feed.Listen != "" {
		feed := net.NewFeed()
		defer feed.Close()
		opts.OnForegroundAnnotationChange = func(a state.Annotation) {
			if err := feed.Publish(a); err != nil {
				log.Printf("[FEED] Publish failed: %v", err)
			}
		}
		go func() {
			if err := net.Serve(ctx, cfg.Feed.Listen, feed); err != nil {
				log.Printf("[FEED] Server stopped: %v", err)
			}
		}()
		if server := startAdvertising(cfg.Feed); server != nil {
			defer server.Shutdown()
		}
	}

	ctrl := state.NewController(opts)
	ctrl.SelectMode(startMode)
	log.Printf("[MAIN] Session %s, drawable=%t", state.SessionID(), cfg.Drawable)
	ui.RunApp(ctrl, ui.AppConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		ExportDir: cfg.ExportDir,
	})
}

func buildOptions(cfg *config.Config) (state.Options, error) {
	opts := state.Options{
		BackgroundImageSource: cfg.Image,
		TransparentToolbar:    cfg.TransparentToolbar,
		Drawable:              cfg.Drawable,
	}
	if len(cfg.BackgroundAnnotations) > 0 {
		layers, err := state.LoadAnnotationFiles(cfg.BackgroundAnnotations)
		if err != nil {
			return opts, fmt.Errorf("load background annotations: %w", err)
		}
		opts.BackgroundAnnotations = layers
	}
	if cfg.ForegroundAnnotation != "" {
		a, err := state.LoadAnnotationFile(cfg.ForegroundAnnotation)
		if err != nil {
			return opts, fmt.Errorf("load foreground annotation: %w", err)
		}
		opts.ForegroundAnnotation = a
	}
	return opts, nil
}

func startAdvertising(feed config.FeedConfig) *mdns.Server {
	url, err := net.FeedURL(feed.Listen)
	if err != nil {
		log.Printf("[FEED] Bad listen address %q: %v", feed.Listen, err)
		return nil
	}
	log.Printf("[FEED] Subscribers can connect to %s", url)
	if !feed.Advertise {
		return nil
	}
	port, _ := net.PortOf(feed.Listen)
	server, err := net.Advertise(port)
	if err != nil {
		log.Printf("[MDNS] %v", err)
		return nil
	}
	log.Printf("[MDNS] Advertising feed on port %d", port)
	return server
}

func runBrowse(d time.Duration) {
	found, err := net.Browse(d)
	if err != nil {
		log.Printf("[MDNS] %v", err)
	}
	if len(found) == 0 {
		fmt.Fprintln(os.Stderr, "no feeds found")
		os.Exit(1)
	}
	for _, addr := range found {
		fmt.Printf("ws://%s/\n", addr)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
