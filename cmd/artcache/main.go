package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/handiism/artcache/internal/cache"
	"github.com/handiism/artcache/internal/catalog"
	"github.com/handiism/artcache/internal/config"
	"github.com/handiism/artcache/internal/download"
	ioutils "github.com/handiism/artcache/internal/io"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/metrics"
	"github.com/handiism/artcache/internal/model"
	"github.com/handiism/artcache/internal/tracing"
)

func main() {
	args := os.Args[1:]
	cmd := "fetch"
	if len(args) > 0 && (args[0] == "fetch" || args[0] == "ls") {
		cmd, args = args[0], args[1:]
	}

	var code int
	switch cmd {
	case "ls":
		code = runList(args)
	default:
		code = runFetch(args)
	}
	os.Exit(code)
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "artcache - Download and cache game artwork")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  artcache [fetch] -manifest <games.json> [options]")
		fmt.Fprintln(os.Stderr, "  artcache ls [options]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "For interactive mode, use: artcache-tui")
		fmt.Fprintln(os.Stderr)
		fs.PrintDefaults()
	}
}

// loadSettings reads .env, the config file and flag overrides, then sets up
// logging.
func loadSettings(configPath, cacheDir string, verbose bool) (*config.Settings, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, err
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cacheDir != "" {
		settings.CacheDir = cacheDir
	}
	if verbose {
		settings.LogLevel = "debug"
	}
	logging.Setup(settings.ToLoggingConfig())
	return settings, nil
}

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var (
		manifestFlag    = fs.String("manifest", "", "Game manifest (JSON array of games with artwork URLs)")
		outFlag         = fs.String("out", "", "Write the manifest with local paths here (\"-\" for stdout)")
		configFlag      = fs.String("config", "", "Path to config file (.yaml, .yml or .json)")
		cacheFlag       = fs.String("cache", "", "Cache directory (overrides config)")
		concurrentFlag  = fs.Int("concurrency", 0, "Maximum concurrent downloads (overrides config)")
		metricsFileFlag = fs.String("metrics-file", "", "Write Prometheus metrics to this textfile when done")
		verboseFlag     = fs.Bool("verbose", false, "Show debug output")
		quietFlag       = fs.Bool("quiet", false, "Hide the progress bar")
	)
	fs.Usage = usage(fs)
	_ = fs.Parse(args)

	manifest := *manifestFlag
	if manifest == "" && fs.NArg() > 0 {
		manifest = fs.Arg(0)
	}
	if manifest == "" {
		fs.Usage()
		return 1
	}

	settings, err := loadSettings(*configFlag, *cacheFlag, *verboseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *concurrentFlag > 0 {
		settings.MaxConcurrentDownloads = *concurrentFlag
	}
	if *metricsFileFlag != "" {
		settings.MetricsFile = *metricsFileFlag
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancel()
	}()

	shutdown, err := tracing.Setup(ctx, settings.ToTracingConfig())
	if err != nil {
		logging.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	games, err := catalog.Load(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
		return 1
	}

	manager, err := download.NewManager(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer manager.Close()

	var bar *progressbar.ProgressBar
	onProgress := func(p download.Progress) {
		if *quietFlag || p.Total == 0 {
			return
		}
		if bar == nil {
			bar = progressbar.Default(int64(p.Total), "Downloading")
		}
		_ = bar.Set(p.Processed)
	}

	summary := manager.DownloadAll(ctx, games, onProgress)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if settings.MetricsFile != "" {
		if err := metrics.WriteTextfile(settings.MetricsFile); err != nil {
			logging.Warn("writing metrics failed", "path", settings.MetricsFile, "error", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Done: %d images ready, %d missing or failed, %d skipped (cache: %s)\n",
		summary.Succeeded, summary.Failed, summary.Skipped, manager.Store().Dir())

	// Paths resolved before a cancel are still worth keeping.
	if err := writeResults(os.Stdout, *outFlag, games); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		return 1
	}

	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Download cancelled.")
		return 130
	}

	return 0
}

// writeResults writes the updated manifest to out: nowhere when out is
// empty, stdout when it is "-", otherwise the named file.
func writeResults(stdout io.Writer, out string, games []*model.Game) error {
	switch out {
	case "":
		return nil
	case "-":
		return catalog.Encode(stdout, games)
	default:
		return catalog.Save(out, games)
	}
}

func runList(args []string) int {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	var (
		configFlag = fs.String("config", "", "Path to config file (.yaml, .yml or .json)")
		cacheFlag  = fs.String("cache", "", "Cache directory (overrides config)")
	)
	fs.Usage = usage(fs)
	_ = fs.Parse(args)

	settings, err := loadSettings(*configFlag, *cacheFlag, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	store, err := cache.Open(settings.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx := context.Background()
	entries, err := store.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing cache: %v\n", err)
		return 1
	}

	images := ioutils.NewImageService()
	var total int64
	for _, e := range entries {
		dims := "unreadable"
		if info, err := images.Inspect(ctx, e.Path); err == nil {
			dims = info.String()
		}
		fmt.Printf("%-60s %10d  %s\n", e.Key, e.Size, dims)
		total += e.Size
	}
	fmt.Printf("%d file(s), %.2f MB in %s\n", len(entries), float64(total)/1024/1024, store.Dir())

	return 0
}
