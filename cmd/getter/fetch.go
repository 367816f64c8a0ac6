package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/rekanorman/getter/internal/config"
	"github.com/rekanorman/getter/internal/downloader"
	getterhttp "github.com/rekanorman/getter/internal/http"
	"github.com/rekanorman/getter/internal/logging"
	"github.com/rekanorman/getter/internal/partition"
	"github.com/rekanorman/getter/internal/progress"
)

// runFetch downloads one resource, or every resource in a URL list
// file, over one shared worker pool.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	url := fs.String("url", "", "Resource to fetch, as host/page (required unless -urls is given)")
	urlFile := fs.String("urls", "", "File with one host/page per line")
	port := fs.Int("port", 0, "Server port")
	workers := fs.Int("workers", 0, "Number of parallel download workers")
	queueCap := fs.Int("queue", 0, "Task queue capacity")
	timeout := fs.Duration("timeout", 0, "Per-connection timeout")
	output := fs.String("output", "", "Output file path (default: the page's last path segment)")
	bucket := fs.String("bucket", "", "gocloud bucket URL to write to instead of a local file")
	object := fs.String("object", "", "Object key when writing to a bucket")
	showProgress := fs.Bool("progress", false, "Show a progress bar")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: getter fetch [options]

Download a resource in parallel byte-range chunks over HTTP/1.0 and
write the reassembled bytes to a local file or a bucket.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	cfg = cfg.Merge(config.Config{
		URL:           *url,
		Port:          *port,
		Workers:       *workers,
		QueueCapacity: *queueCap,
		Timeout:       *timeout,
		Output:        *output,
		Bucket:        *bucket,
		Object:        *object,
		Progress:      *showProgress,
	})

	if *urlFile == "" {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fs.Usage()
			return ExitInvalidArgs
		}
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[getter] Received interrupt, shutting down...")
		cancel()
	}()

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{})
	}

	d, err := downloader.Open(downloader.Options{
		Workers:       cfg.Workers,
		QueueCapacity: cfg.QueueCapacity,
		HTTP:          getterhttp.Options{IOTimeout: cfg.Timeout},
		Logger:        logger,
		Progress:      reporter,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer d.Close()

	if *urlFile != "" {
		return fetchList(ctx, d, cfg, *urlFile)
	}
	return fetchOne(ctx, d, cfg, cfg.URL, cfg.Output)
}

// fetchOne downloads a single host/page URL and writes it to the
// configured sink.
func fetchOne(ctx context.Context, d *downloader.Downloader, cfg config.Config, url, output string) int {
	host, page, err := getterhttp.SplitURL(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	start := time.Now()
	data, err := d.Fetch(ctx, host, page, cfg.Port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return fetchExitCode(err)
	}

	if cfg.Bucket != "" {
		key := cfg.Object
		if key == "" {
			key = outputName(page)
		}
		if err := writeToBucket(ctx, cfg.Bucket, key, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitWriteFailed
		}
		fmt.Fprintf(os.Stderr, "[getter] Wrote %d bytes to %s/%s in %s\n",
			len(data), cfg.Bucket, key, time.Since(start).Round(time.Millisecond))
		return ExitSuccess
	}

	if output == "" {
		output = outputName(page)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		return ExitWriteFailed
	}
	fmt.Fprintf(os.Stderr, "[getter] Wrote %d bytes to %s in %s\n",
		len(data), output, time.Since(start).Round(time.Millisecond))
	return ExitSuccess
}

// fetchList downloads every URL in the list file sequentially over the
// shared worker pool, one line per host/page.
func fetchList(ctx context.Context, d *downloader.Downloader, cfg config.Config, path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening url list: %v\n", err)
		return ExitInvalidArgs
	}
	defer f.Close()

	// A single object key would make every download overwrite the
	// previous one; in list mode each URL derives its own key.
	cfg.Object = ""

	code := ExitSuccess
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rc := fetchOne(ctx, d, cfg, line, ""); rc != ExitSuccess {
			code = rc
		}
		if ctx.Err() != nil {
			return code
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading url list: %v\n", err)
		return ExitGeneralError
	}
	return code
}

// writeToBucket stores the assembled resource under key in a gocloud
// bucket.
func writeToBucket(ctx context.Context, bucketURL, key string, data []byte) error {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("open bucket: %w", err)
	}
	defer bkt.Close()

	if err := bkt.WriteAll(ctx, key, data, nil); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// outputName derives a local filename from the requested page.
func outputName(page string) string {
	name := path.Base(strings.TrimSuffix(page, "/"))
	if name == "" || name == "." || name == "/" {
		return "index.html"
	}
	return name
}

// fetchExitCode maps a fetch error onto the command's exit codes.
func fetchExitCode(err error) int {
	switch {
	case errors.Is(err, getterhttp.ErrResolve), errors.Is(err, getterhttp.ErrConnect):
		return ExitConnectFailed
	case errors.Is(err, partition.ErrMissingContentLength):
		return ExitNoLength
	default:
		return ExitFetchFailed
	}
}
