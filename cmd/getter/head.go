package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	getterhttp "github.com/rekanorman/getter/internal/http"
	"github.com/rekanorman/getter/internal/partition"
)

// runHead prints the content length a HEAD request reports for a
// resource, which is the size a fetch would partition.
func runHead(args []string) int {
	fs := flag.NewFlagSet("head", flag.ExitOnError)

	url := fs.String("url", "", "Resource to query, as host/page (required)")
	port := fs.Int("port", 80, "Server port")
	timeout := fs.Duration("timeout", 30*time.Second, "Per-connection timeout")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: getter head [options]

Print the content length reported for a resource.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *url == "" {
		fmt.Fprintln(os.Stderr, "Error: -url is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	host, page, err := getterhttp.SplitURL(*url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	opts := getterhttp.DefaultOptions()
	opts.IOTimeout = *timeout

	length, err := partition.ContentLength(context.Background(), opts, host, page, *port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, getterhttp.ErrResolve), errors.Is(err, getterhttp.ErrConnect):
			return ExitConnectFailed
		case errors.Is(err, partition.ErrMissingContentLength):
			return ExitNoLength
		default:
			return ExitGeneralError
		}
	}

	fmt.Println(length)
	return ExitSuccess
}
