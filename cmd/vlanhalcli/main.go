package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v3"
)

var (
	serverAddr = flag.String("server", "127.0.0.1:8186", "vlanhald API address")
	format     = flag.String("format", formatTable, "output format (table or json)")
	waitReady  = flag.Duration("wait", 5*time.Second, "how long to wait for the daemon to come up")
)

func main() {
	flag.Parse()

	if *format != formatTable && *format != formatJSON {
		fmt.Fprintf(os.Stderr, "Unknown output format %q\n", *format)
		os.Exit(1)
	}

	client := NewClient(*serverAddr)

	if err := waitForDaemon(client, *waitReady); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", *serverAddr, err)
		fmt.Fprintf(os.Stderr, "Make sure vlanhald is running\n")
		os.Exit(1)
	}

	cli := NewCLI(client, *serverAddr, *format)

	// One-shot mode: remaining args form a single command.
	if flag.NArg() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cli.dispatch(ctx, strings.Join(flag.Args(), " ")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cli.Stop()
		os.Exit(0)
	}()

	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func waitForDaemon(client *Client, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx)
	}, b)
}
