package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fwojciec/linksep"
	linksephttp "github.com/fwojciec/linksep/http"
)

// Dependencies holds the services and configuration commands run with.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Searcher linksep.Searcher
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string   `help:"TOML config file (default linksep.toml when present)" env:"LINKSEP_CONFIG" type:"path"`
	Log    LogFlags `embed:"" prefix:"log-"`

	Target       string        `help:"Link fragment that marks the target page" env:"LINKSEP_TARGET" default:"${target}"`
	Origin       string        `help:"Site origin for relative links" env:"LINKSEP_ORIGIN" default:"${origin}"`
	FetchTimeout time.Duration `help:"Timeout for each page fetch" default:"${fetch_timeout}"`
	Retries      int           `help:"Extra attempts for failed fetches" default:"${retries}"`
	Browser      bool          `help:"Render pages with headless Chrome" default:"${browser}"`
	SkipVisited  bool          `help:"Skip links already seen at an earlier depth" default:"${skip_visited}"`

	Serve  ServeCmd  `cmd:"" help:"Serve the link-separation HTTP API"`
	Search SearchCmd `cmd:"" help:"Run a single search and print the hop count"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Host          string        `help:"Listen host" env:"SERVER_HOST" default:"${host}"`
	Port          int           `help:"Listen port" env:"SERVER_PORT" default:"${port}"`
	SearchTimeout time.Duration `help:"Upper bound on a single search" default:"${search_timeout}"`
	RateLimit     float64       `help:"Searches per second allowed per client (0 disables)" default:"${rate_limit}"`
	RateBurst     int           `help:"Burst size for --rate-limit" default:"${rate_burst}"`
}

// Run serves until the context ends or the process receives SIGINT or SIGTERM.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := linksephttp.NewServer(deps.Searcher,
		linksephttp.WithLogger(deps.Logger),
		linksephttp.WithSearchTimeout(c.SearchTimeout),
		linksephttp.WithRateLimit(c.RateLimit, c.RateBurst),
	)
	server.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))

	if err := server.Open(); err != nil {
		return fmt.Errorf("listening on %s: %w", server.Addr, err)
	}
	deps.Logger.Info("server listening", "url", server.URL())

	<-ctx.Done()

	deps.Logger.Info("shutting down")
	return server.Close()
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	URL        string `arg:"" help:"Page to start from"`
	DepthLimit int    `help:"Maximum link separation to explore" default:"${depth_limit}"`
	BatchLimit int    `help:"Maximum concurrent fetches" default:"${batch_limit}"`
}

// Run executes one search and prints its result.
func (c *SearchCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := deps.Searcher.Search(ctx, linksep.SearchRequest{
		StartURL:   c.URL,
		DepthLimit: c.DepthLimit,
		BatchLimit: c.BatchLimit,
	})
	if linksep.ErrorCode(err) == linksep.EINVALID {
		return fmt.Errorf("invalid search: %s", linksep.ErrorMessage(err))
	} else if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, result.String())
	return nil
}
