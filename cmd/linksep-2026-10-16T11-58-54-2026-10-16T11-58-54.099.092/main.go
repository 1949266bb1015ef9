package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linksep"
	"github.com/fwojciec/linksep/crawl"
	"github.com/fwojciec/linksep/goquery"
	linksephttp "github.com/fwojciec/linksep/http"
	"github.com/fwojciec/linksep/rod"
	lsslog "github.com/fwojciec/linksep/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded into the environment before parsing, if it exists.
	EnvFile string

	// Fetcher overrides the page fetcher. Set before calling Run().
	Fetcher linksep.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile: ".env",
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		if err := godotenv.Load(m.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", m.EnvFile, err)
		}
	}

	path, required := configPath(args)
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("linksep"),
		kong.Description("Measure how many links separate a wiki page from a target page"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		cfg.Vars(),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'linksep --help' to see available commands")
	}
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, logCloser, err := newLogger(cli.Log, stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	deps.Logger = logger

	fetcher, err := m.newFetcher(cli, stderr)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	deps.Searcher = newSearcher(cli, lsslog.NewLoggingFetcher(fetcher, logger), logger)

	return kongCtx.Run(deps)
}

func (m *Main) newFetcher(cli *CLI, stderr io.Writer) (linksep.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if cli.Browser {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(cli.FetchTimeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --browser")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return f, nil
	}
	return linksephttp.NewFetcher(linksephttp.WithTimeout(cli.FetchTimeout)), nil
}

// newSearcher assembles the search pipeline around fetcher.
func newSearcher(cli *CLI, fetcher linksep.Fetcher, logger *slog.Logger) linksep.Searcher {
	searcher := &crawl.Searcher{
		Engine: crawl.Engine{
			Fetcher:      fetcher,
			Links:        goquery.NewExtractor(goquery.WithOrigin(cli.Origin)),
			Target:       linksep.SubstringTarget(cli.Target),
			FetchTimeout: cli.FetchTimeout,
			RetryDelays:  crawl.RetryDelays(cli.Retries),
			Progress:     lsslog.NewProgressLogger(logger),
		},
		SkipVisited: cli.SkipVisited,
	}
	return lsslog.NewLoggingSearcher(searcher, logger)
}
