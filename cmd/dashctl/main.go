// Command dashctl renders the mediawatch dashboard views in the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/jessevdk/go-flags"

	"mediawatch/pkg/client"
)

// Options are shared by every command.
type Options struct {
	API      string        `long:"api" env:"MEDIAWATCH_API" default:"http://localhost:8080" description:"API server root"`
	CacheDir string        `long:"cache-dir" env:"MEDIAWATCH_CACHE_DIR" description:"directory of the persistent response cache (disabled when empty)"`
	Timeout  time.Duration `long:"timeout" env:"MEDIAWATCH_TIMEOUT" default:"10s" description:"HTTP timeout"`
	JSONLogs bool          `long:"json-logs" env:"JSON_LOGS" description:"turn on json logs"`
	Debug    bool          `long:"dbg" env:"DEBUG" description:"turn on debug mode"`

	Global     GlobalCmd     `command:"global" description:"global coverage, top countries and continents"`
	Country    CountryCmd    `command:"country" description:"details and timeline of one country"`
	Continents ContinentsCmd `command:"continents" description:"coverage by continent"`
	Sources    SourcesCmd    `command:"sources" description:"articles grouped by author or country"`
	Analysis   AnalysisCmd   `command:"analysis" description:"per-source analysis"`
	Averages   AveragesCmd   `command:"averages" description:"highest and lowest daily averages"`
	Compare    CompareCmd    `command:"compare" description:"compare two timeframes"`
	Recent     RecentCmd     `command:"recent" description:"most recent articles"`
	Historical HistoricalCmd `command:"historical" description:"bucketed history with top sources and countries"`
	Refresh    RefreshCmd    `command:"refresh" description:"purge the server response cache (admin)"`
}

var opts Options

var version = "unknown"

func getVersion() string {
	v, ok := debug.ReadBuildInfo()
	if !ok || v.Main.Version == "(devel)" || v.Main.Version == "" {
		return version
	}
	return v.Main.Version
}

// env is what a command needs to run: a client and somewhere to print.
type env struct {
	client *client.Client
	out    io.Writer
	close  func()
}

func newEnv() (*env, error) {
	cfg := client.Config{
		BaseURL: opts.API,
		Timeout: opts.Timeout,
		Logger:  slog.Default(),
		Debug:   opts.Debug,
	}
	e := &env{out: os.Stdout, close: func() {}}
	if opts.CacheDir != "" {
		disk, err := client.NewBoltCache(filepath.Clean(opts.CacheDir), client.DefaultTTL)
		if err != nil {
			return nil, err
		}
		cfg.Disk = disk
		e.close = func() {
			if err := disk.Close(); err != nil {
				slog.Warn("failed to close cache", slog.Any("error", err))
			}
		}
	}
	e.client = client.New(cfg)
	return e, nil
}

func main() {
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLog()
		slog.Debug("dashctl", slog.String("version", getVersion()), slog.String("api", opts.API))

		if err := cmd.Execute(args); err != nil {
			slog.Error("failed to execute command", slog.Any("err", err))
			os.Exit(1)
		}
		return nil
	}

	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "run with --help for usage")
		os.Exit(1)
	}
}

func setupLog() {
	handler := &slog.HandlerOptions{Level: slog.LevelInfo}
	if opts.Debug {
		handler.Level = slog.LevelDebug
		handler.AddSource = true
	}

	if opts.JSONLogs {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, handler)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, handler)))
}
