package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocklog/internal/api"
	"stocklog/internal/calendar"
	"stocklog/internal/eod"
	"stocklog/internal/interfaces"
	"stocklog/internal/logger"
	"stocklog/internal/server"
	"stocklog/internal/store"
)

const usageText = `Usage: stocklog [flags] <command> [command flags]

Commands:
  days          per-day signal counts and P&L rollup
  trades        closed trades with P&L, drawdown and drawup
  day           raw rows for one date (-date YYYY-MM-DD, -row N for detail)
  partitions    data folder partitions in scan order
  diagnostics   partitions that could not be read
  calendar      calendar events as JSON
  export        write trades.csv and days.csv (-out DIR)
  compress      gzip metadata of partitions before a name (-before NAME)
  serve         run the read-only HTTP API

Flags:
`

var errUsage = errors.New("usage")

type options struct {
	ConfigPath     string
	ConfigExplicit bool
	Format         string
	Remote         string
	RemoteTimeout  time.Duration
}

func main() {
	configPath := flag.String("config", store.DefaultConfigPath, "path to config file")
	format := flag.String("format", formatTable, "output format: table, json, or csv")
	remote := flag.String("remote", "", "base URL of a running stocklog server to query instead of the data folder")
	timeout := flag.Duration("remote-timeout", 30*time.Second, "HTTP timeout for -remote requests")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := options{ConfigPath: *configPath, Format: *format, Remote: *remote, RemoteTimeout: *timeout}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			opts.ConfigExplicit = true
		}
	})

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts, flag.Args(), os.Stdout)
	stop()
	shutdownSystem()

	if errors.Is(err, errUsage) {
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries what a command needs. local is nil in remote mode.
type app struct {
	opts       options
	cfg        *store.Config
	summarizer interfaces.StockLogSummarizer
	local      *eod.Summarizer
	remote     *api.Client
	out        io.Writer
}

func run(ctx context.Context, opts options, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	if !validFormat(opts.Format) {
		return fmt.Errorf("unknown format %q: %w", opts.Format, errUsage)
	}

	a := &app{opts: opts, out: out}
	if opts.Remote != "" {
		a.remote, a.summarizer = initializeRemote(ctx, opts.Remote, opts.RemoteTimeout)
	} else {
		cfg, err := loadConfig(ctx, opts.ConfigPath, opts.ConfigExplicit)
		if err != nil {
			return err
		}
		a.cfg = cfg
		if a.local, a.summarizer, err = initializeLocal(ctx, cfg); err != nil {
			return err
		}
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "days":
		return a.days(ctx)
	case "trades":
		return a.trades(ctx)
	case "day":
		return a.day(ctx, rest)
	case "partitions":
		return a.partitions(ctx)
	case "diagnostics":
		return a.diagnostics(ctx)
	case "calendar":
		return a.calendar(ctx)
	case "export":
		return a.export(ctx, rest)
	case "compress":
		return a.compress(ctx, rest)
	case "serve":
		return a.serve(ctx)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func (a *app) requireLocal(cmd string) error {
	if a.local == nil {
		return fmt.Errorf("%s works on the local data folder only; drop -remote", cmd)
	}
	return nil
}

func (a *app) days(ctx context.Context) error {
	res, err := a.summarizer.FindDayStats(ctx)
	if err != nil {
		return err
	}
	return printDays(a.out, a.opts.Format, res.Days)
}

func (a *app) trades(ctx context.Context) error {
	res, err := a.summarizer.FindDayStats(ctx)
	if err != nil {
		return err
	}
	return printTrades(a.out, a.opts.Format, res.Trades)
}

func (a *app) day(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("day", flag.ContinueOnError)
	date := fs.String("date", "", "date to show, YYYY-MM-DD (default: latest date with data)")
	row := fs.Int("row", -1, "show detail for this row index")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *date == "" {
		res, err := a.summarizer.FindDayStats(ctx)
		if err != nil {
			return err
		}
		*date = res.LastDate()
		if *date == "" {
			_, err := fmt.Fprintln(a.out, "No data available. Check the data folder.")
			return err
		}
	}
	if !eod.ValidDate(*date) {
		return fmt.Errorf("invalid -date %q: want YYYY-MM-DD", *date)
	}

	dd, err := a.summarizer.GetDayData(ctx, *date)
	if err != nil {
		return err
	}
	if *row < 0 || !dd.Found {
		return printDayData(a.out, a.opts.Format, dd)
	}
	if *row >= len(dd.Rows) {
		return fmt.Errorf("row %d out of range, %s has %d rows", *row, *date, len(dd.Rows))
	}

	shot, err := a.summarizer.Screenshot(ctx, *date, *row)
	if err != nil {
		logger.Debug(ctx, "Screenshot unavailable", "date", *date, "row", *row, "error", err)
		shot = ""
	}
	return printRowDetail(a.out, a.opts.Format, dd, *row, shot)
}

func (a *app) partitions(ctx context.Context) error {
	parts, err := a.summarizer.Partitions(ctx)
	if err != nil {
		return err
	}
	return printPartitions(a.out, a.opts.Format, parts)
}

func (a *app) diagnostics(ctx context.Context) error {
	res, err := a.summarizer.FindDayStats(ctx)
	if err != nil {
		return err
	}
	return printDiagnostics(a.out, a.opts.Format, res.Diagnostics)
}

// calendar uses the server's calendar settings in remote mode.
func (a *app) calendar(ctx context.Context) error {
	if a.remote != nil {
		cal, err := a.remote.Calendar(ctx)
		if err != nil {
			return err
		}
		return writeJSON(a.out, cal)
	}
	res, err := a.summarizer.FindDayStats(ctx)
	if err != nil {
		return err
	}
	return writeJSON(a.out, calendar.Build(res, calendarOptions(a.cfg)))
}

func (a *app) export(ctx context.Context, args []string) error {
	if err := a.requireLocal("export"); err != nil {
		return err
	}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dir := fs.String("out", a.cfg.Export.Dir, "output directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	res, err := a.summarizer.FindDayStats(ctx)
	if err != nil {
		return err
	}
	tradesPath, daysPath, err := eod.ExportCSV(*dir, res)
	if err != nil {
		logger.ErrorWithErr(ctx, "Export failed", err, "dir", *dir)
		return err
	}
	logger.Info(ctx, "Export written", "trades", tradesPath, "days", daysPath)
	_, err = fmt.Fprintf(a.out, "%s\n%s\n", tradesPath, daysPath)
	return err
}

func (a *app) compress(ctx context.Context, args []string) error {
	if err := a.requireLocal("compress"); err != nil {
		return err
	}
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	before := fs.String("before", a.cfg.Retention.CompressBefore, "compress partitions whose name sorts before this")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *before == "" {
		return errors.New("compress needs -before or retention.compress_before")
	}

	n, err := a.local.Compress(*before)
	if err != nil {
		logger.ErrorWithErr(ctx, "Compress failed", err, "before", *before)
		return err
	}
	logger.Info(ctx, "Partitions compressed", "count", n, "before", *before)
	_, err = fmt.Fprintf(a.out, "compressed %d partition(s)\n", n)
	return err
}

func (a *app) serve(ctx context.Context) error {
	if err := a.requireLocal("serve"); err != nil {
		return err
	}
	h := server.New(a.summarizer, calendarOptions(a.cfg))
	return server.Run(ctx, server.Config{
		Addr:         a.cfg.Server.Addr,
		ReadTimeout:  a.cfg.ReadTimeout(),
		WriteTimeout: a.cfg.WriteTimeout(),
	}, h)
}

func calendarOptions(cfg *store.Config) calendar.Options {
	return calendar.Options{
		ResourceID:   cfg.Calendar.ResourceID,
		ResourceName: cfg.Calendar.ResourceName,
		InitialView:  cfg.Calendar.InitialView,
	}
}
