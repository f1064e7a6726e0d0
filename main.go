package main // import "github.com/INFURA/hstats"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/INFURA/hstats/hstats"
)

// Options contains the flag options
type Options struct {
	Start     float64 `long:"start" description:"Lower bound of the histogram range; smaller samples are counted as underflow" default:"-8"`
	End       float64 `long:"end" description:"Upper bound of the histogram range; samples at or above it are counted as overflow" default:"10"`
	Bins      int     `long:"bins" description:"Number of equal-width bins between start and end" default:"30"`
	Precision int     `long:"precision" description:"Number of decimals in the report" default:"2"`
	BarChar   string  `long:"bar-char" description:"String used to draw the bars" default:"░"`

	Concurrency int           `short:"c" long:"concurrency" description:"Number of goroutines accumulating chunks" default:"1"`
	ChunkSize   int           `long:"chunk-size" description:"Number of samples accumulated per partial histogram" default:"100000"`
	Timeout     time.Duration `long:"timeout" description:"Timeout for http and websocket sources; 0 disables it" default:"10s"`
	Generate    bool          `long:"generate" description:"Write the samples of a normal:// source to stdout instead of accumulating them"`
	Verbose     []bool        `short:"v" long:"verbose" description:"Show verbose logging."`

	Args struct {
		Source string `positional-arg-name:"source" description:"Where to read samples from: - (stdin), http(s)://, ws(s)://, normal://?mean=&stddev=&seed=&samples= or noop://"`
	} `positional-args:"yes"`
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, options, os.Stdout); err != nil {
		exit(1, "%s\n", err)
	}
}

func run(ctx context.Context, options Options, out io.Writer) error {
	setVerbosity(len(options.Verbose))

	src, err := NewSource(options.Args.Source, options.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	if options.Generate {
		normal, ok := src.(*normalSource)
		if !ok {
			return errors.New("--generate requires a normal:// source")
		}
		return normal.Dump(out)
	}

	in := Ingester{
		Start:       options.Start,
		End:         options.End,
		Bins:        options.Bins,
		Concurrency: options.Concurrency,
		ChunkSize:   options.ChunkSize,
	}
	logger.Debug().
		Float64("start", in.Start).
		Float64("end", in.End).
		Int("bins", in.Bins).
		Int("concurrency", in.Concurrency).
		Int("chunk_size", in.ChunkSize).
		Msg("starting ingestion")

	timeStarted := time.Now()
	h, r, err := in.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to ingest samples: %w", err)
	}
	r.Log(time.Since(timeStarted))

	return render(h.WithPrecision(options.Precision).WithBarChar(options.BarChar), out)
}

func render(h *hstats.Histogram[float64], out io.Writer) error {
	if _, err := h.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
