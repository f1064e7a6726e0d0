package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

type report struct {
	numSamples int           // Number of samples accumulated
	numChunks  int           // Number of partial histograms built
	numSkipped int           // Number of lines that could not be parsed
	timeTotal  time.Duration // Time spent accumulating chunks
}

func (r *report) Add(samples int, elapsed time.Duration) {
	r.numSamples += samples
	r.numChunks += 1
	r.timeTotal += elapsed
}

func (r *report) MergeInto(into *report) *report {
	if into == nil {
		into = &report{}
	}

	into.numSamples += r.numSamples
	into.numChunks += r.numChunks
	into.numSkipped += r.numSkipped
	into.timeTotal += r.timeTotal
	return into
}

// Log writes the report along with the wall time of the whole run.
func (r *report) Log(elapsed time.Duration) {
	var event *zerolog.Event
	if r.numSkipped > 0 {
		event = logger.Warn().Str("skipped", humanize.Comma(int64(r.numSkipped)))
	} else {
		event = logger.Info()
	}
	event.
		Str("samples", humanize.Comma(int64(r.numSamples))).
		Int("chunks", r.numChunks).
		Dur("accumulating", r.timeTotal).
		Dur("elapsed", elapsed).
		Msg("ingestion complete")
}
