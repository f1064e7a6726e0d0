package main

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/INFURA/hstats/hstats"
)

const chanBuffer = 1024

// Ingester splits a sample stream into chunks, accumulates every chunk into
// its own histogram and merges the partial histograms into one.
type Ingester struct {
	Start       float64
	End         float64
	Bins        int
	Concurrency int // Number of goroutines accumulating chunks. Must be >=1.
	ChunkSize   int // Number of samples per partial histogram. Must be >=1.
}

// Run consumes src and returns the merged histogram. The result does not
// depend on Concurrency or ChunkSize beyond floating point rounding.
func (in *Ingester) Run(ctx context.Context, src Source) (*hstats.Histogram[float64], *report, error) {
	result, err := hstats.New(in.Start, in.End, in.Bins)
	if err != nil {
		return nil, nil, err
	}
	if in.Concurrency < 1 {
		in.Concurrency = 1
	}
	if in.ChunkSize < 1 {
		in.ChunkSize = 1
	}

	g, ctx := errgroup.WithContext(ctx)

	samplesCh := make(chan float64, chanBuffer)
	chunks := make(chan []float64, in.Concurrency)
	partials := make(chan *hstats.Histogram[float64], in.Concurrency)

	var skipped int
	g.Go(func() error {
		defer close(samplesCh)
		var err error
		skipped, err = src.Stream(ctx, samplesCh)
		return err
	})

	g.Go(func() error {
		defer close(chunks)
		chunk := make([]float64, 0, in.ChunkSize)
		for v := range samplesCh {
			chunk = append(chunk, v)
			if len(chunk) < in.ChunkSize {
				continue
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
			chunk = make([]float64, 0, in.ChunkSize)
		}
		if len(chunk) > 0 {
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	reports := make([]report, in.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < in.Concurrency; i++ {
		wg.Add(1)
		rep := &reports[i]
		g.Go(func() error {
			defer wg.Done()
			for chunk := range chunks {
				timeStarted := time.Now()
				h, err := hstats.New(in.Start, in.End, in.Bins)
				if err != nil {
					return err
				}
				for _, v := range chunk {
					h.Add(v)
				}
				rep.Add(len(chunk), time.Since(timeStarted))

				select {
				case partials <- h:
				case <-ctx.Done():
					logger.Debug().Msg("shutting down worker")
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(partials)
	}()

	g.Go(func() error {
		for h := range partials {
			merged, err := result.Merge(h)
			if err != nil {
				return err
			}
			result = merged
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := &report{numSkipped: skipped}
	for i := range reports {
		reports[i].MergeInto(total)
	}
	return result, total, nil
}
