package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"

	"github.com/INFURA/hstats/internal/samples"
)

// NewSource returns the sample source described by source, which is either
// empty or "-" for stdin, or a URL.
func NewSource(source string, timeout time.Duration) (Source, error) {
	if source == "" || source == "-" {
		return &readerSource{r: os.Stdin}, nil
	}
	url, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	switch url.Scheme {
	case "http", "https":
		return &httpSource{
			Client:   fasthttp.Client{ReadTimeout: timeout},
			endpoint: source,
			timeout:  timeout,
		}, nil
	case "ws", "wss":
		return &websocketSource{
			Dialer:   websocket.Dialer{HandshakeTimeout: timeout},
			endpoint: source,
		}, nil
	case "normal":
		src, err := newNormalSource(url.Query())
		if err != nil {
			return nil, err
		}
		return src, nil
	case "noop":
		return &noopSource{}, nil
	}
	return nil, fmt.Errorf("unsupported source: %s", url.Scheme)
}

type Source interface {
	// Stream sends every sample to out until the source is exhausted or ctx
	// is done. It returns the number of lines that could not be parsed.
	Stream(ctx context.Context, out chan<- float64) (skipped int, err error)
}

func send(ctx context.Context, out chan<- float64, v float64) error {
	select {
	case out <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scanSamples parses r as newline-separated numbers. Blank lines are ignored.
func scanSamples(ctx context.Context, r io.Reader, out chan<- float64) (int, error) {
	skipped := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(string(line), 64)
		if err != nil {
			skipped++
			logger.Debug().Bytes("line", line).Err(err).Msg("skipping sample")
			continue
		}
		if err := send(ctx, out, v); err != nil {
			return skipped, err
		}
	}
	return skipped, scanner.Err()
}

type readerSource struct {
	r io.Reader
}

func (s *readerSource) Stream(ctx context.Context, out chan<- float64) (int, error) {
	return scanSamples(ctx, s.r, out)
}

type httpSource struct {
	fasthttp.Client

	endpoint string
	timeout  time.Duration
}

func (s *httpSource) Stream(ctx context.Context, out chan<- float64) (int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.endpoint)
	req.Header.SetMethod("GET")
	// A zero timeout means no timeout, as for the websocket handshake.
	var err error
	if s.timeout > 0 {
		err = s.Client.DoTimeout(req, resp, s.timeout)
	} else {
		err = s.Client.Do(req, resp)
	}
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() >= 400 {
		return 0, fmt.Errorf("bad status code: %d", resp.StatusCode())
	}
	// TODO: Enable Client.StreamResponseBody and scan resp.BodyStream() so
	// large sample files are not buffered in memory.
	return scanSamples(ctx, bytes.NewReader(resp.Body()), out)
}

// websocketSource reads samples from every message until the server closes
// the connection.
type websocketSource struct {
	websocket.Dialer

	endpoint string
}

func (s *websocketSource) Stream(ctx context.Context, out chan<- float64) (int, error) {
	conn, _, err := s.Dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	skipped := 0
	for {
		_, msg, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			return skipped, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return skipped, ctx.Err()
			}
			return skipped, err
		}
		n, err := scanSamples(ctx, bytes.NewReader(msg), out)
		skipped += n
		if err != nil {
			return skipped, err
		}
	}
}

// normalSource generates samples from a normal distribution. It is configured
// with query parameters, e.g. normal://?mean=2&stddev=3&seed=42&samples=1000.
type normalSource struct {
	mean, stdDev float64
	seed         int64
	samples      int
}

func newNormalSource(query url.Values) (*normalSource, error) {
	s := &normalSource{stdDev: 1, seed: 42, samples: 1000}
	var err error
	if v := query.Get("mean"); v != "" {
		if s.mean, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid mean: %w", err)
		}
	}
	if v := query.Get("stddev"); v != "" {
		if s.stdDev, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid stddev: %w", err)
		}
	}
	if v := query.Get("seed"); v != "" {
		if s.seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %w", err)
		}
	}
	if v := query.Get("samples"); v != "" {
		if s.samples, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid samples: %w", err)
		}
	}
	if s.stdDev < 0 {
		return nil, fmt.Errorf("stddev must not be negative: %v", s.stdDev)
	}
	return s, nil
}

func (s *normalSource) generator() *samples.Generator {
	return samples.NewNormal(s.mean, s.stdDev, s.seed)
}

// Dump writes the samples Stream would produce to w, one per line.
func (s *normalSource) Dump(w io.Writer) error {
	return s.generator().WriteSamples(w, s.samples)
}

func (s *normalSource) Stream(ctx context.Context, out chan<- float64) (int, error) {
	gen := s.generator()
	for i := 0; i < s.samples; i++ {
		if err := send(ctx, out, gen.Next()); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

type noopSource struct{}

func (s *noopSource) Stream(ctx context.Context, out chan<- float64) (int, error) {
	return 0, nil
}
