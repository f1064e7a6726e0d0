package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/INFURA/hstats/internal/samples"
)

func collect(t *testing.T, src Source) ([]float64, int, error) {
	t.Helper()

	out := make(chan float64, 10000)
	skipped, err := src.Stream(context.Background(), out)
	close(out)

	var got []float64
	for v := range out {
		got = append(got, v)
	}
	return got, skipped, err
}

func assertSamples(t *testing.T, got, want []float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got: %v; want: %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got: %f; want: %f", i, got[i], want[i])
		}
	}
}

func TestReaderSource(t *testing.T) {
	src := &readerSource{r: strings.NewReader("1\n 2.5 \n\nfoo\n-3e2\nNaN\n")}

	got, skipped, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := skipped, 1; got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}
	if len(got) != 4 || !math.IsNaN(got[3]) {
		t.Fatalf("got: %v; want 4 samples ending in NaN", got)
	}
	assertSamples(t, got[:3], []float64{1, 2.5, -300})
}

func TestReaderSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &readerSource{r: strings.NewReader("1\n2\n")}
	if _, err := src.Stream(ctx, make(chan float64)); err != context.Canceled {
		t.Errorf("got: %v; want: %v", err, context.Canceled)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "1\n2.5\nfoo\n\n-3\n")
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, skipped, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := skipped, 1; got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}
	assertSamples(t, got, []float64{1, 2.5, -3})
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := collect(t, src); err == nil || err.Error() != "bad status code: 404" {
		t.Errorf("got: %v; want: bad status code: 404", err)
	}
}

func TestWebsocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range []string{"1", "2\n3", "bad", "4.5\n"} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	src, err := NewSource("ws"+strings.TrimPrefix(srv.URL, "http"), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, skipped, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := skipped, 1; got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}
	assertSamples(t, got, []float64{1, 2, 3, 4.5})
}

func TestWebsocketSourceEmptyClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte("7\n8"))
		// No status code in the close frame.
		conn.WriteMessage(websocket.CloseMessage, nil)
	}))
	defer srv.Close()

	src, err := NewSource("ws"+strings.TrimPrefix(srv.URL, "http"), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	assertSamples(t, got, []float64{7, 8})
}

func TestHTTPSourceNoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		fmt.Fprint(w, "4\n5\n")
	}))
	defer srv.Close()

	src, err := NewSource(srv.URL, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	assertSamples(t, got, []float64{4, 5})
}

func TestNormalSource(t *testing.T) {
	src, err := NewSource("normal://?mean=2&stddev=3&seed=7&samples=250", 0)
	if err != nil {
		t.Fatal(err)
	}
	got, skipped, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := skipped, 0; got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}
	assertSamples(t, got, samples.NewNormal(2, 3, 7).Fill(make([]float64, 250)))
}

func TestNewSourceErrors(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"ftp://example.com/samples", "unsupported source: ftp"},
		{"normal://?mean=abc", "invalid mean"},
		{"normal://?stddev=-1", "stddev must not be negative"},
		{"normal://?samples=1.5", "invalid samples"},
		{"normal://?seed=x", "invalid seed"},
	}

	for _, tc := range tests {
		src, err := NewSource(tc.source, time.Second)
		if src != nil {
			t.Errorf("%s: got source; want nil", tc.source)
		}
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: got: %v; want: %s", tc.source, err, tc.want)
		}
	}
}

func TestNoopSource(t *testing.T) {
	src, err := NewSource("noop://", 0)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := collect(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got: %v; want no samples", got)
	}
}
