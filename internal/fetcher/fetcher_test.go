package fetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/media"
)

func newScratch(t *testing.T) *media.Scratch {
	t.Helper()
	scratch, err := media.NewScratch(t.TempDir(), "fetch-test")
	if err != nil {
		t.Fatalf("NewScratch: %v", err)
	}
	t.Cleanup(func() { _ = scratch.Close() })
	return scratch
}

func TestFetchDownloadsWithinBudget(t *testing.T) {
	payload := bytes.Repeat([]byte{0x41}, 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	f := New(nil, 10*1024, nil)
	asset, err := f.Fetch(context.Background(), server.URL+"/clip.mp4", Budget{MaxBytes: 1 << 20}, newScratch(t))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if asset.SizeBytes != int64(len(payload)) {
		t.Fatalf("size = %d", asset.SizeBytes)
	}
	if asset.MIMEType != "video/mp4" {
		t.Fatalf("mime = %q", asset.MIMEType)
	}
	if asset.SourceURL != server.URL+"/clip.mp4" {
		t.Fatalf("source url = %q", asset.SourceURL)
	}
	info, err := os.Stat(asset.Path)
	if err != nil || info.Size() != int64(len(payload)) {
		t.Fatalf("asset file wrong: %v %v", info, err)
	}
}

func TestFetchRejectsOversizedContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2097152")
		_, _ = w.Write(bytes.Repeat([]byte{0x41}, 2<<20))
	}))
	defer server.Close()

	f := New(nil, 1024, nil)
	_, err := f.Fetch(context.Background(), server.URL, Budget{MaxBytes: 1 << 20}, newScratch(t))
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected budget rejection, got %v", err)
	}
}

func TestFetchAbortsMidStreamWhenBudgetCrossed(t *testing.T) {
	// Chunked response with no Content-Length so the ceiling can only be
	// enforced mid-stream.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		chunk := bytes.Repeat([]byte{0x42}, 32*1024)
		for i := 0; i < 8; i++ {
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer server.Close()

	scratch := newScratch(t)
	f := New(nil, 1024, nil)
	_, err := f.Fetch(context.Background(), server.URL+"/big.mp4", Budget{MaxBytes: 64 * 1024}, scratch)
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected budget rejection, got %v", err)
	}
	if _, statErr := os.Stat(scratch.Path("big.mp4")); !os.IsNotExist(statErr) {
		t.Fatal("partial file should be removed after budget failure")
	}
}

func TestFetchRejectsNearEmptyAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer server.Close()

	f := New(nil, 10*1024, nil)
	_, err := f.Fetch(context.Background(), server.URL, Budget{MaxBytes: 1 << 20}, newScratch(t))
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected viable-floor rejection, got %v", err)
	}
}

func TestFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	f := New(nil, 1024, nil)
	start := time.Now()
	_, err := f.Fetch(context.Background(), server.URL, Budget{MaxBytes: 1 << 20, MaxDuration: 50 * time.Millisecond}, newScratch(t))
	if asr.KindOf(err) != asr.KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestFetchHTTPErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(nil, 1024, nil)
	if _, err := f.Fetch(context.Background(), server.URL, Budget{}, newScratch(t)); err == nil {
		t.Fatal("expected error for http 502")
	}
}
