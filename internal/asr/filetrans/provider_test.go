package filetrans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/media"
)

func testAsset() media.Asset {
	return media.Asset{
		Path:            "/tmp/audio.m4a",
		SourceURL:       "https://cdn.example/audio.m4a",
		SizeBytes:       64 * 1024,
		DurationSeconds: 30,
	}
}

func newTestProvider(serverURL string, cfg Config) *Provider {
	client := NewClient("app", "key", serverURL)
	return NewProvider(client, cfg, nil)
}

func TestTranscribeSubmitThenPollUntilDone(t *testing.T) {
	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("submit method = %s", r.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusSuccess, "TaskId": "task-1"})
	})
	mux.HandleFunc("/v1/tasks/result", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("taskId") != "task-1" {
			t.Fatalf("taskId = %s", r.URL.Query().Get("taskId"))
		}
		if polls.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusRunning})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"StatusCode": statusSuccess,
			"Result": map[string]any{
				"AudioDuration": 30000,
				"Sentences": []map[string]any{
					{"Text": "你好", "BeginTime": 0},
					{"Text": "世界", "BeginTime": 1500},
				},
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := newTestProvider(server.URL, Config{
		PollInterval: 5 * time.Millisecond,
		MaxWait:      time.Second,
		PricePerHour: 2.5,
	})
	transcript, err := provider.Transcribe(context.Background(), testAsset(), "zh")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript.Text != "你好世界" {
		t.Fatalf("text = %q", transcript.Text)
	}
	// 30s at 2.5/hour.
	if transcript.Cost != 0.0208 {
		t.Fatalf("cost = %v", transcript.Cost)
	}
	if transcript.Confidence != nil {
		t.Fatal("backend reports no confidence")
	}
	if got := polls.Load(); got != 3 {
		t.Fatalf("polls = %d", got)
	}
}

func TestTranscribeTimesOutWhenTaskNeverFinishes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusSuccess, "TaskId": "task-2"})
	})
	mux.HandleFunc("/v1/tasks/result", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusRunning})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := newTestProvider(server.URL, Config{
		PollInterval: 5 * time.Millisecond,
		MaxWait:      50 * time.Millisecond,
		PricePerHour: 2.5,
	})
	_, err := provider.Transcribe(context.Background(), testAsset(), "")
	if asr.KindOf(err) != asr.KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestTranscribeTimesOutWhenBudgetCannotFitNextPoll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusSuccess, "TaskId": "task-3"})
	})
	mux.HandleFunc("/v1/tasks/result", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusRunning})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// MaxWait deliberately falls between poll slots so the limiter refuses
	// the next wait before the deadline itself fires.
	provider := newTestProvider(server.URL, Config{
		PollInterval: 20 * time.Millisecond,
		MaxWait:      50 * time.Millisecond,
		PricePerHour: 2.5,
	})
	_, err := provider.Transcribe(context.Background(), testAsset(), "")
	if asr.KindOf(err) != asr.KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !asr.Retriable(err) {
		t.Fatalf("budget expiry should be retriable: %v", err)
	}
}

func TestTranscribeCallerCancelIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusSuccess, "TaskId": "task-4"})
	})
	mux.HandleFunc("/v1/tasks/result", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": statusRunning})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := newTestProvider(server.URL, Config{
		PollInterval: 5 * time.Millisecond,
		MaxWait:      time.Second,
	})
	_, err := provider.Transcribe(ctx, testAsset(), "")
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if asr.Retriable(err) {
		t.Fatalf("caller cancellation must not be retried: %v", err)
	}
}

func TestTranscribeClassifiesVendorFailures(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		wantKind   asr.Kind
	}{
		{"auth", statusAuthFailed, asr.KindAuthFailure},
		{"quota", statusQuotaExceeded, asr.KindQuotaExceeded},
		{"other", 50000000, asr.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"StatusCode": tc.statusCode, "StatusText": "nope"})
			}))
			defer server.Close()

			provider := newTestProvider(server.URL, Config{PollInterval: time.Millisecond, MaxWait: time.Second})
			_, err := provider.Transcribe(context.Background(), testAsset(), "")
			if asr.KindOf(err) != tc.wantKind {
				t.Fatalf("kind = %s, want %s (%v)", asr.KindOf(err), tc.wantKind, err)
			}
		})
	}
}

func TestTranscribeRejectsOversizedInputBeforeNetwork(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, Config{PollInterval: time.Millisecond, MaxWait: time.Second, MaxInputBytes: 1024})
	asset := testAsset()
	asset.SizeBytes = 4096
	_, err := provider.Transcribe(context.Background(), asset, "")
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if called.Load() {
		t.Fatal("oversized input must not reach the network")
	}
}

func TestTranscribeRequiresAddressableURL(t *testing.T) {
	provider := newTestProvider("http://127.0.0.1:0", Config{PollInterval: time.Millisecond, MaxWait: time.Second})
	asset := testAsset()
	asset.SourceURL = ""
	_, err := provider.Transcribe(context.Background(), asset, "")
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestEstimateCostHonorsBillingFloor(t *testing.T) {
	provider := NewProvider(nil, Config{PricePerHour: 2.5}, nil)
	asset := testAsset()
	asset.DurationSeconds = 5
	floor := provider.EstimateCost(asset)
	if floor != 0.0104 {
		t.Fatalf("floor cost = %v", floor)
	}
	asset.DurationSeconds = 3600
	if got := provider.EstimateCost(asset); got != 2.5 {
		t.Fatalf("hour cost = %v", got)
	}
}
