package locator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/media"
)

func testReference(serverURL, videoID string) media.Reference {
	return media.Reference{
		SourceURL: serverURL + "/share/" + videoID,
		Platform:  media.PlatformDouyin,
		VideoID:   videoID,
	}
}

func detailResponse(detail map[string]any) map[string]any {
	return map[string]any{"status_code": 0, "aweme_detail": detail}
}

func TestLocateReturnsSortedSubtitleCues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != detailPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("aweme_id") != "777" {
			t.Fatalf("unexpected aweme_id %s", r.URL.Query().Get("aweme_id"))
		}
		payload := detailResponse(map[string]any{
			"desc":     "demo",
			"duration": 15000,
			"subtitle_infos": []map[string]any{
				{"start_time": 2000, "content": "second"},
				{"start_time": 0, "content": "first"},
				{"start_time": 2000, "content": "also second"},
				{"start_time": 3000, "content": "   "},
			},
			"video": map[string]any{
				"play_addr": map[string]any{"url_list": []string{"https://cdn.example/video.mp4"}},
			},
		})
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	result, err := client.Locate(context.Background(), testReference(server.URL, "777"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if result.Kind != KindSubtitles {
		t.Fatalf("kind = %s", result.Kind)
	}
	if result.DownloadURL != "" {
		t.Fatal("subtitles and download URL must never both be set")
	}
	want := []string{"first", "second", "also second"}
	if len(result.Cues) != len(want) {
		t.Fatalf("cues = %+v", result.Cues)
	}
	for i, text := range want {
		if result.Cues[i].Text != text {
			t.Fatalf("cue[%d] = %q, want %q (stable sort violated)", i, result.Cues[i].Text, text)
		}
	}
	if got := JoinCues(result.Cues); got != "first\nsecond\nalso second" {
		t.Fatalf("JoinCues = %q", got)
	}
	if result.DurationSeconds != 15 {
		t.Fatalf("duration = %v", result.DurationSeconds)
	}
}

func TestLocateFallsBackToDownloadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := detailResponse(map[string]any{
			"video": map[string]any{
				"play_addr": map[string]any{"url_list": []string{"https://cdn.example/a.mp4", "https://cdn.example/b.mp4"}},
			},
		})
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	result, err := client.Locate(context.Background(), testReference(server.URL, "1"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if result.Kind != KindDownload || result.DownloadURL != "https://cdn.example/a.mp4" {
		t.Fatalf("result = %+v", result)
	}
}

func TestLocateSendsCookieHeader(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		_ = json.NewEncoder(w).Encode(detailResponse(map[string]any{}))
	}))
	defer server.Close()

	ref := testReference(server.URL, "9")
	ref.Credentials = media.NewCredentials("sessionid=abc")
	client := NewClient(server.URL, time.Second, nil)
	if _, err := client.Locate(context.Background(), ref); err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if gotCookie != "sessionid=abc" {
		t.Fatalf("cookie header = %q", gotCookie)
	}
}

func TestLocateLoginRequiredIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status_code": 8})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	_, err := client.Locate(context.Background(), testReference(server.URL, "9"))
	if asr.KindOf(err) != asr.KindAuthFailure {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestLocateForbiddenIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	_, err := client.Locate(context.Background(), testReference(server.URL, "9"))
	if asr.KindOf(err) != asr.KindAuthFailure {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestLocateMissingVideoIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status_code": 0})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	result, err := client.Locate(context.Background(), testReference(server.URL, "404"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if result.Kind != KindNotFound {
		t.Fatalf("kind = %s", result.Kind)
	}
}

func TestLocateResolvesShareRedirect(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/s/abc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/video/424242?from=share", http.StatusFound)
	})
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("aweme_id") != "424242" {
			t.Fatalf("aweme_id = %s", r.URL.Query().Get("aweme_id"))
		}
		_ = json.NewEncoder(w).Encode(detailResponse(map[string]any{
			"video": map[string]any{"play_addr": map[string]any{"url_list": []string{"u"}}},
		}))
	})

	ref := media.Reference{SourceURL: server.URL + "/s/abc", Platform: media.PlatformDouyin}
	client := NewClient(server.URL, time.Second, nil)
	result, err := client.Locate(context.Background(), ref)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if result.Kind != KindDownload {
		t.Fatalf("kind = %s", result.Kind)
	}
}

func TestLocateRejectsUnknownPlatform(t *testing.T) {
	client := NewClient("https://example.com", time.Second, nil)
	_, err := client.Locate(context.Background(), media.Reference{SourceURL: "https://example.com/x", Platform: media.PlatformUnknown})
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestLocateRejectsPlatformWithoutEndpoint(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	_, err := client.Locate(context.Background(), media.Reference{
		SourceURL: "https://channels.weixin.qq.com/x",
		Platform:  media.PlatformVideoChannel,
	})
	if asr.KindOf(err) != asr.KindUnsupportedFormat {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if !strings.Contains(err.Error(), "video_channel") {
		t.Errorf("error should name the platform: %v", err)
	}
	if called.Load() {
		t.Error("unsupported platform must not reach the network")
	}
}
