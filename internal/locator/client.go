package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

const (
	detailPath = "/aweme/v1/web/aweme/detail/"

	// Platform business status codes carried in the JSON envelope.
	statusOK            = 0
	statusLoginRequired = 8

	// Browser-ish user agent; the detail endpoint rejects obvious bots.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

var redirectVideoIDPattern = regexp.MustCompile(`/(?:share/)?video/([0-9]+)`)

// Client queries the platform detail API for subtitle tracks and media URLs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the locator client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client is shared
// across concurrent resolutions and must be safe for concurrent use.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a locator for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "locator"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type detailEnvelope struct {
	StatusCode  int          `json:"status_code"`
	AwemeDetail *awemeDetail `json:"aweme_detail"`
}

type awemeDetail struct {
	Desc     string `json:"desc"`
	Duration int64  `json:"duration"`
	Author   struct {
		Nickname string `json:"nickname"`
	} `json:"author"`
	Video struct {
		PlayAddr struct {
			URLList []string `json:"url_list"`
		} `json:"play_addr"`
	} `json:"video"`
	SubtitleInfos []struct {
		StartTime int64  `json:"start_time"`
		Content   string `json:"content"`
	} `json:"subtitle_infos"`
}

// Locate resolves a reference to native subtitles, a download URL, or
// not-found. Expired or missing credentials surface as an auth failure,
// which is final; retrying cannot mint a session.
func (c *Client) Locate(ctx context.Context, ref media.Reference) (Result, error) {
	if ref.Platform == media.PlatformUnknown || strings.TrimSpace(ref.SourceURL) == "" {
		return Result{}, asr.Wrap(asr.ErrUnsupportedFormat, "locator", "locate", "unrecognized platform reference", nil)
	}
	if ref.Platform != media.PlatformDouyin {
		return Result{}, asr.Wrap(asr.ErrUnsupportedFormat, "locator", "locate",
			fmt.Sprintf("no detail endpoint for platform %q", ref.Platform), nil)
	}

	videoID := ref.VideoID
	if videoID == "" {
		resolved, err := c.resolveVideoID(ctx, ref)
		if err != nil {
			return Result{}, err
		}
		videoID = resolved
	}

	detail, err := c.fetchDetail(ctx, ref, videoID)
	if err != nil {
		return Result{}, err
	}
	if detail == nil {
		return Result{Kind: KindNotFound}, nil
	}

	result := Result{
		Kind:   KindNotFound,
		Title:  strings.TrimSpace(detail.Desc),
		Author: strings.TrimSpace(detail.Author.Nickname),
	}
	// Durations arrive in milliseconds for anything longer than a second.
	if detail.Duration > 1000 {
		result.DurationSeconds = float64(detail.Duration) / 1000
	} else {
		result.DurationSeconds = float64(detail.Duration)
	}

	if cues := collectCues(detail); len(cues) > 0 {
		result.Kind = KindSubtitles
		result.Cues = cues
		c.logger.Debug("native subtitles located", logging.Int("cues", len(cues)))
		return result, nil
	}

	if urls := detail.Video.PlayAddr.URLList; len(urls) > 0 {
		result.Kind = KindDownload
		result.DownloadURL = urls[0]
		return result, nil
	}

	return result, nil
}

func collectCues(detail *awemeDetail) []Cue {
	cues := make([]Cue, 0, len(detail.SubtitleInfos))
	for _, info := range detail.SubtitleInfos {
		if strings.TrimSpace(info.Content) == "" {
			continue
		}
		cues = append(cues, Cue{StartMS: info.StartTime, Text: info.Content})
	}
	if len(cues) == 0 {
		return nil
	}
	SortCues(cues)
	return cues
}

// resolveVideoID follows the share link's redirect to discover the canonical
// video ID without executing any page content.
func (c *Client) resolveVideoID(ctx context.Context, ref media.Reference) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.SourceURL, nil)
	if err != nil {
		return "", asr.Wrap(asr.ErrUnsupportedFormat, "locator", "resolve share link", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	noRedirect := *c.httpClient
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", classifyTransportError("resolve share link", err)
	}
	defer drain(resp.Body)

	location := resp.Header.Get("Location")
	if location == "" {
		location = resp.Request.URL.String()
	}
	if m := redirectVideoIDPattern.FindStringSubmatch(location); m != nil {
		return m[1], nil
	}
	return "", asr.Wrap(asr.ErrUnsupportedFormat, "locator", "resolve share link",
		fmt.Sprintf("no video id in redirect target %q", location), nil)
}

func (c *Client) fetchDetail(ctx context.Context, ref media.Reference, videoID string) (*awemeDetail, error) {
	endpoint := fmt.Sprintf("%s%s?aweme_id=%s", c.baseURL, detailPath, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, asr.Wrap(asr.ErrUnknown, "locator", "detail request", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL+"/")
	if !ref.Credentials.Empty() {
		req.Header.Set("Cookie", ref.Credentials.CookieHeader())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("detail request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, asr.Wrap(asr.ErrAuth, "locator", "detail request", "platform rejected credentials", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, asr.Wrap(asr.ErrUnknown, "locator", "detail request",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, asr.Wrap(asr.ErrUnknown, "locator", "detail request", "read body", err)
	}
	var envelope detailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, asr.Wrap(asr.ErrUnknown, "locator", "detail request", "decode response", err)
	}
	switch envelope.StatusCode {
	case statusOK:
		return envelope.AwemeDetail, nil
	case statusLoginRequired:
		return nil, asr.Wrap(asr.ErrAuth, "locator", "detail request", "platform requires login; cookies expired or missing", nil)
	default:
		return nil, asr.Wrap(asr.ErrUnknown, "locator", "detail request",
			fmt.Sprintf("platform status %d", envelope.StatusCode), nil)
	}
}

func classifyTransportError(operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return asr.Wrap(asr.ErrTimeout, "locator", operation, "request deadline exceeded", err)
	}
	return asr.Wrap(asr.ErrUnknown, "locator", operation, "request failed", err)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}
