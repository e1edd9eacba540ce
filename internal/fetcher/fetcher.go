// Package fetcher downloads media bytes under explicit size and wall-clock
// budgets. It is a single-attempt primitive: retry policy belongs to the
// resolver, and an asset that would exceed its byte ceiling is a failure,
// not a truncated success.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"vidscribe/internal/asr"
	"vidscribe/internal/logging"
	"vidscribe/internal/media"
)

// Budget bounds a single fetch.
type Budget struct {
	MaxBytes    int64
	MaxDuration time.Duration
}

// Fetcher streams media downloads into a resolution's scratch directory.
type Fetcher struct {
	httpClient *http.Client
	minBytes   int64
	logger     *slog.Logger
}

// New constructs a fetcher. minBytes is the floor below which a downloaded
// asset is judged a failed or corrupt transfer.
func New(httpClient *http.Client, minBytes int64, logger *slog.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if minBytes <= 0 {
		minBytes = 10 * 1024
	}
	return &Fetcher{
		httpClient: httpClient,
		minBytes:   minBytes,
		logger:     logging.NewComponentLogger(logger, "fetcher"),
	}
}

// Fetch downloads downloadURL into scratch, honoring the budget. The byte
// ceiling is enforced mid-stream: the transfer aborts the moment it is
// crossed and the partial file is removed.
func (f *Fetcher) Fetch(ctx context.Context, downloadURL string, budget Budget, scratch *media.Scratch) (media.Asset, error) {
	if strings.TrimSpace(downloadURL) == "" {
		return media.Asset{}, asr.Wrap(asr.ErrUnsupportedFormat, "fetcher", "fetch", "no download url", nil)
	}
	if scratch == nil || scratch.Dir() == "" {
		return media.Asset{}, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "scratch directory unavailable", nil)
	}

	if budget.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget.MaxDuration)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return media.Asset{}, asr.Wrap(asr.ErrUnsupportedFormat, "fetcher", "fetch", "build request", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return media.Asset{}, asr.Wrap(asr.ErrTimeout, "fetcher", "fetch", "download deadline exceeded", err)
		}
		return media.Asset{}, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return media.Asset{}, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	if budget.MaxBytes > 0 && resp.ContentLength > budget.MaxBytes {
		return media.Asset{}, asr.Wrap(asr.ErrUnsupportedFormat, "fetcher", "fetch",
			fmt.Sprintf("media size %d exceeds budget %d", resp.ContentLength, budget.MaxBytes), nil)
	}

	dest := scratch.Path(fileNameFor(downloadURL, resp.Header.Get("Content-Type")))
	written, err := f.copyBounded(ctx, dest, resp.Body, budget.MaxBytes)
	if err != nil {
		_ = os.Remove(dest)
		return media.Asset{}, err
	}
	if written < f.minBytes {
		_ = os.Remove(dest)
		return media.Asset{}, asr.Wrap(asr.ErrUnsupportedFormat, "fetcher", "fetch",
			fmt.Sprintf("downloaded %d bytes, below viable floor %d", written, f.minBytes), nil)
	}

	f.logger.Debug("media fetched",
		logging.Int64("size_bytes", written),
		logging.String("mime_type", resp.Header.Get("Content-Type")),
	)
	return media.Asset{
		Path:      dest,
		SourceURL: downloadURL,
		MIMEType:  normalizeMIME(resp.Header.Get("Content-Type")),
		SizeBytes: written,
	}, nil
}

func (f *Fetcher) copyBounded(ctx context.Context, dest string, body io.Reader, maxBytes int64) (int64, error) {
	file, err := os.Create(dest)
	if err != nil {
		return 0, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "create asset file", err)
	}
	defer file.Close()

	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return written, asr.Wrap(asr.ErrTimeout, "fetcher", "fetch", "download deadline exceeded", err)
			}
			return written, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "download cancelled", err)
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if maxBytes > 0 && written+int64(n) > maxBytes {
				return written, asr.Wrap(asr.ErrUnsupportedFormat, "fetcher", "fetch",
					fmt.Sprintf("transfer exceeded byte budget %d", maxBytes), nil)
			}
			if _, err := file.Write(buf[:n]); err != nil {
				return written, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "write asset file", err)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			if errors.Is(readErr, context.DeadlineExceeded) {
				return written, asr.Wrap(asr.ErrTimeout, "fetcher", "fetch", "download deadline exceeded", readErr)
			}
			return written, asr.Wrap(asr.ErrUnknown, "fetcher", "fetch", "read response body", readErr)
		}
	}
}

func fileNameFor(downloadURL, contentType string) string {
	base := path.Base(strings.SplitN(downloadURL, "?", 2)[0])
	if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
		return base
	}
	switch normalizeMIME(contentType) {
	case "audio/mp4", "audio/m4a":
		return "media.m4a"
	case "audio/mpeg":
		return "media.mp3"
	case "video/webm":
		return "media.webm"
	default:
		return "media.mp4"
	}
}

func normalizeMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(contentType)
	}
	return parsed
}
