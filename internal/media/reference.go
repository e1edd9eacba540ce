package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies the short-video platform a reference points at.
type Platform string

const (
	PlatformDouyin       Platform = "douyin"
	PlatformVideoChannel Platform = "video_channel"
	PlatformUnknown      Platform = "unknown"
)

var (
	douyinShortPattern = regexp.MustCompile(`^https?://v\.douyin\.com/([A-Za-z0-9]+)`)
	douyinVideoPattern = regexp.MustCompile(`^https?://(?:www\.)?(?:ies)?douyin\.com/(?:share/)?video/([0-9]+)`)
	douyinQueryPattern = regexp.MustCompile(`^https?://(?:www\.)?iesdouyin\.com/.*[?&]video_id=([0-9]+)`)
	channelPattern     = regexp.MustCompile(`^https?://finder\.video\.qq\.com/([A-Za-z0-9]+)`)
)

// Reference identifies a source video. Immutable once constructed.
type Reference struct {
	SourceURL   string
	Platform    Platform
	VideoID     string
	Credentials Credentials
}

// ParseReference validates a share URL and tags it with its platform.
// Share text often carries trailing description; everything after the first
// whitespace run is discarded before matching.
func ParseReference(raw string, creds Credentials) (Reference, error) {
	cleaned := strings.TrimSpace(raw)
	if idx := strings.IndexFunc(cleaned, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	if cleaned == "" {
		return Reference{}, fmt.Errorf("parse reference: empty url")
	}
	parsed, err := url.Parse(cleaned)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Reference{}, fmt.Errorf("parse reference: malformed url %q", cleaned)
	}

	ref := Reference{SourceURL: cleaned, Platform: DetectPlatform(cleaned), Credentials: creds}
	switch {
	case douyinVideoPattern.MatchString(cleaned):
		ref.VideoID = douyinVideoPattern.FindStringSubmatch(cleaned)[1]
	case douyinQueryPattern.MatchString(cleaned):
		ref.VideoID = douyinQueryPattern.FindStringSubmatch(cleaned)[1]
	}
	if ref.Platform == PlatformUnknown {
		return Reference{}, fmt.Errorf("parse reference: unrecognized platform for %q", cleaned)
	}
	return ref, nil
}

// DetectPlatform tags a URL by pattern without validating it further.
func DetectPlatform(rawURL string) Platform {
	switch {
	case douyinShortPattern.MatchString(rawURL),
		douyinVideoPattern.MatchString(rawURL),
		douyinQueryPattern.MatchString(rawURL):
		return PlatformDouyin
	case channelPattern.MatchString(rawURL):
		return PlatformVideoChannel
	default:
		return PlatformUnknown
	}
}

// ShortCode returns the share short code for short-link references, or "".
func (r Reference) ShortCode() string {
	if m := douyinShortPattern.FindStringSubmatch(r.SourceURL); m != nil {
		return m[1]
	}
	if m := channelPattern.FindStringSubmatch(r.SourceURL); m != nil {
		return m[1]
	}
	return ""
}
