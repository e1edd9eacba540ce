// Package omni implements the synchronous multimodal ASR vendor backend. The
// whole exchange is one chat-style request whose user message embeds media as
// a typed content segment, either by URL or as a bounded-size data URI.
package omni

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidscribe/internal/asr"
)

const (
	generationPath = "/api/v1/services/aigc/multimodal-generation/generation"

	systemPrompt = "You are a speech recognition assistant. Transcribe the audio content verbatim."
	userPrompt   = "Transcribe this media and output plain text only."
)

// Client wraps the vendor's multimodal generation API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the omni client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an omni API client.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type generationRequest struct {
	Model      string          `json:"model"`
	Input      generationInput `json:"input"`
	Parameters map[string]any  `json:"parameters"`
}

type generationInput struct {
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentSegment struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
	Video string `json:"video,omitempty"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Usage reports the token counts the vendor billed for one generation.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Generate sends one transcription request. mediaRef is either a public URL
// or a data URI; isVideo selects the segment type.
func (c *Client) Generate(ctx context.Context, mediaRef string, isVideo bool, languageHint string) (string, Usage, error) {
	var usage Usage

	segment := contentSegment{Type: "audio", Audio: mediaRef}
	if isVideo {
		segment = contentSegment{Type: "video", Video: mediaRef}
	}
	prompt := userPrompt
	if languageHint != "" {
		prompt = fmt.Sprintf("%s The spoken language is %q.", userPrompt, languageHint)
	}
	payload := generationRequest{
		Model: c.model,
		Input: generationInput{Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentSegment{segment, {Type: "text", Text: prompt}}},
		}},
		Parameters: map[string]any{"result_format": "message"},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generationPath, bytes.NewReader(encoded))
	if err != nil {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", usage, asr.Wrap(asr.ErrTimeout, "omni", "generate", "vendor request deadline exceeded", err)
		}
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "vendor request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "read body", err)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", usage, asr.Wrap(asr.ErrAuth, "omni", "generate", "vendor rejected credentials", nil)
	case http.StatusTooManyRequests:
		return "", usage, asr.Wrap(asr.ErrQuota, "omni", "generate", "vendor quota exhausted", nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "decode response", err)
	}
	if decoded.Code != "" {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate",
			fmt.Sprintf("vendor error %s: %s", decoded.Code, decoded.Message), nil)
	}
	if len(decoded.Output.Choices) == 0 {
		return "", usage, asr.Wrap(asr.ErrUnknown, "omni", "generate", "empty choices", nil)
	}

	text, err := flattenContent(decoded.Output.Choices[0].Message.Content)
	if err != nil {
		return "", usage, err
	}
	usage.InputTokens = decoded.Usage.InputTokens
	usage.OutputTokens = decoded.Usage.OutputTokens
	return text, usage, nil
}

// flattenContent handles both response shapes the vendor emits: a plain text
// field, or a list of typed segments whose text entries are concatenated in
// their given order.
func flattenContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain), nil
	}
	var segments []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &segments); err != nil {
		return "", asr.Wrap(asr.ErrUnknown, "omni", "generate", "unrecognized content shape", err)
	}
	var builder strings.Builder
	for _, segment := range segments {
		if segment.Type != "" && segment.Type != "text" {
			continue
		}
		builder.WriteString(segment.Text)
	}
	return strings.TrimSpace(builder.String()), nil
}
