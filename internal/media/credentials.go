package media

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Credentials is an opaque cookie bundle supplied by the caller. It is passed
// through to the platform client verbatim and must never be embedded in source
// or written to logs.
type Credentials struct {
	cookieHeader string
}

// NewCredentials wraps a raw Cookie header value.
func NewCredentials(cookieHeader string) Credentials {
	return Credentials{cookieHeader: strings.TrimSpace(cookieHeader)}
}

// LoadCredentials reads a Netscape-format cookie file and folds its entries
// into a single Cookie header value. Missing files yield empty credentials
// rather than an error; an anonymous session is a valid (if weaker) state.
func LoadCredentials(path string) (Credentials, error) {
	if strings.TrimSpace(path) == "" {
		return Credentials{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("open cookie file: %w", err)
	}
	defer file.Close()

	var pairs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		name := strings.TrimSpace(fields[5])
		value := strings.TrimSpace(fields[6])
		if name == "" {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("read cookie file: %w", err)
	}
	return Credentials{cookieHeader: strings.Join(pairs, "; ")}, nil
}

// Empty reports whether the bundle carries no cookies.
func (c Credentials) Empty() bool {
	return c.cookieHeader == ""
}

// CookieHeader returns the raw Cookie header value for the platform request.
func (c Credentials) CookieHeader() string {
	return c.cookieHeader
}

// String redacts the bundle so accidental formatting never leaks cookies.
func (c Credentials) String() string {
	if c.Empty() {
		return "(no credentials)"
	}
	return "(redacted)"
}
