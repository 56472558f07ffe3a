// Utilities for extracting the session cookie from a browser "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// SessdataCookie is the name of the session cookie set by the platform.
const SessdataCookie = "SESSDATA"

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers.
//
// A cookie passed with -b takes precedence over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var headerCookie, cookie string

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		headers[key] = value
	}

	if m := cookieRegex.FindStringSubmatch(curlCmd); m != nil {
		cookie = firstGroup(m)
	}
	if cookie == "" {
		cookie = headerCookie
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// Sessdata returns the decoded SESSDATA value from the parsed cookie.
func (c *CurlHeaders) Sessdata() (string, error) {
	return SessdataFromCookie(c.Cookie)
}

// SessdataFromCookie extracts the SESSDATA value from a Cookie header string.
//
// Browsers store the value percent-encoded; it is decoded here so the request
// builder can encode it exactly once.
func SessdataFromCookie(cookie string) (string, error) {
	for _, pair := range strings.Split(cookie, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || !strings.EqualFold(name, SessdataCookie) {
			continue
		}

		decoded, err := url.PathUnescape(value)
		if err != nil {
			return "", fmt.Errorf("%w: malformed %s value: %v", ErrInvalidInput, SessdataCookie, err)
		}
		if decoded == "" {
			break
		}
		return decoded, nil
	}
	return "", fmt.Errorf("%w: %s cookie not found", ErrMissingCredentials, SessdataCookie)
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
