package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:    "single header with single quotes",
			curlCmd: `curl -H 'Referer: https://www.bilibili.com/' https://api.bilibili.com`,
			wantHeaders: map[string]string{
				"Referer": "https://www.bilibili.com/",
			},
		},
		{
			name:    "single header with double quotes",
			curlCmd: `curl -H "Referer: https://www.bilibili.com/" https://api.bilibili.com`,
			wantHeaders: map[string]string{
				"Referer": "https://www.bilibili.com/",
			},
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'SESSDATA=abc123' https://api.bilibili.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "SESSDATA=abc123",
		},
		{
			name:        "cookie in --cookie flag",
			curlCmd:     `curl --cookie "SESSDATA=abc123" https://api.bilibili.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "SESSDATA=abc123",
		},
		{
			name:    "cookie header is excluded from regular headers",
			curlCmd: `curl -H 'cookie: SESSDATA=abc123; buvid3=x' -H 'accept: */*' https://api.bilibili.com`,
			wantHeaders: map[string]string{
				"accept": "*/*",
			},
			wantCookie: "SESSDATA=abc123; buvid3=x",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.bilibili.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'https://api.bilibili.com/x/v3/fav/resource/list?media_id=1&pn=1&ps=20' \
  -H 'accept: application/json, text/plain, */*' \
  -H 'origin: https://www.bilibili.com' \
  -b 'SESSDATA=abc%2C123; bili_jct=zzz'`,
			wantHeaders: map[string]string{
				"accept": "application/json, text/plain, */*",
				"origin": "https://www.bilibili.com",
			},
			wantCookie: "SESSDATA=abc%2C123; bili_jct=zzz",
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.bilibili.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Errorf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
				return
			}

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}

			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}

			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestSessdataFromCookie(t *testing.T) {
	tt := []struct {
		name    string
		cookie  string
		want    string
		wantErr error
	}{
		{name: "plain value", cookie: "SESSDATA=abc123", want: "abc123"},
		{name: "decodes percent escapes", cookie: "buvid3=x; SESSDATA=abc%2C123%2Cdef*11; bili_jct=y", want: "abc,123,def*11"},
		{name: "case insensitive name", cookie: "sessdata=v", want: "v"},
		{name: "missing", cookie: "buvid3=x", wantErr: ErrMissingCredentials},
		{name: "empty value", cookie: "SESSDATA=", wantErr: ErrMissingCredentials},
		{name: "malformed escape", cookie: "SESSDATA=%zz", wantErr: ErrInvalidInput},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SessdataFromCookie(tc.cookie)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("SessdataFromCookie() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SessdataFromCookie() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("SessdataFromCookie() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")

		curlCmd := `curl -H 'accept: */*' -b 'SESSDATA=tok%2Cen' https://api.bilibili.com`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		sessdata, err := result.Sessdata()
		if err != nil {
			t.Fatalf("Sessdata() error = %v", err)
		}
		if sessdata != "tok,en" {
			t.Errorf("Sessdata() = %q, want %q", sessdata, "tok,en")
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}
