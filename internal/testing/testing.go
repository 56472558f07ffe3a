// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FakeMedia is one entry served by [FakePlatform].
type FakeMedia struct {
	BVID     string
	Title    string
	Author   string
	Parts    []string         // Part names, cids are assigned 1..n
	Audio    map[int64][]byte // Audio bytes per cid, absent means no audio track
	ListCode int              // Non-zero makes pagelist fail with this code
	PlayCode map[int64]int    // Non-zero makes playurl fail with this code per cid
}

// FakeCover is the image served as every folder's cover.
var FakeCover = []byte("\xff\xd8\xff\xe0cover")

// FakePlatform is an httptest server that speaks the platform's listing,
// pagelist, playurl, audio and cover endpoints.
type FakePlatform struct {
	Server   *httptest.Server
	PageSize int
	Medias   []FakeMedia
	ListCode int // Non-zero makes the collection listing fail with this code

	mu      sync.Mutex
	cookies []string
}

// NewFakePlatform starts a FakePlatform serving medias, closed on test cleanup.
func NewFakePlatform(t *testing.T, medias ...FakeMedia) *FakePlatform {
	t.Helper()
	f := &FakePlatform{PageSize: 20, Medias: medias}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the server.
func (f *FakePlatform) URL() string { return f.Server.URL }

// Cookies returns every Cookie header received, in order.
func (f *FakePlatform) Cookies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cookies...)
}

func (f *FakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.cookies = append(f.cookies, r.Header.Get("Cookie"))
	f.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.URL.Path == "/x/v3/fav/resource/list":
		if f.ListCode != 0 {
			writeEnvelope(w, f.ListCode, "list failed", nil)
			return
		}
		page, _ := strconv.Atoi(q.Get("pn"))
		start := (page - 1) * f.PageSize
		end := min(start+f.PageSize, len(f.Medias))
		medias := []map[string]any{}
		for i := max(start, 0); i < end; i++ {
			m := f.Medias[i]
			medias = append(medias, map[string]any{
				"bvid":  m.BVID,
				"title": m.Title,
				"page":  len(m.Parts),
				"upper": map[string]any{"name": m.Author},
			})
		}
		writeEnvelope(w, 0, "0", map[string]any{
			"info":     map[string]any{"title": "fake folder", "media_count": len(f.Medias), "cover": f.Server.URL + "/cover.jpg"},
			"medias":   medias,
			"has_more": end < len(f.Medias),
		})

	case r.URL.Path == "/x/player/pagelist":
		m, ok := f.media(q.Get("bvid"))
		if !ok {
			writeEnvelope(w, -404, "啥都木有", nil)
			return
		}
		if m.ListCode != 0 {
			writeEnvelope(w, m.ListCode, "pagelist failed", nil)
			return
		}
		pages := []map[string]any{}
		for i, part := range m.Parts {
			pages = append(pages, map[string]any{"cid": i + 1, "page": i + 1, "part": part})
		}
		writeEnvelope(w, 0, "0", pages)

	case r.URL.Path == "/x/player/playurl":
		m, ok := f.media(q.Get("bvid"))
		cid, _ := strconv.ParseInt(q.Get("cid"), 10, 64)
		if !ok {
			writeEnvelope(w, -404, "啥都木有", nil)
			return
		}
		if code := m.PlayCode[cid]; code != 0 {
			writeEnvelope(w, code, "playurl failed", nil)
			return
		}
		audio := []map[string]any{}
		if _, ok := m.Audio[cid]; ok {
			audio = append(audio, map[string]any{
				"baseUrl":  fmt.Sprintf("%s/audio/%s/%d", f.Server.URL, m.BVID, cid),
				"codecs":   "mp4a.40.2",
				"mimeType": "audio/mp4",
			})
		}
		writeEnvelope(w, 0, "0", map[string]any{"dash": map[string]any{"audio": audio}})

	case r.URL.Path == "/cover.jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(FakeCover)

	case strings.HasPrefix(r.URL.Path, "/audio/"):
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/audio/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		m, ok := f.media(parts[0])
		cid, _ := strconv.ParseInt(parts[1], 10, 64)
		data, found := m.Audio[cid]
		if !ok || !found {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mp4")
		w.Write(data)

	default:
		http.NotFound(w, r)
	}
}

func (f *FakePlatform) media(bvid string) (FakeMedia, bool) {
	for _, m := range f.Medias {
		if m.BVID == bvid {
			return m, true
		}
	}
	return FakeMedia{}, false
}

func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message, "data": data})
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

// CountFiles returns the number of regular files in dir with the given suffix.
func CountFiles(t *testing.T, dir, suffix string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			n++
		}
	}
	return n
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
