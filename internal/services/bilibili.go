// Bilibili API [Service] implementation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL         = "https://api.bilibili.com"
	DefaultReferer         = "https://www.bilibili.com"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultRateLimit       = 4.0

	// PageSize is the fixed number of entries requested per listing page.
	PageSize = 20
)

// BilibiliOpts configures a [BilibiliService]. Zero values fall back to the defaults above.
type BilibiliOpts struct {
	BaseURL         string
	RateLimit       float64 // Requests per second
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	UserAgent       string
	Referer         string
	Transport       http.RoundTripper
}

// BilibiliOptsFromConfig maps the [api] and [http] config sections to service options.
func BilibiliOptsFromConfig(cfg *shared.Config) BilibiliOpts {
	return BilibiliOpts{
		BaseURL:         cfg.API.BaseURL,
		RateLimit:       cfg.API.RateLimit,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		DownloadTimeout: cfg.HTTP.DownloadTimeout,
		UserAgent:       cfg.HTTP.UserAgent,
		Referer:         cfg.HTTP.Referer,
	}
}

// BilibiliService implements the Service interface for the Bilibili web API.
type BilibiliService struct {
	baseURL        string
	mu             sync.RWMutex // guards cookie
	cookie         string
	userAgent      string
	referer        string
	apiClient      *http.Client
	downloadClient *http.Client
	limiter        *rate.Limiter
}

// bilibiliEnvelope is the wrapper around every JSON response.
type bilibiliEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type bilibiliUpper struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
}

type bilibiliMedia struct {
	ID       int64         `json:"id"`
	BVID     string        `json:"bvid"`
	Title    string        `json:"title"`
	Cover    string        `json:"cover"`
	Intro    string        `json:"intro"`
	Page     int           `json:"page"`
	Duration int           `json:"duration"`
	Upper    bilibiliUpper `json:"upper"`
	FavTime  int64         `json:"fav_time"`
}

type bilibiliFolderInfo struct {
	ID         int64         `json:"id"`
	Title      string        `json:"title"`
	Cover      string        `json:"cover"`
	Intro      string        `json:"intro"`
	MediaCount int           `json:"media_count"`
	Upper      bilibiliUpper `json:"upper"`
}

type bilibiliFavList struct {
	Info    bilibiliFolderInfo `json:"info"`
	Medias  []bilibiliMedia    `json:"medias"`
	HasMore bool               `json:"has_more"`
}

type bilibiliPage struct {
	CID      int64  `json:"cid"`
	Page     int    `json:"page"`
	Part     string `json:"part"`
	Duration int    `json:"duration"`
}

// bilibiliAudio carries both spellings of the URL fields; the API has served each.
type bilibiliAudio struct {
	BaseURL    string   `json:"baseUrl"`
	BaseURLAlt string   `json:"base_url"`
	BackupURL  []string `json:"backupUrl"`
	BackupAlt  []string `json:"backup_url"`
	Bandwidth  int      `json:"bandwidth"`
	MimeType   string   `json:"mimeType"`
	Codecs     string   `json:"codecs"`
}

type bilibiliPlayURL struct {
	Dash struct {
		Audio []bilibiliAudio `json:"audio"`
	} `json:"dash"`
}

// NewBilibiliService creates a new Bilibili API service instance.
func NewBilibiliService(opts BilibiliOpts) *BilibiliService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = DefaultDownloadTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Referer == "" {
		opts.Referer = DefaultReferer
	}

	return &BilibiliService{
		baseURL:        opts.BaseURL,
		cookie:         CookieHeader(""),
		userAgent:      opts.UserAgent,
		referer:        opts.Referer,
		apiClient:      &http.Client{Timeout: opts.RequestTimeout, Transport: opts.Transport},
		downloadClient: &http.Client{Timeout: opts.DownloadTimeout, Transport: opts.Transport},
		limiter:        rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Name returns the service name.
func (b *BilibiliService) Name() string {
	return "Bilibili"
}

// Authenticate stores the encoded session cookie for subsequent requests.
//
// Expects credentials["sessdata"] to be present. An empty value is allowed and
// only reaches public folders.
func (b *BilibiliService) Authenticate(ctx context.Context, credentials map[string]string) error {
	token, ok := credentials[CredentialKey]
	if !ok {
		return fmt.Errorf("%w: missing %s in credentials", shared.ErrMissingCredentials, CredentialKey)
	}

	b.mu.Lock()
	b.cookie = CookieHeader(token)
	b.mu.Unlock()
	return nil
}

func (b *BilibiliService) sessionCookie() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cookie
}

// doRequest performs one throttled GET against the API and decodes the envelope's data into result.
func (b *BilibiliService) doRequest(ctx context.Context, op, endpoint string, query url.Values, result any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return shared.NewTransportError(op, err)
	}

	apiURL := b.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return shared.NewTransportError(op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Cookie", b.sessionCookie())
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := b.apiClient.Do(req)
	if err != nil {
		return shared.NewTransportError(op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.NewTransportError(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var envelope bilibiliEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return shared.NewTransportError(op, fmt.Errorf("failed to decode response: %w", err))
	}

	if envelope.Code != 0 {
		return &shared.PlatformError{Code: envelope.Code, Message: envelope.Message}
	}

	if result == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, result); err != nil {
		return shared.NewTransportError(op, fmt.Errorf("failed to decode data: %w", err))
	}

	return nil
}

// ListCollectionPage fetches one page of a favorites folder.
//
// Calls GET /x/v3/fav/resource/list?media_id={id}&pn={page}&ps=20.
func (b *BilibiliService) ListCollectionPage(ctx context.Context, mediaID string, page int) (*CollectionPage, error) {
	query := url.Values{}
	query.Set("media_id", mediaID)
	query.Set("pn", strconv.Itoa(page))
	query.Set("ps", strconv.Itoa(PageSize))

	var data bilibiliFavList
	if err := b.doRequest(ctx, "list collection", "/x/v3/fav/resource/list", query, &data); err != nil {
		return nil, err
	}

	result := &CollectionPage{
		Info: models.CollectionInfo{
			ID:         data.Info.ID,
			Title:      data.Info.Title,
			Cover:      data.Info.Cover,
			Intro:      data.Info.Intro,
			MediaCount: data.Info.MediaCount,
			Owner:      data.Info.Upper.Name,
		},
		Entries: make([]models.Entry, 0, len(data.Medias)),
		HasMore: data.HasMore,
	}

	for _, m := range data.Medias {
		result.Entries = append(result.Entries, models.Entry{
			ID:        m.BVID,
			AID:       m.ID,
			Title:     m.Title,
			Author:    m.Upper.Name,
			Intro:     m.Intro,
			Cover:     m.Cover,
			Duration:  m.Duration,
			PageCount: m.Page,
			FavTime:   m.FavTime,
		})
	}

	return result, nil
}

// ListSegments lists the parts of a video.
//
// Calls GET /x/player/pagelist?bvid={bvid}.
func (b *BilibiliService) ListSegments(ctx context.Context, bvid string) ([]models.Segment, error) {
	query := url.Values{}
	query.Set("bvid", bvid)

	var pages []bilibiliPage
	if err := b.doRequest(ctx, "list segments", "/x/player/pagelist", query, &pages); err != nil {
		return nil, err
	}

	segments := make([]models.Segment, 0, len(pages))
	for _, p := range pages {
		segments = append(segments, models.Segment{
			CID:      p.CID,
			Page:     p.Page,
			Name:     p.Part,
			Duration: p.Duration,
		})
	}

	return segments, nil
}

// ResolveStream resolves the DASH descriptor for one part.
//
// Calls GET /x/player/playurl?bvid={bvid}&cid={cid}&fnval=16.
func (b *BilibiliService) ResolveStream(ctx context.Context, bvid string, cid int64) (*StreamDescriptor, error) {
	query := url.Values{}
	query.Set("bvid", bvid)
	query.Set("cid", strconv.FormatInt(cid, 10))
	query.Set("fnval", "16")

	var data bilibiliPlayURL
	if err := b.doRequest(ctx, "resolve stream", "/x/player/playurl", query, &data); err != nil {
		return nil, err
	}

	desc := &StreamDescriptor{Audio: make([]models.StreamTarget, 0, len(data.Dash.Audio))}
	for _, a := range data.Dash.Audio {
		target := models.StreamTarget{
			URL:        a.BaseURL,
			BackupURLs: a.BackupURL,
			Bandwidth:  a.Bandwidth,
			Codecs:     a.Codecs,
			MimeType:   a.MimeType,
		}
		if target.URL == "" {
			target.URL = a.BaseURLAlt
		}
		if len(target.BackupURLs) == 0 {
			target.BackupURLs = a.BackupAlt
		}
		desc.Audio = append(desc.Audio, target)
	}

	return desc, nil
}

// FetchAudio opens a GET to a resolved stream URL with the headers the CDN requires.
//
// Non-2xx responses are returned as a [shared.TransportError] with the body closed.
func (b *BilibiliService) FetchAudio(ctx context.Context, streamURL string) (io.ReadCloser, error) {
	const op = "fetch audio"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, shared.NewTransportError(op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Cookie", b.sessionCookie())
	req.Header.Set("Referer", b.referer)
	req.Header.Set("Origin", b.referer)
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.downloadClient.Do(req)
	if err != nil {
		return nil, shared.NewTransportError(op, fmt.Errorf("request failed: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, shared.NewTransportError(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return resp.Body, nil
}

// FetchBytes downloads a resolved URL fully into memory.
func (b *BilibiliService) FetchBytes(ctx context.Context, streamURL string) ([]byte, error) {
	body, err := b.FetchAudio(ctx, streamURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, shared.NewTransportError("fetch bytes", fmt.Errorf("failed to read response: %w", err))
	}
	return data, nil
}
