// package services defines interface Service for interacting with the platform HTTP API
package services

import (
	"context"
	"io"

	"github.com/desertthunder/favdl/internal/models"
)

// Service defines the four platform operations the download pipeline needs.
type Service interface {
	// Authenticate stores the session credential used by every later request.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// ListCollectionPage fetches one page of a collection listing.
	ListCollectionPage(ctx context.Context, mediaID string, page int) (*CollectionPage, error)

	// ListSegments lists the playable parts of an entry.
	ListSegments(ctx context.Context, bvid string) ([]models.Segment, error)

	// ResolveStream resolves the DASH stream descriptor for one segment.
	ResolveStream(ctx context.Context, bvid string, cid int64) (*StreamDescriptor, error)

	// FetchAudio opens the body of a resolved stream URL. The caller closes it.
	FetchAudio(ctx context.Context, url string) (io.ReadCloser, error)

	// Name returns the name of the service (e.g., "Bilibili")
	Name() string
}

// CollectionPage is one page of a collection listing.
type CollectionPage struct {
	Info    models.CollectionInfo
	Entries []models.Entry
	HasMore bool
}

// StreamDescriptor lists the audio tracks available for a segment.
type StreamDescriptor struct {
	Audio []models.StreamTarget
}

// FirstAudio returns the first audio track that has a URL.
func (d *StreamDescriptor) FirstAudio() (models.StreamTarget, bool) {
	if d == nil {
		return models.StreamTarget{}, false
	}
	for _, a := range d.Audio {
		if a.URL != "" {
			return a, true
		}
	}
	return models.StreamTarget{}, false
}
