package models

// Entry is one media item in a collection, decoded from the listing payload.
//
// Missing fields decode to zero values.
type Entry struct {
	ID        string `json:"bvid"`
	AID       int64  `json:"aid"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Intro     string `json:"intro,omitempty"`
	Cover     string `json:"cover,omitempty"`
	Duration  int    `json:"duration"`   // Total duration in seconds
	PageCount int    `json:"page_count"` // Number of segments reported by the listing
	FavTime   int64  `json:"fav_time"`   // Unix time the entry was saved
}

// Segment is one playable sub-part of an entry.
type Segment struct {
	CID      int64  `json:"cid"`
	Page     int    `json:"page"`
	Name     string `json:"part"`
	Duration int    `json:"duration"`
}

// StreamTarget is a resolved audio track URL for one segment.
//
// URLs expire quickly; resolve one immediately before downloading it.
type StreamTarget struct {
	URL        string   `json:"url"`
	BackupURLs []string `json:"backup_urls,omitempty"`
	Bandwidth  int      `json:"bandwidth"`
	Codecs     string   `json:"codecs"`
	MimeType   string   `json:"mime_type"`
}

// CollectionInfo is folder-level metadata returned with each listing page.
type CollectionInfo struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Cover      string `json:"cover,omitempty"`
	Intro      string `json:"intro,omitempty"`
	MediaCount int    `json:"media_count"`
	Owner      string `json:"owner"`
}

// Collection is a fully paginated collection listing.
type Collection struct {
	Info    CollectionInfo `json:"info"`
	Entries []Entry        `json:"entries"`
}
