package scans

import "time"

// Status represents the lifecycle of a scan.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusEnriching Status = "enriching"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusAnalyzing,
	StatusEnriching,
	StatusComplete,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidStatus reports whether the value is a known scan status.
func ValidStatus(status Status) bool {
	_, ok := statusSet[status]
	return ok
}

// Confidence is the match-quality tier assigned to an item.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceLow       Confidence = "low"
	ConfidenceUnmatched Confidence = "unmatched"
)

// Source records which backend supplied an item's metadata.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceLibrary Source = "library"
	SourceNone    Source = "none"
)

// Scan is one photograph plus one vision-model invocation.
type Scan struct {
	ID             string
	ImageID        int64
	ModelID        string
	Status         Status
	RawModelOutput string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is one enriched shelf entry. The raw fields preserve the vision
// output verbatim; the remaining fields are filled by resolution. An
// unmatched item carries no catalog fields and source "none".
type Item struct {
	ID       int64
	ScanID   string
	Position int

	RawTitle   string
	RawCreator string
	RawKind    string
	RawYear    int

	Confidence Confidence
	Source     Source

	TMDBID int64
	IMDBID string
	TVDBID int64

	Title       string
	PosterURL   string
	Overview    string
	Rating      float64
	ReleaseDate string
	Genres      []string
	Year        int
	Detail      string
	Runtime     int
	Network     string
	SeasonCount int
	ShowStatus  string

	LibraryMatched bool
	LibraryRef     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image is a stored photograph, content-addressed by hash.
type Image struct {
	ID        int64
	SHA256    string
	MIMEType  string
	Data      []byte
	CreatedAt time.Time
}

// UsageRecord is one append-only entry in the model-usage ledger.
type UsageRecord struct {
	ID               int64
	ScanID           string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	Cost             float64
	CreatedAt        time.Time
}
