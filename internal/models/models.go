package models

// Video categories. The classifier is the only producer of these values.
const (
	CategoryMatches    = "matches"
	CategoryDomestic   = "domestic"
	CategoryInterviews = "interviews"
	CategoryClassic    = "classic"
	CategoryTraining   = "training"
	CategoryOther      = "other"
)

// Categories lists every category in the order category documents are written.
var Categories = []string{
	CategoryMatches,
	CategoryDomestic,
	CategoryInterviews,
	CategoryClassic,
	CategoryTraining,
	CategoryOther,
}

// Provenance labels
const (
	SourceYouTube = "YouTube"
	SourceIPL     = "IPL"
	SourceBCCI    = "BCCI"
)

// Video is a single catalog entry as persisted in the JSON documents.
type Video struct {
	ID           string   `json:"id"`
	ExternalURL  string   `json:"external_url,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Duration     string   `json:"duration,omitempty"`
	Views        string   `json:"views"`
	Category     string   `json:"category"`
	Teams        []string `json:"teams"`
	Source       string   `json:"source,omitempty"`
	ChannelID    string   `json:"channel_id,omitempty"`
	ChannelName  string   `json:"channel_name"`
	UploadDate   string   `json:"upload_date"`
	Disclaimer   string   `json:"disclaimer,omitempty"`
}

// RawVideo is what a source connector hands to the pipeline before
// classification. Category is optional and only set by sources that
// determine it themselves.
type RawVideo struct {
	ID           string
	ExternalURL  string
	Title        string
	Description  string
	ThumbnailURL string
	Duration     string
	Views        string
	Source       string
	ChannelID    string
	ChannelName  string
	UploadDate   string
	Disclaimer   string
	Category     string
}

// LatestVideo references the most recent video of a team.
type LatestVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	UploadDate   string `json:"upload_date"`
	Category     string `json:"category"`
}

// TeamStats is the per-team projection of the catalog.
type TeamStats struct {
	Name            string       `json:"name"`
	VideoCount      int          `json:"video_count"`
	Matches         int          `json:"matches"`
	DomesticMatches int          `json:"domestic_matches"`
	LatestVideo     *LatestVideo `json:"latest_video"`
}

// TeamsDocumentVersion is bumped whenever the teams document shape changes.
const TeamsDocumentVersion = 1

// TeamsDocument is the persisted team statistics envelope.
type TeamsDocument struct {
	SchemaVersion int                 `json:"schema_version"`
	International []TeamStats         `json:"international"`
	Domestic      []TeamStats         `json:"domestic"`
	Variations    map[string][]string `json:"variations"`
}
