package models

import (
	"errors"
	"strings"
)

var (
	ErrMissingID    = errors.New("video has no id")
	ErrMissingTitle = errors.New("video has no title")
)

// NewVideo builds a catalog entry from connector output. Classification
// fields are filled in later by the pipeline.
func NewVideo(raw RawVideo) (*Video, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return nil, ErrMissingID
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, ErrMissingTitle
	}

	views := raw.Views
	if views == "" {
		views = "N/A"
	}

	return &Video{
		ID:           raw.ID,
		ExternalURL:  raw.ExternalURL,
		Title:        raw.Title,
		Description:  raw.Description,
		ThumbnailURL: raw.ThumbnailURL,
		Duration:     raw.Duration,
		Views:        views,
		Category:     raw.Category,
		Teams:        []string{},
		Source:       raw.Source,
		ChannelID:    raw.ChannelID,
		ChannelName:  raw.ChannelName,
		UploadDate:   raw.UploadDate,
		Disclaimer:   raw.Disclaimer,
	}, nil
}

// Validate reports whether a stored record carries the fields the catalog relies on.
func (v *Video) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(v.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// IsScraped returns true for records obtained from HTML scraping rather than the API.
func (v *Video) IsScraped() bool {
	return v.Source != "" && v.Source != SourceYouTube
}

// IsKnownCategory returns true if c is one of the recognized categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
