package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"

	"github.com/romangod6/cricket-highlights/internal/models"
)

// DefaultPrefix is where the front end expects the documents.
const DefaultPrefix = "static/data"

// Keys names the persisted documents under a prefix.
type Keys struct {
	Prefix string
}

func (k Keys) prefix() string {
	if k.Prefix == "" {
		return DefaultPrefix
	}
	return k.Prefix
}

// All is the key of the full catalog.
func (k Keys) All() string {
	return path.Join(k.prefix(), "all_videos.json")
}

// Category is the key of one category document.
func (k Keys) Category(category string) string {
	return path.Join(k.prefix(), category+"_videos.json")
}

// Teams is the key of the team statistics document.
func (k Keys) Teams() string {
	return path.Join(k.prefix(), "teams.json")
}

// DecodeVideos reads a catalog document. Elements that are not valid video
// records are skipped and counted; only a document that is not a JSON array
// is an error. Empty input is an empty catalog.
func DecodeVideos(data []byte) (videos []models.Video, skipped int, err error) {
	videos = []models.Video{}
	if len(bytes.TrimSpace(data)) == 0 {
		return videos, 0, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, 0, fmt.Errorf("decoding catalog: %w", err)
	}

	for _, raw := range elements {
		var v models.Video
		if err := json.Unmarshal(raw, &v); err != nil {
			skipped++
			continue
		}
		if err := v.Validate(); err != nil {
			skipped++
			continue
		}
		if v.Teams == nil {
			v.Teams = []string{}
		}
		videos = append(videos, v)
	}
	return videos, skipped, nil
}

// EncodeVideos renders a catalog document.
func EncodeVideos(videos []models.Video) ([]byte, error) {
	if videos == nil {
		videos = []models.Video{}
	}
	return encode(videos)
}

// EncodeTeams renders the team statistics document.
func EncodeTeams(doc models.TeamsDocument) ([]byte, error) {
	return encode(doc)
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Documents renders every persisted document for a merged catalog, keyed
// by storage key.
func Documents(keys Keys, videos []models.Video, teams models.TeamsDocument) (map[string][]byte, error) {
	docs := make(map[string][]byte, len(models.Categories)+2)

	all, err := EncodeVideos(videos)
	if err != nil {
		return nil, fmt.Errorf("encoding all videos: %w", err)
	}
	docs[keys.All()] = all

	for category, part := range Partition(videos) {
		data, err := EncodeVideos(part)
		if err != nil {
			return nil, fmt.Errorf("encoding %s videos: %w", category, err)
		}
		docs[keys.Category(category)] = data
	}

	data, err := EncodeTeams(teams)
	if err != nil {
		return nil, fmt.Errorf("encoding teams: %w", err)
	}
	docs[keys.Teams()] = data

	return docs, nil
}
