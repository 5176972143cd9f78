package models

import (
	"sort"
	"strings"
)

// Record represents one artwork row of the metadata table
type Record struct {
	ImageID     string `json:"image_id" parquet:"image_id"`
	Artist      string `json:"artist" parquet:"artist"`
	Title       string `json:"title" parquet:"title"`
	Period      string `json:"period" parquet:"period"`
	Medium      string `json:"medium" parquet:"medium"`
	Year        string `json:"year" parquet:"year"`
	Nationality string `json:"nationality" parquet:"nationality"`
	PictureData string `json:"picture_data" parquet:"picture_data"` // Free-text descriptive notes
}

// Defaults used when a metadata column is empty
const (
	UnknownArtist      = "Unknown artist"
	Untitled           = "Untitled"
	UnknownPeriod      = "Unknown period"
	UnknownMedium      = "Unknown medium"
	UnknownYear        = "Unknown year"
	UnknownNationality = "Unknown nationality"
)

// WithDefaults returns a copy of the record where blank descriptive fields
// carry their "Unknown ..." placeholder.
func (r Record) WithDefaults() Record {
	r.Artist = orDefault(r.Artist, UnknownArtist)
	r.Title = orDefault(r.Title, Untitled)
	r.Period = orDefault(r.Period, UnknownPeriod)
	r.Medium = orDefault(r.Medium, UnknownMedium)
	r.Year = orDefault(r.Year, UnknownYear)
	r.Nationality = orDefault(r.Nationality, UnknownNationality)
	r.PictureData = strings.TrimSpace(r.PictureData)
	return r
}

func orDefault(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}

// IDMapping maps an image identifier to a file path (input form) or to a
// newly assigned zero-padded identifier (output form).
type IDMapping map[string]string

// SortedKeys returns the identifiers in lexicographic order
func (m IDMapping) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Captions maps an image identifier to its caption text
type Captions map[string]string

// ManifestRow is one training example of the exported dataset
type ManifestRow struct {
	ImageID   string `json:"image_id" parquet:"image_id"`
	NewID     string `json:"new_id" parquet:"new_id"`
	ImagePath string `json:"image_path" parquet:"image_path"`
	Caption   string `json:"caption" parquet:"caption"`
	Words     int    `json:"words" parquet:"words"`
}
