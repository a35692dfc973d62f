package models

import (
	"encoding/json"
	"time"
)

// Video represents a single entry in the catalog.
type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    int64     `json:"duration"`
	Genre       string    `json:"genre"`
	Tags        []string  `json:"tags"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// TagsJSON mirrors Tags as the JSON text stored in the tags_json column.
	TagsJSON string `json:"-"`
}

// PrepareForSave marshals Tags into TagsJSON for storage.
func (v *Video) PrepareForSave() error {
	if v.Tags == nil {
		v.TagsJSON = ""
		return nil
	}
	b, err := json.Marshal(v.Tags)
	if err != nil {
		return err
	}
	v.TagsJSON = string(b)
	return nil
}

// PrepareForAPI unmarshals TagsJSON back into Tags after a database scan.
func (v *Video) PrepareForAPI() error {
	if v.TagsJSON == "" {
		v.Tags = nil
		return nil
	}
	return json.Unmarshal([]byte(v.TagsJSON), &v.Tags)
}

// VideoPatch carries a partial update for a video. A nil field leaves the
// stored value unchanged.
type VideoPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Genre       *string   `json:"genre"`
	Tags        *[]string `json:"tags"`
	Duration    *int64    `json:"duration"`
}

// VideoListResult is the paginated response shape for video listings.
type VideoListResult struct {
	Data       []Video `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
