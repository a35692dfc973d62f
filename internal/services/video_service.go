package services

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/videoflow/videoflow-be/internal/models"
)

const maxTitleLength = 100

// VideoServiceProvider defines the interface for video services.
type VideoServiceProvider interface {
	Create(input VideoInput) (models.Video, error)
	GetVideoByID(id int64) (models.Video, error)
	Update(id int64, patch models.VideoPatch) (models.Video, error)
	List(filter ListFilter) (models.VideoListResult, error)
	Delete(id int64) error
	Stats() (CatalogStats, error)
}

// VideoInput carries the fields accepted when creating a video.
type VideoInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Tags        []string `json:"tags"`
	Duration    *int64   `json:"duration"`
}

// ListFilter describes the supported listing criteria. Search takes priority
// over the plain filters: the two branches are mutually exclusive.
type ListFilter struct {
	Genre  string
	Tags   []string
	Title  string
	Search string
	Page   int
	Limit  int
}

// CatalogStats summarizes the stored catalog for the monitoring reporter.
type CatalogStats struct {
	Videos int64
	Views  int64
	Likes  int64
}

// VideoService provides business logic for catalog management.
type VideoService struct {
	db *sql.DB
}

// NewVideoService creates a new VideoService.
func NewVideoService(db *sql.DB) *VideoService {
	return &VideoService{db: db}
}

const videoColumns = "id, title, description, duration, genre, tags_json, views, likes, created_at, updated_at"

// scanVideo is a helper to scan a video from a row or rows object.
func scanVideo(scanner interface{ Scan(...interface{}) error }) (models.Video, error) {
	var v models.Video
	var desc, tags sql.NullString
	var duration sql.NullInt64

	err := scanner.Scan(
		&v.ID, &v.Title, &desc, &duration, &v.Genre,
		&tags, &v.Views, &v.Likes, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return v, err
	}

	v.Description = desc.String
	v.Duration = duration.Int64
	v.TagsJSON = tags.String
	if err := v.PrepareForAPI(); err != nil {
		return v, err
	}
	return v, nil
}

func validateVideoInput(in VideoInput) error {
	var ve ValidationError

	title := strings.TrimSpace(in.Title)
	if title == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > maxTitleLength {
		ve.Fields = append(ve.Fields, FieldError{Field: "title", Message: "title must be at most 100 characters"})
	}

	if strings.TrimSpace(in.Genre) == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "genre", Message: "genre is required"})
	}

	if in.Duration == nil {
		ve.Fields = append(ve.Fields, FieldError{Field: "duration", Message: "duration is required"})
	} else if *in.Duration < 0 {
		ve.Fields = append(ve.Fields, FieldError{Field: "duration", Message: "duration must be a non-negative integer"})
	}

	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

func validateVideoPatch(patch models.VideoPatch) error {
	var ve ValidationError

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			ve.Fields = append(ve.Fields, FieldError{Field: "title", Message: "title must not be empty"})
		} else if len(title) > maxTitleLength {
			ve.Fields = append(ve.Fields, FieldError{Field: "title", Message: "title must be at most 100 characters"})
		}
	}

	if patch.Genre != nil && strings.TrimSpace(*patch.Genre) == "" {
		ve.Fields = append(ve.Fields, FieldError{Field: "genre", Message: "genre must not be empty"})
	}

	if patch.Duration != nil && *patch.Duration < 0 {
		ve.Fields = append(ve.Fields, FieldError{Field: "duration", Message: "duration must be a non-negative integer"})
	}

	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// Create validates the input and stores a new video. All violations are
// reported together, before any write.
func (s *VideoService) Create(in VideoInput) (models.Video, error) {
	if err := validateVideoInput(in); err != nil {
		return models.Video{}, err
	}

	video := models.Video{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Genre:       strings.TrimSpace(in.Genre),
		Tags:        in.Tags,
		Duration:    *in.Duration,
	}
	if err := video.PrepareForSave(); err != nil {
		return models.Video{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO videos(title, description, duration, genre, tags_json, views, likes, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		video.Title, video.Description, video.Duration, video.Genre, video.TagsJSON, now, now,
	)
	if err != nil {
		return models.Video{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Video{}, err
	}
	return s.GetVideoByID(id)
}

// GetVideoByID retrieves a single video by its ID.
func (s *VideoService) GetVideoByID(id int64) (models.Video, error) {
	row := s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	video, err := scanVideo(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

// Update applies a partial update to a stored video. Fields left nil in the
// patch keep their stored values.
func (s *VideoService) Update(id int64, patch models.VideoPatch) (models.Video, error) {
	if err := validateVideoPatch(patch); err != nil {
		return models.Video{}, err
	}

	video, err := s.GetVideoByID(id)
	if err != nil {
		return models.Video{}, err
	}

	if patch.Title != nil {
		video.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		video.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Genre != nil {
		video.Genre = strings.TrimSpace(*patch.Genre)
	}
	if patch.Tags != nil {
		video.Tags = *patch.Tags
	}
	if patch.Duration != nil {
		video.Duration = *patch.Duration
	}
	if err := video.PrepareForSave(); err != nil {
		return models.Video{}, err
	}

	_, err = s.db.Exec(
		"UPDATE videos SET title = ?, description = ?, duration = ?, genre = ?, tags_json = ?, updated_at = ? WHERE id = ?",
		video.Title, video.Description, video.Duration, video.Genre, video.TagsJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return models.Video{}, err
	}
	return s.GetVideoByID(id)
}

func validateListFilter(filter ListFilter) error {
	var ve ValidationError
	if filter.Page < 1 {
		ve.Fields = append(ve.Fields, FieldError{Field: "page", Message: "page must be a positive integer"})
	}
	if filter.Limit < 1 {
		ve.Fields = append(ve.Fields, FieldError{Field: "limit", Message: "limit must be a positive integer"})
	}
	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}

// List retrieves videos matching the filter. A search term overrides the
// plain filters and pagination: every match comes back as a single page.
func (s *VideoService) List(filter ListFilter) (models.VideoListResult, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	if err := validateListFilter(filter); err != nil {
		return models.VideoListResult{}, err
	}

	if filter.Search != "" {
		return s.search(filter.Search)
	}

	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if filter.Genre != "" {
		where = append(where, "genre = ?")
		args = append(args, filter.Genre)
	}
	if filter.Title != "" {
		where = append(where, `title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(filter.Title)+"%")
	}
	for _, tag := range filter.Tags {
		// The stored list must contain each requested tag. Matching the
		// JSON-encoded element keeps the check inside the datastore.
		encoded, err := json.Marshal(tag)
		if err != nil {
			return models.VideoListResult{}, err
		}
		where = append(where, `tags_json LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(string(encoded))+"%")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM videos"+whereClause, args...).Scan(&total); err != nil {
		return models.VideoListResult{}, err
	}

	offset := (filter.Page - 1) * filter.Limit
	rows, err := s.db.Query(
		"SELECT "+videoColumns+" FROM videos"+whereClause+" ORDER BY id ASC LIMIT ? OFFSET ?",
		append(args, filter.Limit, offset)...,
	)
	if err != nil {
		return models.VideoListResult{}, err
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return models.VideoListResult{}, err
	}

	return models.VideoListResult{
		Data:       videos,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// search matches the term against title and description together and returns
// every match as a single page, in ascending id order.
func (s *VideoService) search(term string) (models.VideoListResult, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := s.db.Query(
		"SELECT "+videoColumns+" FROM videos WHERE (title || ' ' || COALESCE(description, '')) LIKE ? ESCAPE '\\' ORDER BY id ASC",
		pattern,
	)
	if err != nil {
		return models.VideoListResult{}, err
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return models.VideoListResult{}, err
	}

	return models.VideoListResult{
		Data:       videos,
		Total:      len(videos),
		Page:       1,
		Limit:      len(videos),
		TotalPages: 1,
	}, nil
}

// Delete removes a video. Deleting an unknown id reports ErrNotFound.
func (s *VideoService) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats reports catalog totals.
func (s *VideoService) Stats() (CatalogStats, error) {
	var stats CatalogStats
	err := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(views), 0), COALESCE(SUM(likes), 0) FROM videos").
		Scan(&stats.Videos, &stats.Views, &stats.Likes)
	return stats, err
}

func collectVideos(rows *sql.Rows) ([]models.Video, error) {
	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// escapeLike escapes LIKE wildcards in user-supplied match terms.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
