package library

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

func (s *Store) AddVideo(ctx context.Context, video *types.Video) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)
	if video == nil || video.ModuleID == "" || strings.TrimSpace(video.Title) == "" {
		return nil, apperr.ErrInvalidArgument
	}
	if video.Source.Kind == "" || video.Source.Ref == "" {
		return nil, apperr.ErrInvalidArgument
	}

	mod, err := s.GetModule(ctx, video.ModuleID)
	if err != nil {
		return nil, err
	}
	video.CourseID = mod.CourseID

	if video.ID == "" {
		video.ID = NewID(VideoIDPrefix)
	}
	if video.OriginalTitle == "" {
		video.OriginalTitle = video.Title
	}
	video.DateAdded = time.Now().UTC()

	if _, err := s.videos.Create(ctx, nil, []*types.Video{video}); err != nil {
		return nil, apperr.Storage("video.create", err)
	}
	if err := s.progress.Recalculate(ctx, video.CourseID); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *Store) GetVideo(ctx context.Context, videoID string) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.videos.GetByIDs(ctx, nil, []string{videoID})
	if err != nil {
		return nil, apperr.Storage("video.get", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	return rows[0], nil
}

func (s *Store) GetVideosByModule(ctx context.Context, moduleID string) ([]*types.Video, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.videos.GetByModuleIDs(ctx, nil, []string{moduleID})
	if err != nil {
		return nil, apperr.Storage("video.list", err)
	}
	return rows, nil
}

func (s *Store) GetVideosByCourse(ctx context.Context, courseID string) ([]*types.Video, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.videos.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return nil, apperr.Storage("video.list", err)
	}
	return rows, nil
}

// UpdateVideo applies a partial metadata update. Completion state is managed
// through MarkVideoComplete/UnmarkVideoComplete and watch progress through
// UpdateWatchProgress, so the completion invariant cannot be broken by a
// stray field write.
func (s *Store) UpdateVideo(ctx context.Context, videoID string, fields map[string]any) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)
	fields = stripKeys(fields,
		"id", "course_id", "module_id", "is_completed", "completed_at",
		"watch_progress", "date_added",
	)

	n, err := s.videos.UpdateFields(ctx, nil, videoID, fields)
	if err != nil {
		return nil, apperr.Storage("video.update", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}

	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if _, ok := fields["duration"]; ok {
		if err := s.progress.Recalculate(ctx, video.CourseID); err != nil {
			return nil, err
		}
	}
	return video, nil
}

// DeleteVideo cascades to the video's notes and recomputes course aggregates.
// Absent ids are a no-op.
func (s *Store) DeleteVideo(ctx context.Context, videoID string) error {
	ctx = ctxutil.Default(ctx)

	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		if apperrIsNotFound(err) {
			return nil
		}
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notes.DeleteByVideoIDs(ctx, tx, []string{videoID}); err != nil {
			return err
		}
		return s.videos.DeleteByIDs(ctx, tx, []string{videoID})
	})
	if err != nil {
		return apperr.Storage("video.delete", err)
	}

	return s.progress.Recalculate(ctx, video.CourseID)
}

// MarkVideoComplete sets the completion invariant (watch_progress pinned to 1,
// completed_at stamped) and synchronously recomputes course and module stats.
func (s *Store) MarkVideoComplete(ctx context.Context, videoID string) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)

	now := time.Now().UTC()
	n, err := s.videos.UpdateFields(ctx, nil, videoID, map[string]any{
		"is_completed":   true,
		"watch_progress": 1.0,
		"completed_at":   now,
	})
	if err != nil {
		return nil, apperr.Storage("video.complete", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}

	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.progress.Recalculate(ctx, video.CourseID); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *Store) UnmarkVideoComplete(ctx context.Context, videoID string) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)

	n, err := s.videos.UpdateFields(ctx, nil, videoID, map[string]any{
		"is_completed": false,
		"completed_at": nil,
	})
	if err != nil {
		return nil, apperr.Storage("video.uncomplete", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}

	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.progress.Recalculate(ctx, video.CourseID); err != nil {
		return nil, err
	}
	return video, nil
}

// UpdateWatchProgress records a playback position. progress is clamped to
// [0,1]; completion is not inferred here, callers mark it explicitly. On a
// completed video watch_progress stays pinned at 1, so rewatching only moves
// the resume position.
func (s *Store) UpdateWatchProgress(ctx context.Context, videoID string, progress, position float64) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)

	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if video.IsCompleted {
		progress = 1
	}
	n, err := s.videos.UpdateFields(ctx, nil, videoID, map[string]any{
		"watch_progress":        progress,
		"last_watched_position": position,
		"last_watched_at":       time.Now().UTC(),
	})
	if err != nil {
		return nil, apperr.Storage("video.watch", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	return s.GetVideo(ctx, videoID)
}

// IncrementWatchCount bumps watch_count once per playback session.
func (s *Store) IncrementWatchCount(ctx context.Context, videoID string) error {
	ctx = ctxutil.Default(ctx)
	n, err := s.videos.UpdateFields(ctx, nil, videoID, map[string]any{
		"watch_count":     gorm.Expr("watch_count + 1"),
		"last_watched_at": time.Now().UTC(),
	})
	if err != nil {
		return apperr.Storage("video.watchcount", err)
	}
	if n == 0 {
		return apperr.NotFound("video", videoID)
	}
	return nil
}

// SaveTranscription persists the outputs of the transcription pipeline on the
// video row.
func (s *Store) SaveTranscription(ctx context.Context, videoID string, transcript string, cues []types.CaptionCue) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)

	now := time.Now().UTC()
	fields := map[string]any{
		"transcript":              transcript,
		"transcript_generated_at": now,
	}
	if cues != nil {
		fields["caption_chunks"] = datatypes.NewJSONSlice(cues)
	}
	n, err := s.videos.UpdateFields(ctx, nil, videoID, fields)
	if err != nil {
		return nil, apperr.Storage("video.transcript", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	return s.GetVideo(ctx, videoID)
}

func (s *Store) SaveSummary(ctx context.Context, videoID string, summary string) (*types.Video, error) {
	ctx = ctxutil.Default(ctx)

	n, err := s.videos.UpdateFields(ctx, nil, videoID, map[string]any{
		"summary":              summary,
		"summary_generated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, apperr.Storage("video.summary", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	return s.GetVideo(ctx, videoID)
}
