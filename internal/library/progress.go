package library

import (
	"context"

	"gorm.io/gorm"

	"github.com/courseatlas/courseatlas-backend/internal/data/repos"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

// Aggregator recomputes the derived completion stats on a course and its
// modules. Always a full recompute over the course's live videos, never an
// incremental delta: linear in video count, immune to drift from missed
// update paths.
type Aggregator struct {
	db  *gorm.DB
	log *logger.Logger

	courses repos.CourseRepo
	modules repos.ModuleRepo
	videos  repos.VideoRepo
}

func NewAggregator(
	db *gorm.DB,
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	modules repos.ModuleRepo,
	videos repos.VideoRepo,
) *Aggregator {
	return &Aggregator{
		db:      db,
		log:     baseLog.With("service", "ProgressAggregator"),
		courses: courses,
		modules: modules,
		videos:  videos,
	}
}

type tally struct {
	totalVideos     int
	completedVideos int
	totalDuration   float64
}

func (t tally) percentage() float64 {
	if t.totalVideos == 0 {
		return 0
	}
	return float64(t.completedVideos) / float64(t.totalVideos) * 100
}

func (t *tally) add(v *types.Video) {
	t.totalVideos++
	t.totalDuration += v.Duration
	if v.IsCompleted {
		t.completedVideos++
	}
}

// Recalculate reads every video of the course once, then writes the four
// derived metrics onto the course and onto each module. A failed write leaves
// stale-but-detectable stats; the error propagates so the caller knows the
// course is inconsistent until the next successful recompute.
func (a *Aggregator) Recalculate(ctx context.Context, courseID string) error {
	ctx = ctxutil.Default(ctx)

	videos, err := a.videos.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return apperr.Storage("progress.videos", err)
	}
	modules, err := a.modules.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return apperr.Storage("progress.modules", err)
	}

	var courseTally tally
	perModule := make(map[string]*tally, len(modules))
	for _, m := range modules {
		perModule[m.ID] = &tally{}
	}
	for _, v := range videos {
		courseTally.add(v)
		if mt, ok := perModule[v.ModuleID]; ok {
			mt.add(v)
		}
	}

	if _, err := a.courses.UpdateFields(ctx, nil, courseID, map[string]any{
		"total_videos":          courseTally.totalVideos,
		"completed_videos":      courseTally.completedVideos,
		"completion_percentage": courseTally.percentage(),
		"total_duration":        courseTally.totalDuration,
	}); err != nil {
		return apperr.Storage("progress.course", err)
	}

	for _, m := range modules {
		mt := perModule[m.ID]
		if _, err := a.modules.UpdateFields(ctx, nil, m.ID, map[string]any{
			"total_videos":          mt.totalVideos,
			"completed_videos":      mt.completedVideos,
			"completion_percentage": mt.percentage(),
			"total_duration":        mt.totalDuration,
		}); err != nil {
			return apperr.Storage("progress.module", err)
		}
	}

	a.log.Debug("Recalculated course progress",
		"course_id", courseID,
		"total_videos", courseTally.totalVideos,
		"completed_videos", courseTally.completedVideos,
	)
	return nil
}
