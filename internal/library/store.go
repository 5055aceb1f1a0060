package library

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/courseatlas/courseatlas-backend/internal/data/repos"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
	"github.com/courseatlas/courseatlas-backend/internal/platform/logger"
)

// Store is the entity store for the course library. Operations are atomic per
// entity; the multi-entity cascade on course/module delete runs inside one
// sqlite transaction, and every step is individually idempotent so a retry
// after interruption converges to the same end state.
type Store struct {
	db  *gorm.DB
	log *logger.Logger

	courses repos.CourseRepo
	modules repos.ModuleRepo
	videos  repos.VideoRepo
	notes   repos.NoteRepo
	avatars repos.AvatarRepo

	progress *Aggregator
}

func NewStore(
	db *gorm.DB,
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	modules repos.ModuleRepo,
	videos repos.VideoRepo,
	notes repos.NoteRepo,
	avatars repos.AvatarRepo,
) *Store {
	storeLog := baseLog.With("service", "LibraryStore")
	return &Store{
		db:       db,
		log:      storeLog,
		courses:  courses,
		modules:  modules,
		videos:   videos,
		notes:    notes,
		avatars:  avatars,
		progress: NewAggregator(db, baseLog, courses, modules, videos),
	}
}

// Progress exposes the aggregator for callers that recompute explicitly.
func (s *Store) Progress() *Aggregator { return s.progress }

// ---------- courses ----------

func (s *Store) AddCourse(ctx context.Context, course *types.Course) (*types.Course, error) {
	ctx = ctxutil.Default(ctx)
	if course == nil || strings.TrimSpace(course.Title) == "" {
		return nil, apperr.ErrInvalidArgument
	}

	now := time.Now().UTC()
	if course.ID == "" {
		course.ID = NewID(CourseIDPrefix)
	}
	if course.OriginalTitle == "" {
		course.OriginalTitle = course.Title
	}
	if len(course.Tags) > types.MaxCourseTags {
		course.Tags = course.Tags[:types.MaxCourseTags]
	}
	if course.Settings.Data() == (types.CourseSettings{}) {
		course.Settings = datatypes.NewJSONType(types.DefaultCourseSettings())
	}
	course.DateAdded = now
	course.DateModified = now

	if _, err := s.courses.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, apperr.Storage("course.create", err)
	}
	return course, nil
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (*types.Course, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.courses.GetByIDs(ctx, nil, []string{courseID})
	if err != nil {
		return nil, apperr.Storage("course.get", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("course", courseID)
	}
	return rows[0], nil
}

func (s *Store) ListCourses(ctx context.Context) ([]*types.Course, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.courses.GetAll(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("course.list", err)
	}
	return rows, nil
}

// UpdateCourse applies a partial update keyed by column name and returns the
// resulting row. Derived aggregate columns are owned by the aggregator and
// are stripped here.
func (s *Store) UpdateCourse(ctx context.Context, courseID string, fields map[string]any) (*types.Course, error) {
	ctx = ctxutil.Default(ctx)
	fields = stripKeys(fields,
		"id", "total_duration", "total_videos", "completed_videos", "completion_percentage",
		"date_added",
	)
	if raw, ok := fields["tags"]; ok {
		tags, err := coerceTags(raw)
		if err != nil {
			return nil, apperr.ErrInvalidArgument
		}
		if len(tags) > types.MaxCourseTags {
			tags = tags[:types.MaxCourseTags]
		}
		fields["tags"] = datatypes.NewJSONSlice(tags)
	}
	fields["date_modified"] = time.Now().UTC()

	n, err := s.courses.UpdateFields(ctx, nil, courseID, fields)
	if err != nil {
		return nil, apperr.Storage("course.update", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("course", courseID)
	}
	return s.GetCourse(ctx, courseID)
}

// TouchCourseAccess stamps last_accessed without moving date_modified.
func (s *Store) TouchCourseAccess(ctx context.Context, courseID string) error {
	ctx = ctxutil.Default(ctx)
	n, err := s.courses.UpdateFields(ctx, nil, courseID, map[string]any{"last_accessed": time.Now().UTC()})
	if err != nil {
		return apperr.Storage("course.touch", err)
	}
	if n == 0 {
		return apperr.NotFound("course", courseID)
	}
	return nil
}

// DeleteCourse removes a course and everything under it: notes, then videos,
// then modules, then the course row. Children go first so a reader mid-delete
// never sees a live child pointing at a dead parent. Deleting an absent id is
// a no-op, which makes re-invoking delete the recovery path after a partial
// failure.
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	ctx = ctxutil.Default(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notes.DeleteByCourseIDs(ctx, tx, []string{courseID}); err != nil {
			return err
		}
		if err := s.videos.DeleteByCourseIDs(ctx, tx, []string{courseID}); err != nil {
			return err
		}
		if err := s.modules.DeleteByCourseIDs(ctx, tx, []string{courseID}); err != nil {
			return err
		}
		return s.courses.DeleteByIDs(ctx, tx, []string{courseID})
	})
	if err != nil {
		return apperr.Storage("course.delete", err)
	}
	return nil
}

// ---------- modules ----------

func (s *Store) AddModule(ctx context.Context, module *types.Module) (*types.Module, error) {
	ctx = ctxutil.Default(ctx)
	if module == nil || module.CourseID == "" || strings.TrimSpace(module.Title) == "" {
		return nil, apperr.ErrInvalidArgument
	}
	if _, err := s.GetCourse(ctx, module.CourseID); err != nil {
		return nil, err
	}

	if module.ID == "" {
		module.ID = NewID(ModuleIDPrefix)
	}
	if module.OriginalTitle == "" {
		module.OriginalTitle = module.Title
	}
	module.DateAdded = time.Now().UTC()

	if _, err := s.modules.Create(ctx, nil, []*types.Module{module}); err != nil {
		return nil, apperr.Storage("module.create", err)
	}
	return module, nil
}

func (s *Store) GetModule(ctx context.Context, moduleID string) (*types.Module, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.modules.GetByIDs(ctx, nil, []string{moduleID})
	if err != nil {
		return nil, apperr.Storage("module.get", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("module", moduleID)
	}
	return rows[0], nil
}

func (s *Store) GetModulesByCourse(ctx context.Context, courseID string) ([]*types.Module, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.modules.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return nil, apperr.Storage("module.list", err)
	}
	return rows, nil
}

func (s *Store) UpdateModule(ctx context.Context, moduleID string, fields map[string]any) (*types.Module, error) {
	ctx = ctxutil.Default(ctx)
	fields = stripKeys(fields,
		"id", "course_id", "total_duration", "total_videos", "completed_videos",
		"completion_percentage", "date_added",
	)

	n, err := s.modules.UpdateFields(ctx, nil, moduleID, fields)
	if err != nil {
		return nil, apperr.Storage("module.update", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("module", moduleID)
	}
	return s.GetModule(ctx, moduleID)
}

// DeleteModule cascades to the module's videos and their notes, then
// recomputes the owning course's aggregates.
func (s *Store) DeleteModule(ctx context.Context, moduleID string) error {
	ctx = ctxutil.Default(ctx)

	mod, err := s.GetModule(ctx, moduleID)
	if err != nil {
		if apperrIsNotFound(err) {
			return nil
		}
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vids, err := s.videos.GetByModuleIDs(ctx, tx, []string{moduleID})
		if err != nil {
			return err
		}
		videoIDs := make([]string, 0, len(vids))
		for _, v := range vids {
			videoIDs = append(videoIDs, v.ID)
		}
		if err := s.notes.DeleteByVideoIDs(ctx, tx, videoIDs); err != nil {
			return err
		}
		if err := s.videos.DeleteByModuleIDs(ctx, tx, []string{moduleID}); err != nil {
			return err
		}
		return s.modules.DeleteByIDs(ctx, tx, []string{moduleID})
	})
	if err != nil {
		return apperr.Storage("module.delete", err)
	}

	return s.progress.Recalculate(ctx, mod.CourseID)
}

// ---------- helpers ----------

func stripKeys(fields map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// coerceTags accepts both []string and the []any a decoded JSON body yields.
func coerceTags(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("tag is not a string: %v", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tags is not a list")
	}
}

func apperrIsNotFound(err error) bool {
	return err != nil && stderrors.Is(err, apperr.ErrNotFound)
}
