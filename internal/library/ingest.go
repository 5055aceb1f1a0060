package library

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

// IngestStructure turns a normalized course structure from an import adapter
// (folder scan, Drive, YouTube) into course + module + video rows, then runs
// the initial progress recompute. Videos missing a usable location reference
// are skipped rather than failing the whole import.
func (s *Store) IngestStructure(ctx context.Context, structure types.CourseStructure) (*types.Course, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(structure.Title) == "" {
		return nil, apperr.ErrInvalidArgument
	}

	now := time.Now().UTC()
	course := &types.Course{
		ID:            NewID(CourseIDPrefix),
		Title:         structure.Title,
		OriginalTitle: structure.Title,
		Instructor:    structure.Instructor,
		Thumbnail:     structure.Thumbnail,
		Tags:          datatypes.NewJSONSlice([]string{}),
		Settings:      datatypes.NewJSONType(types.DefaultCourseSettings()),
		DateAdded:     now,
		DateModified:  now,
	}
	if _, err := s.courses.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, apperr.Storage("ingest.course", err)
	}

	skipped := 0
	for mi, ms := range structure.Modules {
		module := &types.Module{
			ID:            NewID(ModuleIDPrefix),
			CourseID:      course.ID,
			Title:         ms.Title,
			OriginalTitle: ms.Title,
			SortIndex:     mi,
			DateAdded:     now,
		}
		if _, err := s.modules.Create(ctx, nil, []*types.Module{module}); err != nil {
			return nil, apperr.Storage("ingest.module", err)
		}

		// Adapters that order their videos set sort_index explicitly; an
		// all-zero module means the order was omitted and adapter order wins.
		explicitOrder := false
		for _, vs := range ms.Videos {
			if vs.SortIndex != 0 {
				explicitOrder = true
				break
			}
		}

		videos := make([]*types.Video, 0, len(ms.Videos))
		for vi, vs := range ms.Videos {
			source, ok := vs.SourceRef()
			if !ok {
				skipped++
				continue
			}
			sortIndex := vs.SortIndex
			if !explicitOrder {
				sortIndex = vi
			}
			videos = append(videos, &types.Video{
				ID:            NewID(VideoIDPrefix),
				CourseID:      course.ID,
				ModuleID:      module.ID,
				Title:         vs.Title,
				OriginalTitle: vs.Title,
				FileName:      vs.FileName,
				Source:        source,
				Duration:      vs.Duration,
				SortIndex:     sortIndex,
				IsRequired:    true,
				DateAdded:     now,
			})
		}
		if _, err := s.videos.Create(ctx, nil, videos); err != nil {
			return nil, apperr.Storage("ingest.videos", err)
		}
	}

	if skipped > 0 {
		s.log.Warn("Ingest skipped videos without a location reference",
			"course_id", course.ID, "skipped", skipped)
	}

	if err := s.progress.Recalculate(ctx, course.ID); err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, course.ID)
}

// ReorderModules rewrites sort_index for the given course's modules to match
// orderedIDs. IDs not belonging to the course are ignored; modules missing
// from orderedIDs keep their relative order after the listed ones.
func (s *Store) ReorderModules(ctx context.Context, courseID string, orderedIDs []string) error {
	ctx = ctxutil.Default(ctx)

	existing, err := s.modules.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return apperr.Storage("reorder.modules", err)
	}
	ids := reorderIDs(existing, orderedIDs, func(m *types.Module) string { return m.ID })
	for i, id := range ids {
		if _, err := s.modules.UpdateFields(ctx, nil, id, map[string]any{"sort_index": i}); err != nil {
			return apperr.Storage("reorder.modules", err)
		}
	}
	return nil
}

// ReorderVideos does the same for a module's videos.
func (s *Store) ReorderVideos(ctx context.Context, moduleID string, orderedIDs []string) error {
	ctx = ctxutil.Default(ctx)

	existing, err := s.videos.GetByModuleIDs(ctx, nil, []string{moduleID})
	if err != nil {
		return apperr.Storage("reorder.videos", err)
	}
	ids := reorderIDs(existing, orderedIDs, func(v *types.Video) string { return v.ID })
	for i, id := range ids {
		if _, err := s.videos.UpdateFields(ctx, nil, id, map[string]any{"sort_index": i}); err != nil {
			return apperr.Storage("reorder.videos", err)
		}
	}
	return nil
}

// ReorderCourses rewrites the manual ordering of the course list itself.
func (s *Store) ReorderCourses(ctx context.Context, orderedIDs []string) error {
	ctx = ctxutil.Default(ctx)

	existing, err := s.courses.GetAll(ctx, nil)
	if err != nil {
		return apperr.Storage("reorder.courses", err)
	}
	ids := reorderIDs(existing, orderedIDs, func(c *types.Course) string { return c.ID })
	for i, id := range ids {
		if _, err := s.courses.UpdateFields(ctx, nil, id, map[string]any{"sort_index": i}); err != nil {
			return apperr.Storage("reorder.courses", err)
		}
	}
	return nil
}

func reorderIDs[T any](existing []T, orderedIDs []string, idOf func(T) string) []string {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[idOf(e)] = true
	}

	out := make([]string, 0, len(existing))
	placed := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if known[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, e := range existing {
		if id := idOf(e); !placed[id] {
			out = append(out, id)
		}
	}
	return out
}
