package library

import (
	"context"
	"time"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

// Export produces a full dump of the library.
func (s *Store) Export(ctx context.Context) (*types.ExportDocument, error) {
	ctx = ctxutil.Default(ctx)

	courses, err := s.courses.GetAll(ctx, nil)
	if err != nil {
		return nil, apperr.Storage("export.courses", err)
	}
	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}

	modules, err := s.modules.GetByCourseIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, apperr.Storage("export.modules", err)
	}
	videos, err := s.videos.GetByCourseIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, apperr.Storage("export.videos", err)
	}
	notes, err := s.notes.GetByCourseIDs(ctx, nil, courseIDs)
	if err != nil {
		return nil, apperr.Storage("export.notes", err)
	}

	return &types.ExportDocument{
		Version:    types.ExportVersion,
		ExportDate: time.Now().UTC(),
		Courses:    courses,
		Modules:    modules,
		Videos:     videos,
		Notes:      notes,
	}, nil
}

// Import upserts every record in the document by id, so re-importing the same
// dump is idempotent. Derived stats are recomputed per course afterwards
// rather than trusted from the document.
func (s *Store) Import(ctx context.Context, doc *types.ExportDocument) error {
	ctx = ctxutil.Default(ctx)
	if doc == nil {
		return apperr.ErrInvalidArgument
	}

	if err := s.courses.Upsert(ctx, nil, doc.Courses); err != nil {
		return apperr.Storage("import.courses", err)
	}
	if err := s.modules.Upsert(ctx, nil, doc.Modules); err != nil {
		return apperr.Storage("import.modules", err)
	}
	if err := s.videos.Upsert(ctx, nil, doc.Videos); err != nil {
		return apperr.Storage("import.videos", err)
	}
	if err := s.notes.Upsert(ctx, nil, doc.Notes); err != nil {
		return apperr.Storage("import.notes", err)
	}

	for _, c := range doc.Courses {
		if err := s.progress.Recalculate(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}
