package library

import (
	"context"
	"errors"
	"testing"

	"github.com/courseatlas/courseatlas-backend/internal/data/repos"
	"github.com/courseatlas/courseatlas-backend/internal/data/repos/testutil"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := testutil.DB(t)
	logg := testutil.Logger(t)
	return NewStore(
		db,
		logg,
		repos.NewCourseRepo(db, logg),
		repos.NewModuleRepo(db, logg),
		repos.NewVideoRepo(db, logg),
		repos.NewNoteRepo(db, logg),
		repos.NewAvatarRepo(db, logg),
	)
}

func seedCourseTree(t *testing.T, s *Store, durations []float64) (*types.Course, *types.Module, []*types.Video) {
	t.Helper()
	ctx := context.Background()

	course, err := s.AddCourse(ctx, &types.Course{Title: "Test Course"})
	if err != nil {
		t.Fatalf("AddCourse: %v", err)
	}
	module, err := s.AddModule(ctx, &types.Module{CourseID: course.ID, Title: "Module 1"})
	if err != nil {
		t.Fatalf("AddModule: %v", err)
	}

	videos := make([]*types.Video, 0, len(durations))
	for i, d := range durations {
		v, err := s.AddVideo(ctx, &types.Video{
			ModuleID:  module.ID,
			Title:     "Video",
			Source:    types.VideoSource{Kind: types.SourceLocalFile, Ref: "/v.mp4"},
			Duration:  d,
			SortIndex: i,
		})
		if err != nil {
			t.Fatalf("AddVideo: %v", err)
		}
		videos = append(videos, v)
	}
	return course, module, videos
}

func TestDeleteCourseIsIdempotentAndCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course, _, videos := seedCourseTree(t, s, []float64{100, 200})
	if _, err := s.AddNote(ctx, &types.Note{VideoID: videos[0].ID, Timestamp: 5, Content: "hello"}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	if err := s.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	// Second delete of the same id must not error.
	if err := s.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse repeat: %v", err)
	}

	if mods, err := s.GetModulesByCourse(ctx, course.ID); err != nil || len(mods) != 0 {
		t.Fatalf("modules survive cascade: err=%v len=%d", err, len(mods))
	}
	if vids, err := s.GetVideosByCourse(ctx, course.ID); err != nil || len(vids) != 0 {
		t.Fatalf("videos survive cascade: err=%v len=%d", err, len(vids))
	}
	if notes, err := s.GetNotesByCourse(ctx, course.ID); err != nil || len(notes) != 0 {
		t.Fatalf("notes survive cascade: err=%v len=%d", err, len(notes))
	}
	if _, err := s.GetCourse(ctx, course.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCompletionInvariant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, videos := seedCourseTree(t, s, []float64{60})
	v := videos[0]

	got, err := s.MarkVideoComplete(ctx, v.ID)
	if err != nil {
		t.Fatalf("MarkVideoComplete: %v", err)
	}
	if !got.IsCompleted || got.WatchProgress != 1.0 || got.CompletedAt == nil {
		t.Fatalf("completion invariant broken: %+v", got)
	}

	got, err = s.UnmarkVideoComplete(ctx, v.ID)
	if err != nil {
		t.Fatalf("UnmarkVideoComplete: %v", err)
	}
	if got.IsCompleted || got.CompletedAt != nil {
		t.Fatalf("uncomplete invariant broken: %+v", got)
	}
}

func TestWatchProgressPinnedWhileCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, videos := seedCourseTree(t, s, []float64{60})
	if _, err := s.MarkVideoComplete(ctx, videos[0].ID); err != nil {
		t.Fatalf("MarkVideoComplete: %v", err)
	}

	// Rewatching a completed video moves the resume position only.
	got, err := s.UpdateWatchProgress(ctx, videos[0].ID, 0.25, 15)
	if err != nil {
		t.Fatalf("UpdateWatchProgress: %v", err)
	}
	if !got.IsCompleted || got.WatchProgress != 1.0 {
		t.Fatalf("invariant broken: is_completed=%v watch_progress=%v", got.IsCompleted, got.WatchProgress)
	}
	if got.LastWatchedPosition != 15 {
		t.Fatalf("position not recorded: %v", got.LastWatchedPosition)
	}

	// After unmarking, lower progress is accepted again.
	if _, err := s.UnmarkVideoComplete(ctx, videos[0].ID); err != nil {
		t.Fatalf("UnmarkVideoComplete: %v", err)
	}
	got, err = s.UpdateWatchProgress(ctx, videos[0].ID, 0.25, 15)
	if err != nil {
		t.Fatalf("UpdateWatchProgress after unmark: %v", err)
	}
	if got.WatchProgress != 0.25 {
		t.Fatalf("progress not applied: %v", got.WatchProgress)
	}
}

func TestUpdateVideoCannotFlipCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, videos := seedCourseTree(t, s, []float64{60})
	got, err := s.UpdateVideo(ctx, videos[0].ID, map[string]any{
		"title":        "renamed",
		"is_completed": true,
	})
	if err != nil {
		t.Fatalf("UpdateVideo: %v", err)
	}
	if got.Title != "renamed" {
		t.Fatalf("title not updated: %q", got.Title)
	}
	if got.IsCompleted {
		t.Fatalf("is_completed must only change via MarkVideoComplete")
	}

	// watch_progress has its own operation; a field write on a completed
	// video must not drag progress below 1.
	if _, err := s.MarkVideoComplete(ctx, videos[0].ID); err != nil {
		t.Fatalf("MarkVideoComplete: %v", err)
	}
	got, err = s.UpdateVideo(ctx, videos[0].ID, map[string]any{
		"title":          "renamed again",
		"watch_progress": 0.1,
	})
	if err != nil {
		t.Fatalf("UpdateVideo watch_progress: %v", err)
	}
	if got.WatchProgress != 1.0 {
		t.Fatalf("watch_progress writable through UpdateVideo: %v", got.WatchProgress)
	}
}

func TestUpdateMissingEntityReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpdateCourse(ctx, "course_missing", map[string]any{"title": "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateCourse missing: %v", err)
	}
	if _, err := s.UpdateVideo(ctx, "video_missing", map[string]any{"title": "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("UpdateVideo missing: %v", err)
	}
	if _, err := s.MarkVideoComplete(ctx, "video_missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("MarkVideoComplete missing: %v", err)
	}
}

func TestReorderVideos(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, module, videos := seedCourseTree(t, s, []float64{10, 20, 30})

	reversed := []string{videos[2].ID, videos[1].ID, videos[0].ID}
	if err := s.ReorderVideos(ctx, module.ID, reversed); err != nil {
		t.Fatalf("ReorderVideos: %v", err)
	}

	rows, err := s.GetVideosByModule(ctx, module.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("GetVideosByModule: err=%v len=%d", err, len(rows))
	}
	for i, id := range reversed {
		if rows[i].ID != id {
			t.Fatalf("position %d: want %s got %s", i, id, rows[i].ID)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course, _, videos := seedCourseTree(t, s, []float64{100, 200})
	if _, err := s.MarkVideoComplete(ctx, videos[0].ID); err != nil {
		t.Fatalf("MarkVideoComplete: %v", err)
	}

	doc, err := s.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Version != types.ExportVersion || len(doc.Courses) != 1 || len(doc.Videos) != 2 {
		t.Fatalf("unexpected export: %+v", doc)
	}

	// Re-import into the same library must be a no-op upsert.
	if err := s.Import(ctx, doc); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := s.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse after import: %v", err)
	}
	if got.TotalVideos != 2 || got.CompletedVideos != 1 {
		t.Fatalf("stats after re-import: %+v", got)
	}

	// Import into a fresh library restores everything.
	s2 := newTestStore(t)
	if err := s2.Import(ctx, doc); err != nil {
		t.Fatalf("Import fresh: %v", err)
	}
	courses, err := s2.ListCourses(ctx)
	if err != nil || len(courses) != 1 {
		t.Fatalf("ListCourses after import: err=%v len=%d", err, len(courses))
	}
	if courses[0].TotalVideos != 2 || courses[0].CompletedVideos != 1 {
		t.Fatalf("stats in fresh library: %+v", courses[0])
	}
}

func TestIngestStructure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course, err := s.IngestStructure(ctx, types.CourseStructure{
		Title: "Imported Course",
		Modules: []types.ModuleStructure{
			{
				Title: "Part 1",
				Videos: []types.VideoStructure{
					{Title: "a", Duration: 30, FilePath: "/a.mp4"},
					{Title: "b", Duration: 45, URL: "https://example.com/b"},
					{Title: "broken", Duration: 10}, // no location: skipped
				},
			},
			{
				Title: "Part 2",
				Videos: []types.VideoStructure{
					{Title: "c", Duration: 25, ExternalID: "yt:abc123"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("IngestStructure: %v", err)
	}

	if course.TotalVideos != 3 || course.TotalDuration != 100 {
		t.Fatalf("ingest stats: %+v", course)
	}
	mods, err := s.GetModulesByCourse(ctx, course.ID)
	if err != nil || len(mods) != 2 {
		t.Fatalf("modules: err=%v len=%d", err, len(mods))
	}
	if mods[0].Title != "Part 1" || mods[1].Title != "Part 2" {
		t.Fatalf("module order: %s %s", mods[0].Title, mods[1].Title)
	}
}

func TestIngestKeepsExplicitSortIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	course, err := s.IngestStructure(ctx, types.CourseStructure{
		Title: "Ordered Course",
		Modules: []types.ModuleStructure{
			{
				// Adapter-supplied order, including an explicit zero that is
				// not at position zero.
				Title: "Explicit",
				Videos: []types.VideoStructure{
					{Title: "third", Duration: 10, FilePath: "/3.mp4", SortIndex: 2},
					{Title: "first", Duration: 10, FilePath: "/1.mp4", SortIndex: 0},
					{Title: "second", Duration: 10, FilePath: "/2.mp4", SortIndex: 1},
				},
			},
			{
				// No order at all: listing order wins.
				Title: "Positional",
				Videos: []types.VideoStructure{
					{Title: "a", Duration: 10, FilePath: "/a.mp4"},
					{Title: "b", Duration: 10, FilePath: "/b.mp4"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("IngestStructure: %v", err)
	}

	mods, err := s.GetModulesByCourse(ctx, course.ID)
	if err != nil || len(mods) != 2 {
		t.Fatalf("modules: err=%v len=%d", err, len(mods))
	}

	explicit, err := s.GetVideosByModule(ctx, mods[0].ID)
	if err != nil || len(explicit) != 3 {
		t.Fatalf("explicit videos: err=%v len=%d", err, len(explicit))
	}
	for i, want := range []string{"first", "second", "third"} {
		if explicit[i].Title != want {
			t.Fatalf("explicit position %d: want %s got %s", i, want, explicit[i].Title)
		}
	}

	positional, err := s.GetVideosByModule(ctx, mods[1].ID)
	if err != nil || len(positional) != 2 {
		t.Fatalf("positional videos: err=%v len=%d", err, len(positional))
	}
	if positional[0].Title != "a" || positional[1].Title != "b" {
		t.Fatalf("positional order: %s %s", positional[0].Title, positional[1].Title)
	}
}
