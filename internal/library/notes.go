package library

import (
	"context"
	"strings"
	"time"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
	"github.com/courseatlas/courseatlas-backend/internal/pkg/ctxutil"
	apperr "github.com/courseatlas/courseatlas-backend/internal/pkg/errors"
)

func (s *Store) AddNote(ctx context.Context, note *types.Note) (*types.Note, error) {
	ctx = ctxutil.Default(ctx)
	if note == nil || note.VideoID == "" {
		return nil, apperr.ErrInvalidArgument
	}
	note.Content = sanitizeNoteContent(note.Content)
	if note.Content == "" {
		return nil, apperr.ErrInvalidArgument
	}

	video, err := s.GetVideo(ctx, note.VideoID)
	if err != nil {
		return nil, err
	}
	note.CourseID = video.CourseID

	if note.ID == "" {
		note.ID = NewID(NoteIDPrefix)
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	if _, err := s.notes.Create(ctx, nil, []*types.Note{note}); err != nil {
		return nil, apperr.Storage("note.create", err)
	}
	return note, nil
}

func (s *Store) GetNote(ctx context.Context, noteID string) (*types.Note, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.notes.GetByIDs(ctx, nil, []string{noteID})
	if err != nil {
		return nil, apperr.Storage("note.get", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("note", noteID)
	}
	return rows[0], nil
}

func (s *Store) GetNotesByVideo(ctx context.Context, videoID string) ([]*types.Note, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.notes.GetByVideoIDs(ctx, nil, []string{videoID})
	if err != nil {
		return nil, apperr.Storage("note.list", err)
	}
	return rows, nil
}

func (s *Store) GetNotesByCourse(ctx context.Context, courseID string) ([]*types.Note, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.notes.GetByCourseIDs(ctx, nil, []string{courseID})
	if err != nil {
		return nil, apperr.Storage("note.list", err)
	}
	return rows, nil
}

func (s *Store) UpdateNote(ctx context.Context, noteID string, fields map[string]any) (*types.Note, error) {
	ctx = ctxutil.Default(ctx)
	fields = stripKeys(fields, "id", "video_id", "course_id", "created_at")
	if content, ok := fields["content"].(string); ok {
		content = sanitizeNoteContent(content)
		if content == "" {
			return nil, apperr.ErrInvalidArgument
		}
		fields["content"] = content
	}
	fields["updated_at"] = time.Now().UTC()

	n, err := s.notes.UpdateFields(ctx, nil, noteID, fields)
	if err != nil {
		return nil, apperr.Storage("note.update", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("note", noteID)
	}
	return s.GetNote(ctx, noteID)
}

func (s *Store) DeleteNote(ctx context.Context, noteID string) error {
	ctx = ctxutil.Default(ctx)
	if err := s.notes.DeleteByIDs(ctx, nil, []string{noteID}); err != nil {
		return apperr.Storage("note.delete", err)
	}
	return nil
}

// ---------- instructor avatars ----------

func (s *Store) SetInstructorAvatar(ctx context.Context, instructorName, image string) (*types.InstructorAvatar, error) {
	ctx = ctxutil.Default(ctx)
	name := types.NormalizeInstructorName(instructorName)
	if name == "" || image == "" {
		return nil, apperr.ErrInvalidArgument
	}
	avatar := &types.InstructorAvatar{Name: name, Image: image, UpdatedAt: time.Now().UTC()}
	if err := s.avatars.Upsert(ctx, nil, avatar); err != nil {
		return nil, apperr.Storage("avatar.upsert", err)
	}
	return avatar, nil
}

func (s *Store) GetInstructorAvatar(ctx context.Context, instructorName string) (*types.InstructorAvatar, error) {
	ctx = ctxutil.Default(ctx)
	name := types.NormalizeInstructorName(instructorName)
	rows, err := s.avatars.GetByNames(ctx, nil, []string{name})
	if err != nil {
		return nil, apperr.Storage("avatar.get", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("avatar", name)
	}
	return rows[0], nil
}

// RemoveInstructorAvatar is the only way an avatar goes away; course deletes
// never cascade here because many courses can share one instructor.
func (s *Store) RemoveInstructorAvatar(ctx context.Context, instructorName string) error {
	ctx = ctxutil.Default(ctx)
	name := types.NormalizeInstructorName(instructorName)
	if err := s.avatars.DeleteByNames(ctx, nil, []string{name}); err != nil {
		return apperr.Storage("avatar.delete", err)
	}
	return nil
}

// sanitizeNoteContent strips control characters and trims whitespace; note
// bodies are stored as plain text.
func sanitizeNoteContent(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
