package library

import (
	"context"
	"testing"
	"time"

	"github.com/courseatlas/courseatlas-backend/internal/data/repos/testutil"
	types "github.com/courseatlas/courseatlas-backend/internal/domain"
)

func TestAvatarRepoUpsertAndDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAvatarRepo(db, testutil.Logger(t))

	name := types.NormalizeInstructorName("  Jane   Doe ")
	if name != "jane doe" {
		t.Fatalf("NormalizeInstructorName: %q", name)
	}

	av := &types.InstructorAvatar{Name: name, Image: "data:image/png;base64,AAAA", UpdatedAt: time.Now().UTC()}
	if err := repo.Upsert(ctx, tx, av); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	av.Image = "data:image/png;base64,BBBB"
	if err := repo.Upsert(ctx, tx, av); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	rows, err := repo.GetByNames(ctx, tx, []string{name})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByNames: err=%v len=%d", err, len(rows))
	}
	if rows[0].Image != "data:image/png;base64,BBBB" {
		t.Fatalf("Upsert did not replace image: %q", rows[0].Image)
	}

	if err := repo.DeleteByNames(ctx, tx, []string{name}); err != nil {
		t.Fatalf("DeleteByNames: %v", err)
	}
	if rows, err := repo.GetByNames(ctx, tx, []string{name}); err != nil || len(rows) != 0 {
		t.Fatalf("after delete: err=%v len=%d", err, len(rows))
	}
}
