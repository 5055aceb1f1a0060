package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID prefixes per entity kind.
const (
	CourseIDPrefix = "course_"
	ModuleIDPrefix = "module_"
	VideoIDPrefix  = "video_"
	NoteIDPrefix   = "note_"
)

// NewID builds "{prefix}{unix-millis}_{random suffix}". The millisecond clock
// gives monotonic-ish ordering and the uuid suffix practical uniqueness; this
// is not a cryptographic guarantee.
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
