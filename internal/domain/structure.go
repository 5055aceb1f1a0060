package domain

// CourseStructure is the normalized shape import adapters (folder scan,
// Google Drive, YouTube) hand to ingestion. Exactly one of FilePath, URL,
// ExternalID is set per video entry.
type CourseStructure struct {
	Title      string            `json:"title"`
	Instructor string            `json:"instructor,omitempty"`
	Thumbnail  *string           `json:"thumbnail,omitempty"`
	Modules    []ModuleStructure `json:"modules"`
}

type ModuleStructure struct {
	Title  string           `json:"title"`
	Videos []VideoStructure `json:"videos"`
}

type VideoStructure struct {
	Title      string  `json:"title"`
	FileName   string  `json:"file_name,omitempty"`
	Duration   float64 `json:"duration"`
	SortIndex  int     `json:"sort_index"`
	FilePath   string  `json:"file_path,omitempty"`
	URL        string  `json:"url,omitempty"`
	ExternalID string  `json:"external_id,omitempty"`
}

// SourceRef resolves the one-of location fields into the tagged variant.
func (v VideoStructure) SourceRef() (VideoSource, bool) {
	switch {
	case v.FilePath != "":
		return VideoSource{Kind: SourceLocalFile, Ref: v.FilePath}, true
	case v.URL != "":
		return VideoSource{Kind: SourceRemoteURL, Ref: v.URL}, true
	case v.ExternalID != "":
		return VideoSource{Kind: SourceExternalID, Ref: v.ExternalID}, true
	default:
		return VideoSource{}, false
	}
}
