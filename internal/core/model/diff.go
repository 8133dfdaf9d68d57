// Package model defines the passive data structures for a parsed changeset
// and the review state layered on top of it.
package model

// LineOrigin classifies a diff line as context, addition, or deletion.
type LineOrigin int

const (
	OriginContext LineOrigin = iota
	OriginAddition
	OriginDeletion
)

// Prefix returns the unified-diff prefix character for the origin.
func (o LineOrigin) Prefix() string {
	switch o {
	case OriginAddition:
		return "+"
	case OriginDeletion:
		return "-"
	default:
		return " "
	}
}

// LineSide identifies which side of a diff a line comment refers to.
type LineSide string

const (
	SideOld LineSide = "old" // deletions, "-" lines
	SideNew LineSide = "new" // additions and context
)

// Segment is a pre-rendered syntax-highlighted slice of a line's content.
// Color is a hex color string understood by the renderer; empty means
// the default foreground.
type Segment struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color,omitempty"`
}

// DiffLine is one physical line of a hunk.
//
// OldLineno is set (non-zero) iff the line exists in the pre-image
// (context or deletion); NewLineno iff it exists in the post-image
// (context or addition). Line numbers are 1-based.
type DiffLine struct {
	Origin    LineOrigin
	Content   string // raw content, trailing newline stripped
	OldLineno int
	NewLineno int
	Segments  []Segment // optional highlighted rendition of Content
}

// DiffHunk is a contiguous change region.
type DiffHunk struct {
	Header   string // original "@@ ... @@" line, kept verbatim for display
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []DiffLine
}

// FileStatus describes how a file changed.
type FileStatus int

const (
	StatusModified FileStatus = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusCopied
)

// Rune returns the single-letter marker used in file lists.
func (s FileStatus) Rune() rune {
	switch s {
	case StatusAdded:
		return 'A'
	case StatusDeleted:
		return 'D'
	case StatusRenamed:
		return 'R'
	case StatusCopied:
		return 'C'
	default:
		return 'M'
	}
}

func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusCopied:
		return "copied"
	default:
		return "modified"
	}
}

// MarshalYAML persists the status as its string form.
func (s FileStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads the string form back; unknown values map to modified.
func (s *FileStatus) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "added":
		*s = StatusAdded
	case "deleted":
		*s = StatusDeleted
	case "renamed":
		*s = StatusRenamed
	case "copied":
		*s = StatusCopied
	default:
		*s = StatusModified
	}
	return nil
}

// DiffFile is one file's change. OldPath is empty for newly added files,
// NewPath is empty for deleted files; at least one is always set.
type DiffFile struct {
	OldPath  string
	NewPath  string
	Status   FileStatus
	Hunks    []DiffHunk
	IsBinary bool // when true, Hunks is empty
}

// DisplayPath returns the path used to identify the file in review state
// and navigation: the new path when present, otherwise the old path.
func (f *DiffFile) DisplayPath() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Changeset is the ordered set of per-file diffs produced by one parse.
// Order is significant (it drives navigation order) and is never re-sorted.
type Changeset []DiffFile
