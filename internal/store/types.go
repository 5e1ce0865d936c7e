package store

// Root is a canonicalized absolute directory under which DOCX files are
// discovered and indexed.
type Root struct {
	ID            int64
	Path          string
	AddedAtMs     int64
	LastIndexedMs int64
}

// File is a DOCX discovered beneath a root.
type File struct {
	ID           int64
	RootID       int64
	RelativePath string
	AbsolutePath string
	ModifiedMs   int64
	Size         int64
	HeadingCount int
}

// Heading is a paragraph classified as a heading in a file.
type Heading struct {
	ID           int64
	FileID       int64
	Order        int
	Level        int
	Text         string
	Normalized   string
	FileName     string
	RelativePath string
}

// Author is a paragraph classified as a probable bibliographic line.
type Author struct {
	ID           int64
	FileID       int64
	Order        int
	Text         string
	Normalized   string
	FileName     string
	RelativePath string
}

// Capture is a record of an insertion event. Append-only from the
// system's perspective; the destination DOCX itself may be edited
// independently by the user.
type Capture struct {
	ID                 int64
	RootID             int64
	SourcePath         string
	SectionTitle       string
	TargetRelativePath string
	HeadingLevel       int
	Content            string
	CreatedAtMs        int64
}

const defaultCaptureTarget = "BlockFile-Captures.docx"
