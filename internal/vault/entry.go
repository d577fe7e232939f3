package vault

import (
	"path"
	"strings"
	"time"
)

// EntryKind is the closed set of source-tree entry variants. Dispatch is by
// explicit switch on Kind, never by runtime type inspection.
type EntryKind string

const (
	KindDocument   EntryKind = "document"
	KindAttachment EntryKind = "attachment"
	KindDirectory  EntryKind = "directory"
)

// Stat is the structural stat block for a source file.
type Stat struct {
	Created  time.Time
	Modified time.Time
	Size     int64
}

// Entry represents one discovered vault entry. SourcePath is the
// slash-separated path relative to the vault root and is the stable identity
// used throughout the exporter.
type Entry struct {
	Kind       EntryKind
	SourcePath string
	AbsPath    string
	Name       string // file name without extension
	Extension  string // lowercased, with leading dot; empty for directories
	Stat       Stat
}

// IsDocument reports whether the entry is a renderable document.
func (e Entry) IsDocument() bool { return e.Kind == KindDocument }

// IsAttachment reports whether the entry is a non-document file.
func (e Entry) IsAttachment() bool { return e.Kind == KindAttachment }

// Dir returns the slash-separated parent directory of the entry, "" at root.
func (e Entry) Dir() string {
	d := path.Dir(e.SourcePath)
	if d == "." {
		return ""
	}
	return d
}

// documentExtensions are the extensions rendered as pages; everything else
// discovered is an attachment.
var documentExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// IsDocumentPath reports whether a path names a renderable document.
func IsDocumentPath(p string) bool {
	return documentExtensions[strings.ToLower(path.Ext(p))]
}

// classifyKind derives the entry kind from a file path.
func classifyKind(p string) EntryKind {
	if IsDocumentPath(p) {
		return KindDocument
	}
	return KindAttachment
}
