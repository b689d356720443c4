package models

import "strings"

// ChangeType is the single-letter status of a staged path.
type ChangeType string

// Change types as reported by git's name-status output.
const (
	ChangeAdded    ChangeType = "A"
	ChangeModified ChangeType = "M"
	ChangeDeleted  ChangeType = "D"
	ChangeRenamed  ChangeType = "R"
	ChangeCopied   ChangeType = "C"
)

// String returns a human readable label.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	case ChangeCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// DiffSummary describes the staged changes of a repository.
type DiffSummary struct {
	Files       []string
	ChangeTypes map[string]ChangeType
	Additions   int
	Deletions   int
	Text        string
}

// IsEmpty reports whether nothing is staged.
func (d *DiffSummary) IsEmpty() bool {
	return d == nil || (len(d.Files) == 0 && strings.TrimSpace(d.Text) == "")
}

// ChangeType returns the change type of path, defaulting to modified.
func (d *DiffSummary) ChangeType(path string) ChangeType {
	if t, ok := d.ChangeTypes[path]; ok {
		return t
	}
	return ChangeModified
}
