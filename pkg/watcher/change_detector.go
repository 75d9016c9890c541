package watcher

import "github.com/fsnotify/fsnotify"

// ChangeType represents the kind of change seen on the data file
type ChangeType int

const (
	ChangeTypeWrite ChangeType = iota
	ChangeTypeRemove
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeWrite:
		return "write"
	case ChangeTypeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Classify maps an fsnotify operation onto a change type. Chmod alone does
// not alter content and is ignored.
func Classify(op fsnotify.Op) (ChangeType, bool) {
	switch {
	case op.Has(fsnotify.Write), op.Has(fsnotify.Create):
		return ChangeTypeWrite, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		// an atomic save renames over the file; the Create that follows
		// is what carries the new content
		return ChangeTypeRemove, true
	default:
		return 0, false
	}
}

// NeedsReload reports whether an event should make the store re-read its
// data. A removed file is not reloaded: the store keeps what it has in memory
// and writes it back on the next save.
func NeedsReload(event ChangeEvent) bool {
	return event.Type == ChangeTypeWrite
}
