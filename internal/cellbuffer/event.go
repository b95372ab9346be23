package cellbuffer

import "strings"

type EventKind int

const (
	BeforeInsert EventKind = iota
	Inserted
	BeforeDelete
	Deleted
	StyleChanged
	SavePointChanged
	ModifyAttempt
	LevelChanged
	MarkerChanged
	AnnotationChanged
	ContainerAction
)

var eventNames = [...]string{
	BeforeInsert:      "before-insert",
	Inserted:          "inserted",
	BeforeDelete:      "before-delete",
	Deleted:           "deleted",
	StyleChanged:      "style-changed",
	SavePointChanged:  "save-point-changed",
	ModifyAttempt:     "modify-attempt",
	LevelChanged:      "level-changed",
	MarkerChanged:     "marker-changed",
	AnnotationChanged: "annotation-changed",
	ContainerAction:   "container-action",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Flag describes where a modification came from.
type Flag uint

const (
	FlagUser Flag = 1 << iota
	FlagUndo
	FlagRedo
	FlagMultiStep
	FlagLastStep
	FlagMultiLine
	FlagStartAction
)

func (f Flag) String() string {
	var parts []string
	names := []string{"user", "undo", "redo", "multi-step", "last-step", "multi-line", "start-action"}
	for i, name := range names {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Event is one notification from the buffer. Which fields are meaningful
// depends on Kind:
//
//	BeforeInsert, Inserted, BeforeDelete, Deleted: Position, Length, Text, LinesAdded
//	StyleChanged: Position, Length
//	SavePointChanged: AtSavePoint
//	LevelChanged: Line, LevelNow, LevelPrev
//	MarkerChanged, AnnotationChanged: Line
//	ContainerAction: Token
type Event struct {
	Kind        EventKind
	Flags       Flag
	Position    int
	Length      int
	Text        []byte
	LinesAdded  int
	AtSavePoint bool
	Line        int
	LevelNow    int
	LevelPrev   int
	Token       int
}

// Watcher receives every event synchronously, in order.
type Watcher func(Event)
