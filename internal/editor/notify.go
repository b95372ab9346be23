package editor

// NotificationKind names what a Notification reports.
type NotificationKind int

const (
	NotifyTextInserted NotificationKind = iota
	NotifyTextDeleted
	NotifySavePointReached
	NotifySavePointLeft
	NotifyModifyAttempt
	NotifySelectionChanged
	NotifyUpdateUI
	NotifyStyleNeeded
	NotifyCharAdded
	NotifyFoldChanged
	NotifyInvalidate
	NotifyRedrawAll
	NotifyMarkerChanged
	NotifyAutoCSelection
	NotifyAutoCCancelled
	NotifyAutoCCharDeleted
	NotifyCallTipClick
	NotifyContainerUndo
)

var notificationNames = [...]string{
	NotifyTextInserted:     "text-inserted",
	NotifyTextDeleted:      "text-deleted",
	NotifySavePointReached: "save-point-reached",
	NotifySavePointLeft:    "save-point-left",
	NotifyModifyAttempt:    "modify-attempt",
	NotifySelectionChanged: "selection-changed",
	NotifyUpdateUI:         "update-ui",
	NotifyStyleNeeded:      "style-needed",
	NotifyCharAdded:        "char-added",
	NotifyFoldChanged:      "fold-changed",
	NotifyInvalidate:       "invalidate",
	NotifyRedrawAll:        "redraw-all",
	NotifyMarkerChanged:    "marker-changed",
	NotifyAutoCSelection:   "autoc-selection",
	NotifyAutoCCancelled:   "autoc-cancelled",
	NotifyAutoCCharDeleted: "autoc-char-deleted",
	NotifyCallTipClick:     "calltip-click",
	NotifyContainerUndo:    "container-undo",
}

func (k NotificationKind) String() string {
	if int(k) < len(notificationNames) {
		return notificationNames[k]
	}
	return "unknown"
}

// UpdateFlags tells the host what changed since the last UpdateUI.
type UpdateFlags uint

const (
	UpdateContent UpdateFlags = 1 << iota
	UpdateSelection
	UpdateVScroll
	UpdateHScroll
)

// Notification is sent to the host. Fields are used per kind:
//
//	TextInserted: Pos, Len, Text, LinesAdded, Undo, Redo
//	TextDeleted: Pos, Len, Text, LinesAdded, Undo, Redo
//	UpdateUI: Flags
//	StyleNeeded: Pos (style up to here)
//	CharAdded: Ch
//	FoldChanged, MarkerChanged: Line (-1 for all lines)
//	Invalidate: Pos, End
//	AutoCSelection: Pos (start of the word), Text, Ch (fill-up character or 0)
//	CallTipClick: Direction (1 up arrow, 2 down arrow, 0 elsewhere)
//	ContainerUndo: Token, Undo, Redo
type Notification struct {
	Kind       NotificationKind
	Pos        int
	End        int
	Len        int
	Text       string
	LinesAdded int
	Undo       bool
	Redo       bool
	Flags      UpdateFlags
	Ch         rune
	Line       int
	Direction  int
	Token      int
}

// NotificationSink receives every notification synchronously.
type NotificationSink func(Notification)
