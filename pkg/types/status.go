package types

import "fmt"

// TrackableID is the integer id assigned to a trackable by the tracking
// backend. It is stable for the lifetime of a loaded data set but may be
// reused after the data set is unloaded and reloaded.
type TrackableID int32

// NoTrackable marks the absence of a trackable, e.g. when no world center
// anchor is selected for a frame.
const NoTrackable TrackableID = -1

// Status is the per-frame tracking classification of a trackable or word.
// The numeric values are part of the frame protocol.
type Status int32

// Status values as encoded on the wire.
const (
	StatusNotFound  Status = -1
	StatusUnknown   Status = 0
	StatusUndefined Status = 1
	StatusDetected  Status = 2
	StatusTracked   Status = 3
)

// Visible reports whether the status counts as currently seen
// (DETECTED or TRACKED).
func (s Status) Visible() bool {
	return s == StatusDetected || s == StatusTracked
}

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusUnknown:
		return "UNKNOWN"
	case StatusUndefined:
		return "UNDEFINED"
	case StatusDetected:
		return "DETECTED"
	case StatusTracked:
		return "TRACKED"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// ParseStatus parses the names returned by Status.String.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "NOT_FOUND":
		return StatusNotFound, nil
	case "UNKNOWN", "":
		return StatusUnknown, nil
	case "UNDEFINED":
		return StatusUndefined, nil
	case "DETECTED":
		return StatusDetected, nil
	case "TRACKED":
		return StatusTracked, nil
	default:
		return StatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatus, name)
	}
}

// TrackableType classifies the real-world object a trackable represents.
type TrackableType int

// Trackable types.
const (
	TypeUnknown TrackableType = iota
	TypeImageTarget
	TypeMultiTarget
	TypeCylinderTarget
	TypeMarker
	TypeWord
)

var trackableTypeNames = map[TrackableType]string{
	TypeUnknown:        "unknown",
	TypeImageTarget:    "image",
	TypeMultiTarget:    "multi",
	TypeCylinderTarget: "cylinder",
	TypeMarker:         "marker",
	TypeWord:           "word",
}

func (t TrackableType) String() string {
	if name, ok := trackableTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TrackableType(%d)", int(t))
}

// TrackerKind selects one of the backend's trackers.
type TrackerKind int

// Tracker kinds. Image trackers handle image, multi, and cylinder targets.
const (
	TrackerImage TrackerKind = iota
	TrackerMarker
	TrackerText
)

func (k TrackerKind) String() string {
	switch k {
	case TrackerImage:
		return "image"
	case TrackerMarker:
		return "marker"
	case TrackerText:
		return "text"
	default:
		return fmt.Sprintf("TrackerKind(%d)", int(k))
	}
}

// Handles reports whether trackables of type t are produced by this tracker.
func (k TrackerKind) Handles(t TrackableType) bool {
	switch k {
	case TrackerImage:
		return t == TypeImageTarget || t == TypeMultiTarget || t == TypeCylinderTarget
	case TrackerMarker:
		return t == TypeMarker
	case TrackerText:
		return t == TypeWord
	default:
		return false
	}
}
