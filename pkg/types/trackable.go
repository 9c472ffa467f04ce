package types

// Trackable describes a real-world object the backend can detect. The
// descriptor comes from a loaded data set (or a marker definition) and does
// not change frame to frame.
type Trackable struct {
	ID   TrackableID
	Name string
	Type TrackableType

	// VirtualButtons lists the buttons defined on an image target.
	// Empty for every other type.
	VirtualButtons []VirtualButton
}

// VirtualButton describes a virtual button on an image target.
type VirtualButton struct {
	ID   TrackableID
	Name string
}

// DataSet is a set of trackables loaded together. Trackable ids are unique
// within a data set while it is loaded.
type DataSet struct {
	Path       string
	Trackables []Trackable
}

// Contains reports whether the data set defines a trackable with the given id.
func (d DataSet) Contains(id TrackableID) bool {
	for _, t := range d.Trackables {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Origin records who created an identity-registry binding.
type Origin int

// Binding origins. User-authored bindings are never replaced implicitly;
// auto-created placeholders are.
const (
	OriginUserAuthored Origin = iota
	OriginAutoCreated
)

func (o Origin) String() string {
	if o == OriginAutoCreated {
		return "auto"
	}
	return "user"
}

// TrackableResult is one trackable's camera-relative pose and status for a
// single frame.
type TrackableResult struct {
	ID     TrackableID
	Pose   Pose
	Status Status
}

// VirtualButtonResult is one virtual button's state for a single frame.
type VirtualButtonResult struct {
	ID      TrackableID
	Pressed bool
}
