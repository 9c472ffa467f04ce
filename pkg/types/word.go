package types

// Word is a recognized piece of text. Word identity is transient: the
// backend assigns a new id every time it starts tracking a word instance.
type Word struct {
	ID          TrackableID
	StringValue string
	// Size is the extent of the word in scene units.
	Size Vec2
}

// WordResult carries the per-frame state of a tracked word.
type WordResult struct {
	Word   Word
	Pose   Pose // world space
	Status Status
	Obb    Obb2D // camera-frame coordinates
}

// NewWordData is a word reported as newly detected in a frame.
type NewWordData struct {
	ID          TrackableID
	StringValue string
	Size        Vec2
}

// WordResultData is a raw, camera-relative word result for a frame.
type WordResultData struct {
	ID     TrackableID
	Pose   Pose
	Status Status
	Obb    Obb2D
}
