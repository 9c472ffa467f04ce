package state

import (
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// ReconcileButtons applies one frame of virtual button results. Only enabled
// buttons on enabled image-target behaviours are considered; a considered
// button missing from results counts as released. changed is called once per
// press or release edge.
func ReconcileButtons(behaviours []*TrackableBehaviour, results []types.VirtualButtonResult, changed func(id types.TrackableID, pressed bool)) {
	pressed := make(map[types.TrackableID]bool, len(results))
	for _, r := range results {
		pressed[r.ID] = r.Pressed
	}
	for _, b := range behaviours {
		if !b.Enabled || b.Trackable.Type != types.TypeImageTarget {
			continue
		}
		for _, vb := range b.buttons {
			if !vb.Enabled {
				continue
			}
			if vb.setPressed(pressed[vb.Button.ID]) && changed != nil {
				changed(vb.Button.ID, vb.pressed)
			}
		}
	}
}
