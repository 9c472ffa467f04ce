package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/trackstate/internal/session"
	"github.com/mesh-intelligence/trackstate/internal/sqlite"
	"github.com/mesh-intelligence/trackstate/internal/wire"
	"github.com/mesh-intelligence/trackstate/pkg/trackstate"
	"github.com/mesh-intelligence/trackstate/pkg/types"
)

// replayResult is the summary printed after a replay.
type replayResult struct {
	CaptureID      string `json:"capture_id"`
	Frames         uint64 `json:"frames"`
	DroppedFrames  uint64 `json:"dropped_frames"`
	LastFrameIndex int32  `json:"last_frame_index"`
	Trackables     int    `json:"trackables"`
	Events         int    `json:"events"`
}

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var (
		worldCenter   string
		worldCenterID int32
		noJournal     bool
	)
	cmd := &cobra.Command{
		Use:   "replay CAPTURE_ID",
		Short: "Replay a capture through the state reconcilers",
		Long: "Replay plays every stored frame of a capture through a session on the\n" +
			"replay backend and journals status, button, word, and camera events.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, st, err := attachStore(cmd, flags)
			if err != nil {
				return err
			}
			defer store.Detach()

			cfg := st.config
			cfg.Backend = types.BackendReplay
			cfg.CaptureID = args[0]
			if cmd.Flags().Changed("world-center") {
				cfg.WorldCenterMode = types.WorldCenterMode(worldCenter)
			}
			if cmd.Flags().Changed("world-center-id") {
				cfg.WorldCenterID = types.TrackableID(worldCenterID)
			}
			if err := cfg.Validate(); err != nil {
				return userError("%s", err)
			}

			res, err := runReplay(cmd, store, cfg, !noJournal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "replayed %d frames of %s (%d dropped, last index %d)\n",
				res.Frames, res.CaptureID, res.DroppedFrames, res.LastFrameIndex)
			fmt.Fprintf(out, "trackables: %d\nevents:     %d\n", res.Trackables, res.Events)
			return nil
		},
	}
	cmd.Flags().StringVar(&worldCenter, "world-center", "", "world center mode: camera, first_target, or specific_target")
	cmd.Flags().Int32Var(&worldCenterID, "world-center-id", int32(types.NoTrackable), "anchor trackable for specific_target mode")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not record events")
	return cmd
}

func runReplay(cmd *cobra.Command, store *sqlite.Store, cfg types.Config, journal bool) (replayResult, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	frames, err := store.Frames(ctx, cfg.CaptureID)
	if err != nil {
		return replayResult{}, storeError("load capture", err)
	}
	ds := dataSetFromFrames(cfg.CaptureID, frames)

	var opts []session.Option
	opts = append(opts, session.WithLogger(logger))
	var j *sqlite.Journal
	if journal {
		if _, err := store.ClearEvents(ctx, cfg.CaptureID); err != nil {
			return replayResult{}, storeError("clear events", err)
		}
		j = sqlite.NewJournal(ctx, store, cfg.CaptureID)
		opts = append(opts, session.WithObserver(j))
	}

	sess, err := trackstate.NewSession(cfg, store, opts...)
	if err != nil {
		return replayResult{}, userError("create session: %s", err)
	}
	if _, err := sess.AssociateDataSet(ds, nil); err != nil {
		return replayResult{}, sysError("associate data set: %s", err)
	}
	if err := sess.Start(ctx); err != nil {
		return replayResult{}, sysError("start session: %s", err)
	}
	for _, kind := range []types.TrackerKind{types.TrackerImage, types.TrackerMarker, types.TrackerText} {
		sess.StartTracker(kind)
	}

	runErr := sess.Run(ctx)
	if err := sess.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return replayResult{}, sysError("replay: %s", runErr)
	}

	stats := sess.Stats()
	res := replayResult{
		CaptureID:      cfg.CaptureID,
		Frames:         stats.Frames,
		DroppedFrames:  stats.DroppedFrames,
		LastFrameIndex: stats.LastFrameIndex,
		Trackables:     len(ds.Trackables),
	}
	if j != nil {
		if err := j.Err(); err != nil {
			return res, sysError("journal: %s", err)
		}
		res.Events = j.Recorded()
	}
	return res, nil
}

// dataSetFromFrames builds a data set covering every trackable id reported
// in frames. Captures carry no descriptors, so each trackable is treated as
// an image target named after its id. Undecodable frames are skipped; the
// session drops them again during replay.
func dataSetFromFrames(captureID string, frames [][]byte) types.DataSet {
	seen := make(map[types.TrackableID]bool)
	for _, buf := range frames {
		f, err := wire.Decode(buf)
		if err != nil {
			continue
		}
		for _, r := range f.Trackables {
			seen[r.ID] = true
		}
	}
	ids := make([]types.TrackableID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	ds := types.DataSet{Path: "capture:" + captureID}
	for _, id := range ids {
		ds.Trackables = append(ds.Trackables, types.Trackable{
			ID:   id,
			Name: fmt.Sprintf("trackable-%d", id),
			Type: types.TypeImageTarget,
		})
	}
	return ds
}
