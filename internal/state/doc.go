// Package state reconciles per-frame tracking results into a stable set of
// trackable behaviours. It owns the identity registry, the found queue used
// for first-target world centering, the pose reconciler, and the virtual
// button reconciler.
//
// Everything here runs on the frame thread. Nothing is safe for concurrent
// use.
package state
