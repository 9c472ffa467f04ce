// Package types defines the entity types, the tracking backend capability,
// observer interfaces, configuration, and standard errors shared by the
// trackstate packages.
//
// Trackables, words, and virtual buttons are identified by the integer ids
// assigned by the tracking backend. Ids are stable for the lifetime of a
// loaded data set only.
package types
