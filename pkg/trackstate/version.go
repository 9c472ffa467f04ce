// Package trackstate holds module metadata and the public session
// constructor.
package trackstate

// Version is the release version of the trackstate module and CLI.
const Version = "0.3.0"
