// Package wire encodes and decodes the binary frame protocol exchanged with a
// tracking backend.
//
// A frame is a little-endian, packed byte buffer. It starts with a 32-byte
// header and is followed by five sections whose entry counts appear in the
// header:
//
//	offset size field
//	0      4    magic "TSFR"
//	4      2    version (uint16, currently 1)
//	6      2    reserved
//	8      4    frame index (int32)
//	12     4    trackable result count
//	16     4    virtual button count
//	20     4    new word count
//	24     4    word result count
//	28     4    image count
//
// Pose (28 bytes): position x,y,z then orientation x,y,z,w, all float32.
//
// Trackable result (36 bytes): pose, status int32, id int32.
//
// Virtual button (8 bytes): id int32, pressed int32 (0 or 1).
//
// New word (14 bytes + string): id int32, size x,y float32, length uint16 in
// UTF-16 code units, then the UTF-16LE string.
//
// Word result (56 bytes): pose, status int32, id int32, oriented box center
// x,y, half extents x,y, rotation, all float32.
//
// Image (36 bytes + payload): width, height, stride, buffer width, buffer
// height, pixel format, reallocate flag, updated flag, payload length (int32
// each), then the payload bytes.
//
// A buffer whose length disagrees with its counts, including trailing bytes,
// is malformed.
package wire
