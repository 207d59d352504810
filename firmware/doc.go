// Package firmware loads application images on the host side, either as
// raw binaries or as Intel HEX files flattened into a single contiguous
// payload.
package firmware
