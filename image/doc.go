// Package image defines the firmware image header layout and the validator
// that gates every transfer of control to application code.
package image
