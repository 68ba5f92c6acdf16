// Package config loads and validates the openfacts configuration.
// Configuration files are written in CUE and unified against an embedded
// schema before decoding, so structural errors surface with file and
// line positions. Decoded values are then checked with struct-tag
// validation.
package config
