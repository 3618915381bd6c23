// Package assemble normalizes the best take per shot, concatenates the clips
// in shot order, and muxes the result against the source audio track.
package assemble
