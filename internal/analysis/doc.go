// Package analysis extracts the rhythmic and structural features the shot
// planner consumes: duration, tempo, beat grid, section layout, and a
// short-time energy curve, with graceful degradation to a synthetic grid when
// precise beat detection is unavailable.
package analysis
