// Package aubio wraps the optional aubio command line tool for beat and
// tempo detection. Callers degrade to a synthetic beat grid when the tool is
// unavailable.
package aubio
