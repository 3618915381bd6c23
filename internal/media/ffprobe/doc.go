// Package ffprobe wraps the ffprobe command line tool for container
// inspection, frame counting, and short-time loudness sampling.
package ffprobe
