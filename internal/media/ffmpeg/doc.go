// Package ffmpeg wraps the ffmpeg command line tool with one function per
// assembly operation: clip normalization, demuxer concatenation, looped
// muxing, and preview generation.
package ffmpeg
