// Package media wraps ffmpeg and ffprobe for clip composition, override
// normalization, silence padding, concatenation, and duration probing.
package media
