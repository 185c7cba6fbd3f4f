// Package render assembles the daily sermon video with ffmpeg.
//
// The pipeline is deliberately boring: every clip is encoded with identical
// codec parameters, the clips are joined with the concat demuxer's stream
// copy, and the narration track is muxed last with -shortest so the audio
// dictates the final duration. Slides use a fixed-zoom Ken Burns effect,
// cycling five pan directions; the intro is a static title card rendered
// from a lavfi color source with drawtext.
package render
