package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PadAudio re-encodes narration audio with silence at the head and tail so
// the voice never starts on the first frame. Output is MP3 at 192k
// regardless of the synthesis bitrate.
func PadAudio(ctx context.Context, binary, inputPath, outputPath string, padMillis int) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("audio input path is required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("audio output path is required")
	}
	if padMillis < 0 {
		padMillis = 0
	}
	return runFFmpeg(ctx, binary, "pad-audio", padAudioArgs(inputPath, outputPath, padMillis))
}

func padAudioArgs(inputPath, outputPath string, padMillis int) []string {
	pad := float64(padMillis) / 1000.0
	filter := fmt.Sprintf("adelay=%d:all=1,apad=pad_dur=%.3f", padMillis, pad)
	return []string{
		"-y",
		"-i", inputPath,
		"-af", filter,
		"-c:a", "libmp3lame", "-b:a", "192k",
		outputPath,
	}
}
