// Package narrator implements the synthesis stage: the sermon script becomes
// narration audio through ElevenLabs, padded with head and tail silence so
// the voice never starts on the first frame.
package narrator
