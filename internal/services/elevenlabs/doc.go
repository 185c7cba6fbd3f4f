// Package elevenlabs synthesizes sermon narration through the ElevenLabs
// text-to-speech API.
//
// The client posts the full script text to the voice's text-to-speech
// endpoint and streams the MP3 response to disk. Output format negotiation
// walks a fixed quality ladder: accounts on restricted tiers reject the
// higher bitrates with an output_format_not_allowed error, and the client
// retries with the next lower format until one succeeds.
package elevenlabs
