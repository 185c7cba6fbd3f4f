// Package publisher implements the final stage: uploading the rendered video
// to YouTube when enabled and filing the local copy into the library.
package publisher
