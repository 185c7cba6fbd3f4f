// Package renderer implements the video assembly stage. In local mode the
// narration becomes a Ken Burns slideshow via ffmpeg; in handoff mode the
// stage prepares a Canva Bulk Create bundle and routes the item to manual
// review instead.
package renderer
