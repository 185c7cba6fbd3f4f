package render

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	cardBackground = "0x121212"
	cardTitleColor = "0xEBEBEB"
	cardAccent     = "0x78B4FF"
	cardFooter     = "0xB4B4B4"
)

// TitleCard describes the opening frame of the video and the handoff PNG.
type TitleCard struct {
	Title    string
	Subtitle string
	Brand    string
	Date     time.Time
	FontPath string
	Width    int
	Height   int
}

// WriteTitleCard renders the card to a PNG via ffmpeg's lavfi color source
// plus drawtext. The same image doubles as the intro still and the Canva
// handoff background.
func (r *Renderer) WriteTitleCard(ctx context.Context, card TitleCard, outputPath string) error {
	args := titleCardArgs(card, outputPath)
	return runFFmpeg(ctx, r.cfg.FFmpegBinary(), "title-card", args)
}

func titleCardArgs(card TitleCard, outputPath string) []string {
	var filters []string
	filters = append(filters, drawText(card.FontPath, card.Title, 72, cardTitleColor,
		"(w-text_w)/2", "h/2-text_h-20"))
	if strings.TrimSpace(card.Subtitle) != "" {
		filters = append(filters, drawText(card.FontPath, card.Subtitle, 40, cardAccent,
			"(w-text_w)/2", "h/2+30"))
	}
	footer := card.Brand
	if !card.Date.IsZero() {
		footer = fmt.Sprintf("%s • %s", card.Brand, card.Date.Format("2006-01-02"))
	}
	if strings.TrimSpace(footer) != "" {
		filters = append(filters, drawText(card.FontPath, footer, 28, cardFooter,
			"w-text_w-40", "h-80"))
	}

	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d", cardBackground, card.Width, card.Height),
		"-vf", strings.Join(filters, ","),
		"-frames:v", "1",
		outputPath,
	}
}

func drawText(fontPath, text string, size int, color, x, y string) string {
	parts := []string{
		fmt.Sprintf("text='%s'", escapeDrawText(text)),
		fmt.Sprintf("fontsize=%d", size),
		"fontcolor=" + color,
		"x=" + x,
		"y=" + y,
	}
	if strings.TrimSpace(fontPath) != "" {
		parts = append([]string{"fontfile=" + escapeDrawText(fontPath)}, parts...)
	}
	return "drawtext=" + strings.Join(parts, ":")
}

// escapeDrawText escapes the characters drawtext treats specially inside a
// single-quoted text value.
func escapeDrawText(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
