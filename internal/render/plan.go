package render

// Slide is one Ken Burns clip in the timing plan.
type Slide struct {
	Image   string
	Seconds float64
	Mode    PanMode
}

// Plan describes the full video timeline before any ffmpeg work runs. The
// narration audio dictates the total duration.
type Plan struct {
	IntroSeconds float64
	Slides       []Slide
}

// TotalSeconds returns the planned video length.
func (p Plan) TotalSeconds() float64 {
	total := p.IntroSeconds
	for _, slide := range p.Slides {
		total += slide.Seconds
	}
	return total
}

// BuildPlan splits the narration duration into an intro still followed by
// panning slides. Slides cycle the image list with durations bounded by
// minSlide/maxSlide; the tail slide absorbs the exact leftover so the video
// never runs short of the audio.
func BuildPlan(totalSeconds, introSeconds float64, images []string, minSlide, maxSlide float64) Plan {
	if totalSeconds < 1 {
		totalSeconds = 1
	}
	// Short narrations shrink the intro to at most a fifth of the video.
	if totalSeconds < introSeconds+3 {
		introSeconds = totalSeconds * 0.20
		if introSeconds < 2 {
			introSeconds = 2
		}
	}

	remaining := totalSeconds - introSeconds
	if remaining < 0.1 {
		remaining = 0.1
	}

	imageCount := len(images)
	if imageCount == 0 {
		return Plan{IntroSeconds: introSeconds}
	}

	ideal := remaining / float64(imageCount)
	if ideal < minSlide {
		ideal = minSlide
	}
	if ideal > maxSlide {
		ideal = maxSlide
	}

	plan := Plan{IntroSeconds: introSeconds}
	accumulated := 0.0
	index := 0
	for accumulated+ideal < remaining-0.25 {
		plan.Slides = append(plan.Slides, Slide{
			Image:   images[index%imageCount],
			Seconds: ideal,
			Mode:    panModeFor(index),
		})
		accumulated += ideal
		index++
	}

	tail := remaining - accumulated
	if tail < 1 {
		tail = 1
	}
	plan.Slides = append(plan.Slides, Slide{
		Image:   images[index%imageCount],
		Seconds: tail,
		Mode:    panModeFor(index),
	})
	return plan
}
