package render

import (
	"math"
	"testing"
)

func TestBuildPlanCoversNarration(t *testing.T) {
	images := []string{"a.png", "b.png", "c.png"}
	plan := BuildPlan(120, 8, images, 4, 12)

	if plan.IntroSeconds != 8 {
		t.Fatalf("intro = %f", plan.IntroSeconds)
	}
	if len(plan.Slides) == 0 {
		t.Fatal("expected slides")
	}
	if math.Abs(plan.TotalSeconds()-120) > 0.01 {
		t.Fatalf("total = %f, want 120", plan.TotalSeconds())
	}

	for i, slide := range plan.Slides[:len(plan.Slides)-1] {
		if slide.Seconds < 4 || slide.Seconds > 12 {
			t.Fatalf("slide %d duration %f outside bounds", i, slide.Seconds)
		}
	}
	tail := plan.Slides[len(plan.Slides)-1]
	if tail.Seconds < 1 {
		t.Fatalf("tail duration %f < 1", tail.Seconds)
	}
}

func TestBuildPlanCyclesImagesAndModes(t *testing.T) {
	images := []string{"a.png", "b.png"}
	plan := BuildPlan(300, 8, images, 4, 12)

	if len(plan.Slides) < 6 {
		t.Fatalf("expected many slides, got %d", len(plan.Slides))
	}
	for i, slide := range plan.Slides {
		if slide.Image != images[i%2] {
			t.Fatalf("slide %d image %q, want %q", i, slide.Image, images[i%2])
		}
		if slide.Mode != PanMode(i%5) {
			t.Fatalf("slide %d mode %d, want %d", i, slide.Mode, i%5)
		}
	}
}

func TestBuildPlanShrinksIntroForShortAudio(t *testing.T) {
	plan := BuildPlan(9, 8, []string{"a.png"}, 4, 12)
	// 20% of 9s is below the floor, so the intro clamps to 2s.
	if plan.IntroSeconds != 2 {
		t.Fatalf("intro = %f, want 2", plan.IntroSeconds)
	}
}

func TestBuildPlanNoImages(t *testing.T) {
	plan := BuildPlan(60, 8, nil, 4, 12)
	if len(plan.Slides) != 0 {
		t.Fatalf("expected no slides, got %d", len(plan.Slides))
	}
}
