package render

import "fmt"

// PanMode selects the camera motion for one slide. Zoom stays fixed for the
// whole clip; only the pan direction varies.
type PanMode int

const (
	PanRight PanMode = iota
	PanDiagUpRight
	PanDiagDownRight
	PanDiagUpLeft
	PanDiagDownLeft

	panModeCount = 5
)

// panModeFor cycles through the motion patterns per slide index.
func panModeFor(index int) PanMode {
	return PanMode(index % panModeCount)
}

// scaleToCover returns a filter clause scaling any input to cover the output
// frame, cropping the overflow. Portable across ffmpeg builds without
// force_original_aspect_ratio.
func scaleToCover(width, height int) string {
	ratio := fmt.Sprintf("%d/%d", width, height)
	return fmt.Sprintf(
		"scale=w='if(gt(a,%s),%d*a,%d)':h='if(gt(a,%s),%d,%d/a)',crop=%d:%d,setsar=1",
		ratio, height, width, ratio, height, width, width, height)
}

// zoompanExprs returns the zoom, x, and y expressions for a zoompan filter.
// The zoom factor is a constant literal; the pan is a linear interpolation
// between integer anchors so the motion never jitters on subpixel rounding.
func zoompanExprs(frames int, mode PanMode, zoom float64) (zoomExpr, xExpr, yExpr string) {
	framesM1 := frames - 1
	if framesM1 < 1 {
		framesM1 = 1
	}
	t := fmt.Sprintf("(on/%d)", framesM1)
	zoomExpr = fmt.Sprintf("%.5f", zoom)

	// Feasible pan spans at the fixed zoom, quantized to integers.
	xspan := fmt.Sprintf("floor(max(iw-(ow/%s),0))", zoomExpr)
	yspan := fmt.Sprintf("floor(max(ih-(oh/%s),0))", zoomExpr)
	ymid := fmt.Sprintf("round(%s/2)", yspan)

	lerp := func(a, b string) string {
		return fmt.Sprintf("round((%s)*(1-%s)+(%s)*%s)", a, t, b, t)
	}

	switch mode {
	case PanRight:
		xExpr = lerp("0", xspan)
		yExpr = ymid
	case PanDiagUpRight:
		xExpr = lerp("0", xspan)
		yExpr = lerp(yspan, "0")
	case PanDiagDownRight:
		xExpr = lerp("0", xspan)
		yExpr = lerp("0", yspan)
	case PanDiagUpLeft:
		xExpr = lerp(xspan, "0")
		yExpr = lerp(yspan, "0")
	default:
		xExpr = lerp(xspan, "0")
		yExpr = lerp("0", yspan)
	}
	return zoomExpr, xExpr, yExpr
}
