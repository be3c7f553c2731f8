package visual

import colorful "github.com/lucasb-eyer/go-colorful"

// gradientScale maps a magnitude onto the [0,1] gradient key.
const gradientScale = 50.0

// Dark blue through yellow to red, evenly spaced, defined in linear RGB.
var gradientStops = []colorful.Color{
	colorful.LinearRgb(0.0, 0.0, 0.7),
	colorful.LinearRgb(0.0, 0.0, 0.9),
	colorful.LinearRgb(0.0, 0.0, 1.0),
	colorful.LinearRgb(0.9, 0.9, 0.0),
	colorful.LinearRgb(0.9, 0.4, 0.0),
	colorful.LinearRgb(1.0, 0.0, 0.0),
}

// Gradient returns the spectrogram colour for key t, clamped to [0,1].
func Gradient(t float64) colorful.Color {
	t = max(0, min(1, t))
	pos := t * float64(len(gradientStops)-1)
	i := int(pos)
	if i >= len(gradientStops)-1 {
		return gradientStops[len(gradientStops)-1]
	}
	return gradientStops[i].BlendLinearRgb(gradientStops[i+1], pos-float64(i)).Clamped()
}
