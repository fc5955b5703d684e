package inkpack

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Metric selects the distance function used to rank palette entries.
// The metrics are not numerically interchangeable and may pick different
// entries for the same input.
type Metric int

const (
	// Squared is the plain sum of squared RGB differences. It is the default
	// for palette quantization.
	Squared Metric = iota
	// Perceptual is the red-mean weighted RGB distance.
	Perceptual
	// Lab is the euclidean distance in CIE L*a*b* space.
	Lab
)

func (m Metric) String() string {
	switch m {
	case Squared:
		return "squared"
	case Perceptual:
		return "perceptual"
	case Lab:
		return "lab"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric maps a metric name to a Metric. The empty string selects Squared.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "", "squared":
		return Squared, nil
	case "perceptual", "redmean":
		return Perceptual, nil
	case "lab":
		return Lab, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Distance returns the red-mean weighted distance between a and b.
// Alpha is ignored.
func Distance(a, b color.RGBA) float64 {
	rm := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt((2+rm/256)*dr*dr + 4*dg*dg + (2+(255-rm)/256)*db*db)
}

// DistanceSquared returns the sum of squared RGB differences. Alpha is ignored.
func DistanceSquared(a, b color.RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// DistanceLab returns the CIE76 distance between a and b. Alpha is ignored.
func DistanceLab(a, b color.RGBA) float64 {
	return toColorful(a).DistanceLab(toColorful(b))
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Nearest returns the index of the palette entry closest to c under m.
// Ties resolve to the lowest index. An empty palette returns -1.
func Nearest(c color.RGBA, p Palette, m Metric) int {
	best := -1
	switch m {
	case Squared:
		bestDist := math.MaxInt
		for i, e := range p {
			if d := DistanceSquared(c, e); d < bestDist {
				bestDist = d
				best = i
			}
		}
	default:
		dist := Distance
		if m == Lab {
			dist = DistanceLab
		}
		bestDist := math.Inf(1)
		for i, e := range p {
			if d := dist(c, e); d < bestDist {
				bestDist = d
				best = i
			}
		}
	}
	return best
}
