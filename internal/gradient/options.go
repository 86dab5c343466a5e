package gradient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/meshgradient/internal/config"
	"github.com/Faultbox/meshgradient/pkg/math"
)

var (
	// ErrInvalidColor is returned for anything but #rgb or #rrggbb.
	ErrInvalidColor = errors.New("gradient: invalid hex color")
	// ErrColorCount is returned for fewer than MinColors or more than
	// MaxColors colors.
	ErrColorCount = errors.New("gradient: unsupported number of colors")
	// ErrColorIndex is returned by ToggleColor for an index outside the
	// active color set.
	ErrColorIndex = errors.New("gradient: color index out of range")
)

// The vertex shader needs at least one wave layer on top of the base color,
// and u_active_colors gates at most four colors.
const (
	MinColors = 2
	MaxColors = 4
)

// Options configure a Gradient.
type Options struct {
	Colors []string
	// Density is segments per pixel along x and y.
	Density   [2]float64
	Angle     float64 // radians
	Amplitude float64
	// Static renders a single frame and then stops.
	Static    bool
	Wireframe bool
	Seed      float64
	// Height fixes the drawn height and resizes the surface to it on every
	// Resize; 0 follows the surface's own height.
	Height    int
	DarkenTop bool
}

// DefaultOptions returns the stock red, green and blue gradient.
func DefaultOptions() Options {
	return Options{
		Colors:    []string{"#f00", "#0f0", "#00f"},
		Density:   [2]float64{0.06, 0.16},
		Amplitude: 320,
		Height:    600,
	}
}

// OptionsFromConfig maps the gradient config section onto Options.
func OptionsFromConfig(c config.GradientConfig) Options {
	o := DefaultOptions()
	if len(c.Colors) > 0 {
		o.Colors = append([]string(nil), c.Colors...)
	}
	if len(c.Density) == 2 {
		o.Density = [2]float64{c.Density[0], c.Density[1]}
	}
	o.Angle = c.Angle
	o.Amplitude = c.Amplitude
	o.Static = c.Static
	o.Wireframe = c.Wireframe
	o.Seed = c.Seed
	o.Height = c.Height
	o.DarkenTop = c.DarkenTop
	return o
}

// ParseColor converts #rgb or #rrggbb into normalized RGB.
func ParseColor(hex string) (math.Vec3, error) {
	s := strings.TrimSpace(hex)
	if !strings.HasPrefix(s, "#") {
		return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return math.RGB(uint8(v>>16&255), uint8(v>>8&255), uint8(v&255)), nil
}

func parseColors(hex []string) ([]math.Vec3, error) {
	var colors []math.Vec3
	for _, h := range hex {
		if h == "" {
			continue
		}
		c, err := ParseColor(h)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	if len(colors) < MinColors || len(colors) > MaxColors {
		return nil, fmt.Errorf("%w: %d", ErrColorCount, len(colors))
	}
	return colors, nil
}
