// Package geometry maps a requested world size to the pixel window that
// must be cut from a full-page capture. It is pure: same inputs, same
// rectangle, no side effects.
package geometry

import (
	"fmt"
	"math"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

// Supported world-size range, inclusive.
const (
	MinSize = 1
	MaxSize = 16
)

const (
	// unit is how far each crop edge moves per size step. It is half of
	// pixelsPerUnit, which keeps the window centered on the map origin as
	// it shrinks.
	unit          = 62.5
	pixelsPerUnit = 125

	// Reference anchor: the crop for MaxSize on the upstream page layout.
	baseLeft = 270
	baseTop  = 165
)

// Nether renders at a fixed zoom upstream, so its window does not scale
// with the requested size.
var netherCrop = mapgen.CropSpec{
	Left:       560,
	Top:        240,
	Width:      1100,
	Height:     1100,
	OutputSize: 1100,
}

// ComputeCrop returns the crop window and output resolution for a
// dimension and world size. Size must be within [MinSize, MaxSize].
func ComputeCrop(dim mapgen.Dimension, size int) (mapgen.CropSpec, error) {
	if size < MinSize || size > MaxSize {
		return mapgen.CropSpec{}, fmt.Errorf("%w: %d not in [%d, %d]",
			mapgen.ErrInvalidSize, size, MinSize, MaxSize)
	}

	if dim == mapgen.DimensionNether {
		return netherCrop, nil
	}

	side := size * pixelsPerUnit
	steps := float64(MaxSize - size)
	return mapgen.CropSpec{
		Left:       int(math.Round(baseLeft + steps*unit)),
		Top:        int(math.Round(baseTop + steps*unit)),
		Width:      side,
		Height:     side,
		OutputSize: side,
	}, nil
}

// ValidSize reports whether size falls in the supported range.
func ValidSize(size int) bool {
	return size >= MinSize && size <= MaxSize
}
