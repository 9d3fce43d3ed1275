package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

func TestComputeCropAnchors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dim  mapgen.Dimension
		size int
		want mapgen.CropSpec
	}{
		{
			name: "overworld max size matches reference anchor",
			dim:  mapgen.DimensionOverworld,
			size: MaxSize,
			want: mapgen.CropSpec{Left: 270, Top: 165, Width: 2000, Height: 2000, OutputSize: 2000},
		},
		{
			name: "overworld min size",
			dim:  mapgen.DimensionOverworld,
			size: MinSize,
			want: mapgen.CropSpec{Left: 1208, Top: 1103, Width: 125, Height: 125, OutputSize: 125},
		},
		{
			name: "end max size matches reference anchor",
			dim:  mapgen.DimensionEnd,
			size: MaxSize,
			want: mapgen.CropSpec{Left: 270, Top: 165, Width: 2000, Height: 2000, OutputSize: 2000},
		},
		{
			name: "overworld size 8 yields 1000px output",
			dim:  mapgen.DimensionOverworld,
			size: 8,
			want: mapgen.CropSpec{Left: 770, Top: 665, Width: 1000, Height: 1000, OutputSize: 1000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ComputeCrop(tt.dim, tt.size)
			if err != nil {
				t.Fatalf("ComputeCrop() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ComputeCrop() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeCropWholeRange(t *testing.T) {
	t.Parallel()

	for size := MinSize; size <= MaxSize; size++ {
		for _, dim := range []mapgen.Dimension{mapgen.DimensionOverworld, mapgen.DimensionEnd} {
			spec, err := ComputeCrop(dim, size)
			if err != nil {
				t.Fatalf("ComputeCrop(%s, %d) error = %v", dim, size, err)
			}
			wantSide := size * 125
			if spec.Width != wantSide || spec.Height != wantSide || spec.OutputSize != wantSide {
				t.Fatalf("ComputeCrop(%s, %d) sides = %+v, want %d", dim, size, spec, wantSide)
			}
			wantLeft := int(math.Round(270 + float64(MaxSize-size)*62.5))
			if spec.Left != wantLeft {
				t.Fatalf("ComputeCrop(%s, %d) left = %d, want %d", dim, size, spec.Left, wantLeft)
			}
		}
	}
}

func TestComputeCropNetherInvariant(t *testing.T) {
	t.Parallel()

	first, err := ComputeCrop(mapgen.DimensionNether, MinSize)
	if err != nil {
		t.Fatalf("ComputeCrop() error = %v", err)
	}
	if first.Width != first.Height || first.Width != first.OutputSize {
		t.Fatalf("nether crop not square: %+v", first)
	}
	for size := MinSize; size <= MaxSize; size++ {
		spec, err := ComputeCrop(mapgen.DimensionNether, size)
		if err != nil {
			t.Fatalf("ComputeCrop(nether, %d) error = %v", size, err)
		}
		if spec != first {
			t.Fatalf("nether crop varies with size %d: %+v != %+v", size, spec, first)
		}
	}
}

func TestComputeCropRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	for _, size := range []int{MinSize - 1, 0, -3, MaxSize + 1, 100} {
		_, err := ComputeCrop(mapgen.DimensionOverworld, size)
		if !errors.Is(err, mapgen.ErrInvalidSize) {
			t.Fatalf("ComputeCrop(overworld, %d) error = %v, want ErrInvalidSize", size, err)
		}
		if !errors.Is(err, mapgen.ErrInvalidInput) {
			t.Fatalf("ErrInvalidSize should wrap ErrInvalidInput, got %v", err)
		}
	}
}

func TestValidSize(t *testing.T) {
	t.Parallel()

	if !ValidSize(MinSize) || !ValidSize(MaxSize) || !ValidSize(8) {
		t.Fatal("expected in-range sizes to be valid")
	}
	if ValidSize(MinSize-1) || ValidSize(MaxSize+1) {
		t.Fatal("expected out-of-range sizes to be invalid")
	}
}
