// Package engine builds the finger-jointed panels of a tabbed box: the tab
// count solve, the per-edge notch lines, four-edge panels and the six-panel
// layout.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/TabBox/internal/geometry"
)

// ErrInvalidConfiguration reports box parameters that cannot produce a
// buildable box (non-positive sizes, dimensions too small to carry a tab).
var ErrInvalidConfiguration = errors.New("invalid box configuration")

// minSegmentsPerTab is the smallest dimension, in material thicknesses, that
// can carry a single tab: slot, tab, slot each at least one thickness long.
const minSegmentsPerTab = 3.0

// MaxTabs bounds the tab count of a single dimension. Larger solves are
// rejected rather than emitting millions of notch lines.
const MaxTabs = 1000

// CalcTabNumAndLength picks an odd number of tabs for a dimension and the
// length of each of the 2*tabs+1 segments spanning it.
//
// Tabs are spaced roughly every 3 thicknesses when that gives at least 3 tabs,
// otherwise every 2 thicknesses. Dimensions for which neither rule yields a
// tab fall back to a single tab as long as each segment stays at least one
// thickness long.
func CalcTabNumAndLength(dim, thickness geometry.Dim) (int, geometry.Dim, error) {
	if !(thickness.Dist > 0) {
		return 0, geometry.Dim{}, fmt.Errorf("%w: thickness must be positive, got %g",
			ErrInvalidConfiguration, thickness.Dist)
	}
	if !(dim.Dist > 0) {
		return 0, geometry.Dim{}, fmt.Errorf("%w: dimension must be positive, got %g",
			ErrInvalidConfiguration, dim.Dist)
	}

	ratio := dim.Dist / thickness.Dist
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio > 6*(MaxTabs+1) {
		return 0, geometry.Dim{}, fmt.Errorf("%w: dimension %g is too large for thickness %g (max %d tabs)",
			ErrInvalidConfiguration, dim.Dist, thickness.Dist, MaxTabs)
	}
	tabs := oddTabsFor(ratio, 3)
	if tabs < 3 {
		tabs = oddTabsFor(ratio, 2)
	}
	if tabs < 1 {
		if ratio < minSegmentsPerTab {
			return 0, geometry.Dim{}, fmt.Errorf("%w: dimension %g is under %g thicknesses of %g",
				ErrInvalidConfiguration, dim.Dist, minSegmentsPerTab, thickness.Dist)
		}
		tabs = 1
	}
	if tabs > MaxTabs {
		return 0, geometry.Dim{}, fmt.Errorf("%w: %d tabs exceeds the maximum of %d",
			ErrInvalidConfiguration, tabs, MaxTabs)
	}
	return tabs, dim.Div(float64(2*tabs + 1)), nil
}

// oddTabsFor rounds the tab count for segments of k thicknesses down to the
// nearest odd number. The result may be negative for tiny ratios.
func oddTabsFor(ratio, k float64) int {
	segments := int(math.Floor(ratio / k))
	tabs := floorDiv(segments-1, 2)
	if tabs%2 == 0 {
		tabs--
	}
	return tabs
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
