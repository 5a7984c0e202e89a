package imaging

import "fmt"

// CombineMode selects how Combine lays out its images.
type CombineMode int

const (
	Horizontal CombineMode = iota + 1
	Vertical
)

func (m CombineMode) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("CombineMode(%d)", int(m))
	}
}

// ParseCombineMode resolves a mode name. Matching is exact, as on the command line.
func ParseCombineMode(name string) (CombineMode, error) {
	switch name {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return 0, &OpError{Op: "combine", Value: name, Err: ErrInvalidMode}
	}
}

// FilterKind identifies a per-pixel color transform.
type FilterKind int

const (
	FilterGrayscale FilterKind = iota + 1
	FilterBrightness
	FilterContrast
	FilterBlur
)

var filterNames = map[FilterKind]string{
	FilterGrayscale:  "grayscale",
	FilterBrightness: "brightness",
	FilterContrast:   "contrast",
	FilterBlur:       "blur",
}

func (k FilterKind) String() string {
	if name, ok := filterNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// Filter is a resolved filter selection. Amount is the brightness or
// contrast factor, or the blur sigma; FilterGrayscale ignores it.
type Filter struct {
	Kind   FilterKind
	Amount float64
}

func (f Filter) String() string {
	if f.Kind == FilterGrayscale {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s(%g)", f.Kind, f.Amount)
}

// ParseFilter resolves a filter name together with its intensity.
//
// Accepted names are "grayscale", "brightness", "contrast" and "blur".
// The intensity is stored as Filter.Amount unchanged; grayscale ignores it.
// Any other name fails with ErrInvalidFilter wrapped in *OpError.
func ParseFilter(name string, intensity float64) (Filter, error) {
	for kind, n := range filterNames {
		if n == name {
			return Filter{Kind: kind, Amount: intensity}, nil
		}
	}
	return Filter{}, &OpError{Op: "filter", Value: name, Err: ErrInvalidFilter}
}

// ShapeKind identifies a reshape mask.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota + 1
	ShapeSquare
	ShapeRounded
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeSquare:
		return "square"
	case ShapeRounded:
		return "rounded"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is a resolved reshape selection. Radius is only used by ShapeRounded.
type Shape struct {
	Kind   ShapeKind
	Radius uint32
}

func (s Shape) String() string {
	if s.Kind == ShapeRounded {
		return fmt.Sprintf("rounded(%d)", s.Radius)
	}
	return s.Kind.String()
}

// ParseShape resolves a shape name together with its corner radius.
func ParseShape(name string, radius uint32) (Shape, error) {
	switch name {
	case "circle":
		return Shape{Kind: ShapeCircle}, nil
	case "square":
		return Shape{Kind: ShapeSquare}, nil
	case "rounded":
		return Shape{Kind: ShapeRounded, Radius: radius}, nil
	default:
		return Shape{}, &OpError{Op: "reshape", Value: name, Err: ErrInvalidShape}
	}
}
