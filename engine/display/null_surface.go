package display

import "image"

// nullSurface is the surface used by the no-graphics backend. All
// presentation operations succeed without side effects.
type nullSurface struct {
	allowScreenshots bool
}

var _ Surface = &nullSurface{}

// NewNullSurface creates a surface for the no-graphics backend.
//
// Parameters:
//   - allowScreenshots: whether capture is permitted (always fails with
//     ErrNoPixels regardless, since there is nothing to read)
func NewNullSurface(allowScreenshots bool) Surface {
	return &nullSurface{allowScreenshots: allowScreenshots}
}

func (s *nullSurface) Present() error          { return nil }
func (s *nullSurface) PrepareAuxiliary() error { return nil }
func (s *nullSurface) Recreate() error         { return nil }
func (s *nullSurface) AllowsScreenshots() bool { return s.allowScreenshots }
func (s *nullSurface) Release()                {}

func (s *nullSurface) ReadPixels() (*image.RGBA, error) {
	return nil, ErrNoPixels
}
