package gputest

// Surface is an in-memory drawable surface.
type Surface struct {
	Width, Height int
	Resizes       int
}

// Size returns the current surface size.
func (s *Surface) Size() (int, int) {
	return s.Width, s.Height
}

// SetSize records the new size.
func (s *Surface) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	s.Resizes++
}
