package exprgen

// Frame is one Any(...) quantifier opened over a collection.
type Frame struct {
	// Collection is the collection reference as written in the enclosing scope.
	Collection string

	// Index is the frame's depth, 0 for the outermost.
	Index int
}

// Scope is the stack of quantifier frames open at a point of generation.
// Total is the number of frames the field's expression will open in all.
type Scope struct {
	Total  int
	frames []Frame
}

// NewScope creates an empty scope for an expression with total frames.
func NewScope(total int) *Scope {
	return &Scope{Total: total, frames: make([]Frame, 0, total)}
}

// Push opens a frame over collection and returns it.
func (s *Scope) Push(collection string) Frame {
	f := Frame{Collection: collection, Index: len(s.frames)}
	s.frames = append(s.frames, f)
	return f
}

// Pop closes the innermost frame.
func (s *Scope) Pop() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

// Depth is the number of open frames.
func (s *Scope) Depth() int {
	return len(s.frames)
}

// Innermost returns the innermost open frame.
func (s *Scope) Innermost() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-1], true
}
