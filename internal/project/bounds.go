package project

import "github.com/roach88/pytch/internal/actor"

type bbox struct {
	minX, maxX float64
	minY, maxY float64
}

// boundingBox centres the current costume on the sprite's position,
// scaled by its size. Returns false if the costume is not in the class's
// table.
func boundingBox(s *actor.Sprite) (bbox, bool) {
	costume, ok := s.Class().Costume(s.Appearance())
	if !ok {
		return bbox{}, false
	}
	halfW := costume.Width * s.Size() / 2
	halfH := costume.Height * s.Size() / 2
	return bbox{
		minX: s.X() - halfW,
		maxX: s.X() + halfW,
		minY: s.Y() - halfH,
		maxY: s.Y() + halfH,
	}, true
}

func (a bbox) overlaps(b bbox) bool {
	return a.minX <= b.maxX && b.minX <= a.maxX &&
		a.minY <= b.maxY && b.minY <= a.maxY
}
