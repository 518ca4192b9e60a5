package geom

// Vector2 is a texture coordinate.
type Vector2 struct {
	X Element
	Y Element
}

func (v Vector2) Array() [2]Element {
	return [2]Element{v.X, v.Y}
}
