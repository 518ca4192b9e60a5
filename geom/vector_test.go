package geom

import (
	"testing"
)

func TestVector2(t *testing.T) {
	if (Vector2{X: 3, Y: 4}).Array() != [2]float32{3, 4} {
		t.Error("Vector2.Array()")
	}
}

func TestVector3(t *testing.T) {
	zero := NewVector3(0, 0, 0)
	if zero.Len() != 0 || zero.Dot(zero) != 0 {
		t.Error("len != 0")
	}

	if *zero.Normalize() != *NewVector3(1, 0, 0) {
		t.Error("Normalize shoud returns unit vector.", zero.Normalize())
	}

	if *NewVector3(1, 0, 0).Add(NewVector3(0, 1, 0)) != *NewVector3(1, 1, 0) {
		t.Error("Vector.Add()")
	}

	if *NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)) != *NewVector3(0, 0, 1) {
		t.Error("Vector.Cross()")
	}

	if *NewVector3(1, 2, 3).Scale(2) != *NewVector3(2, 4, 6) {
		t.Error("Vector.Scale()")
	}

	if NewVector3(0, 3, 4).Len() != 5 {
		t.Error("Vector.Len()")
	}

	if NewVector3FromSlice([]float32{1, 2, 3, 4}).Array() != [3]float32{1, 2, 3} {
		t.Error("NewVector3FromSlice()")
	}
}
