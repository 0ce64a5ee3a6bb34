package core

// Transform is one of the eight symmetries of a square (the D4 group),
// used for actor orientation. The empty string means no transform was set
// and behaves like Identity.
type Transform string

const (
	Identity  Transform = "0"
	Rotate90  Transform = "90"
	Rotate180 Transform = "180"
	Rotate270 Transform = "270"
	FlipX     Transform = "flip-x"
	FlipY     Transform = "flip-y"
	Diagonal1 Transform = "d1" // transpose
	Diagonal2 Transform = "d2" // anti-transpose
)

// Transforms lists every D4 element in table order.
var Transforms = [8]Transform{Identity, Rotate90, Rotate180, Rotate270, FlipX, FlipY, Diagonal1, Diagonal2}

// index returns the table row of t, treating unset as Identity.
// Unknown codes return -1.
func (t Transform) index() int {
	if t == "" {
		return 0
	}
	for i, c := range Transforms {
		if c == t {
			return i
		}
	}
	return -1
}

// Valid reports whether t is unset or one of the eight D4 codes.
func (t Transform) Valid() bool {
	return t.index() >= 0
}

// Normalize returns Identity for an unset transform.
func (t Transform) Normalize() Transform {
	if t == "" {
		return Identity
	}
	return t
}

// composition[a][b] is the transform equivalent to applying a, then b.
var composition = [8][8]Transform{
	// I         R90        R180       R270       FX         FY         D1         D2
	{Identity, Rotate90, Rotate180, Rotate270, FlipX, FlipY, Diagonal1, Diagonal2},  // I
	{Rotate90, Rotate180, Rotate270, Identity, Diagonal1, Diagonal2, FlipY, FlipX},  // R90
	{Rotate180, Rotate270, Identity, Rotate90, FlipY, FlipX, Diagonal2, Diagonal1},  // R180
	{Rotate270, Identity, Rotate90, Rotate180, Diagonal2, Diagonal1, FlipX, FlipY},  // R270
	{FlipX, Diagonal2, FlipY, Diagonal1, Identity, Rotate180, Rotate270, Rotate90},  // FX
	{FlipY, Diagonal1, FlipX, Diagonal2, Rotate180, Identity, Rotate90, Rotate270},  // FY
	{Diagonal1, FlipX, Diagonal2, FlipY, Rotate90, Rotate270, Identity, Rotate180},  // D1
	{Diagonal2, FlipY, Diagonal1, FlipX, Rotate270, Rotate90, Rotate180, Identity},  // D2
}

// Compose returns the transform equivalent to applying a and then b.
// Unknown codes are treated as Identity.
func Compose(a, b Transform) Transform {
	ai, bi := a.index(), b.index()
	if ai < 0 {
		ai = 0
	}
	if bi < 0 {
		bi = 0
	}
	return composition[ai][bi]
}

// Inverse returns the transform that undoes t.
func Inverse(t Transform) Transform {
	switch t.Normalize() {
	case Rotate90:
		return Rotate270
	case Rotate270:
		return Rotate90
	}
	if !t.Valid() {
		return Identity
	}
	return t.Normalize()
}

// ApplyTransform maps the local cell (x, y) of a box of the given size
// through t. Rotations by 90 and 270 produce coordinates in the rotated
// (h x w) box.
func ApplyTransform(x, y int, size Size, t Transform) (int, int) {
	w, h := size.W, size.H
	switch t.Normalize() {
	case Rotate90:
		return h - 1 - y, x
	case Rotate180:
		return w - 1 - x, h - 1 - y
	case Rotate270:
		return y, w - 1 - x
	case FlipX:
		return w - 1 - x, y
	case FlipY:
		return x, h - 1 - y
	case Diagonal1:
		return y, x
	case Diagonal2:
		return h - 1 - y, w - 1 - x
	default:
		return x, y
	}
}
