package core

import "testing"

// linear maps of each transform on centered coordinates: x' = a*x + b*y, y' = c*x + d*y
var linear = map[Transform][4]int{
	Identity:  {1, 0, 0, 1},
	Rotate90:  {0, -1, 1, 0},
	Rotate180: {-1, 0, 0, -1},
	Rotate270: {0, 1, -1, 0},
	FlipX:     {-1, 0, 0, 1},
	FlipY:     {1, 0, 0, -1},
	Diagonal1: {0, 1, 1, 0},
	Diagonal2: {0, -1, -1, 0},
}

func TestComposeMatchesMatrixProduct(t *testing.T) {
	for _, a := range Transforms {
		for _, b := range Transforms {
			ma, mb := linear[a], linear[b]
			// b after a: Mb * Ma
			product := [4]int{
				mb[0]*ma[0] + mb[1]*ma[2], mb[0]*ma[1] + mb[1]*ma[3],
				mb[2]*ma[0] + mb[3]*ma[2], mb[2]*ma[1] + mb[3]*ma[3],
			}
			result := Compose(a, b)
			if linear[result] != product {
				t.Errorf("Compose(%s, %s) = %s, expected matrix %v", a, b, result, product)
			}
		}
	}
}

func TestComposeGroupLaws(t *testing.T) {
	for _, tr := range Transforms {
		if result := Compose(tr, Inverse(tr)); result != Identity {
			t.Errorf("Compose(%s, Inverse(%s)) = %s, expected identity", tr, tr, result)
		}
		if result := Compose(Inverse(tr), tr); result != Identity {
			t.Errorf("Compose(Inverse(%s), %s) = %s, expected identity", tr, tr, result)
		}
		if result := Compose(Identity, tr); result != tr {
			t.Errorf("Compose(identity, %s) = %s", tr, result)
		}
		if result := Compose(tr, Identity); result != tr {
			t.Errorf("Compose(%s, identity) = %s", tr, result)
		}
	}
}

func TestComposeUnsetIsIdentity(t *testing.T) {
	if result := Compose("", Rotate90); result != Rotate90 {
		t.Errorf("Compose(unset, 90) = %s, expected 90", result)
	}
	if result := Inverse(""); result != Identity {
		t.Errorf("Inverse(unset) = %s, expected identity", result)
	}
}

func TestApplyTransformKnownCells(t *testing.T) {
	size := Size{W: 3, H: 2}

	tests := []struct {
		transform Transform
		x, y      int
		ex, ey    int
	}{
		{Identity, 2, 1, 2, 1},
		{"", 2, 1, 2, 1},
		{Rotate90, 0, 0, 1, 0},
		{Rotate90, 2, 1, 0, 2},
		{Rotate180, 0, 0, 2, 1},
		{Rotate270, 0, 0, 0, 2},
		{FlipX, 0, 1, 2, 1},
		{FlipY, 0, 1, 0, 0},
		{Diagonal1, 2, 1, 1, 2},
		{Diagonal2, 0, 0, 1, 2},
	}

	for _, tc := range tests {
		x, y := ApplyTransform(tc.x, tc.y, size, tc.transform)
		if x != tc.ex || y != tc.ey {
			t.Errorf("ApplyTransform(%d,%d,%s) = (%d,%d), expected (%d,%d)", tc.x, tc.y, tc.transform, x, y, tc.ex, tc.ey)
		}
	}
}

func TestApplyTransformIsBijectiveInsideBox(t *testing.T) {
	size := Size{W: 4, H: 3}
	for _, tr := range Transforms {
		out := size
		if tr == Rotate90 || tr == Rotate270 || tr == Diagonal1 || tr == Diagonal2 {
			out = Size{W: size.H, H: size.W}
		}
		seen := make(map[Position]bool)
		for y := 0; y < size.H; y++ {
			for x := 0; x < size.W; x++ {
				nx, ny := ApplyTransform(x, y, size, tr)
				if nx < 0 || nx >= out.W || ny < 0 || ny >= out.H {
					t.Fatalf("%s maps (%d,%d) outside %v: (%d,%d)", tr, x, y, out, nx, ny)
				}
				p := Pos(nx, ny)
				if seen[p] {
					t.Fatalf("%s maps two cells to %v", tr, p)
				}
				seen[p] = true

				bx, by := ApplyTransform(nx, ny, out, Inverse(tr))
				if bx != x || by != y {
					t.Errorf("%s then inverse maps (%d,%d) to (%d,%d)", tr, x, y, bx, by)
				}
			}
		}
	}
}
