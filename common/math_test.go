package common

import "testing"

func TestIdentity4TransformsPointUnchanged(t *testing.T) {
	m := Identity4()
	v := Vector3{X: 1, Y: -2, Z: 3.5}
	if got := m.TransformPoint(v); got != v {
		t.Fatalf("identity transform of %+v = %+v", v, got)
	}
}

func TestMatrix4MulWithIdentityIsNoop(t *testing.T) {
	m := Identity4()
	translate := Identity4()
	translate[12], translate[13], translate[14] = 1, 2, 3

	if got := m.Mul(translate); got != translate {
		t.Fatalf("identity * translate = %+v, want translate unchanged", got)
	}
	if got := translate.Mul(m); got != translate {
		t.Fatalf("translate * identity = %+v, want translate unchanged", got)
	}
}

func TestMatrix4TransformPointTranslation(t *testing.T) {
	m := Identity4()
	m[12], m[13], m[14] = 10, 20, 30

	got := m.TransformPoint(Vector3{X: 1, Y: 1, Z: 1})
	want := Vector3{X: 11, Y: 21, Z: 31}
	if got != want {
		t.Fatalf("TransformPoint = %+v, want %+v", got, want)
	}
}

func TestMatrix4TransformDirectionIgnoresTranslation(t *testing.T) {
	m := Identity4()
	m[12], m[13], m[14] = 10, 20, 30

	got := m.TransformDirection(Vector3{X: 1, Y: 0, Z: 0})
	want := Vector3{X: 1, Y: 0, Z: 0}
	if got != want {
		t.Fatalf("TransformDirection = %+v, want translation-free %+v", got, want)
	}
}

func TestMatrix4Determinant3Identity(t *testing.T) {
	m := Identity4()
	if got := m.Determinant3(); got != 1 {
		t.Fatalf("Determinant3(identity) = %v, want 1", got)
	}
}

func TestMatrix4Determinant3NegativeScale(t *testing.T) {
	m := Identity4()
	m[0] = -1 // mirror the X axis
	if got := m.Determinant3(); got >= 0 {
		t.Fatalf("Determinant3(mirrored) = %v, want negative", got)
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	m := Identity4()
	m[12], m[13], m[14] = 5, -3, 2

	var inv Matrix4
	if ok := Invert4(inv[:], m[:]); !ok {
		t.Fatal("Invert4 reported singular for a translation matrix")
	}

	var back Matrix4
	Mul4(back[:], m[:], inv[:])
	want := Identity4()
	for i := range back {
		diff := back[i] - want[i]
		if diff < -1e-4 || diff > 1e-4 {
			t.Fatalf("m * inv(m) = %+v, want identity", back)
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero Matrix4
	var out Matrix4
	if ok := Invert4(out[:], zero[:]); ok {
		t.Fatal("Invert4 should report false for the zero matrix")
	}
}
