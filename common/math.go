package common

import "github.com/go-gl/mathgl/mgl64"

const epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpVec3 moves a toward b by fraction t on every axis.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t), Lerp(a[2], b[2], t)}
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v has no length.
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < epsilon {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

func ApproxEqual(a, b, tol float64) bool {
	d := a - b
	return d <= tol && d >= -tol
}

func ApproxEqualVec3(a, b mgl64.Vec3, tol float64) bool {
	return ApproxEqual(a[0], b[0], tol) && ApproxEqual(a[1], b[1], tol) && ApproxEqual(a[2], b[2], tol)
}
