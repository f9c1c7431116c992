package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Базовые математические типы движка. Используем mgl64 напрямую,
// чтобы не дублировать векторную математику.
type (
	Vec3 = mgl64.Vec3
	Quat = mgl64.Quat
	Mat3 = mgl64.Mat3
)

// QuatIdent возвращает единичный кватернион (без вращения).
func QuatIdent() Quat {
	return mgl64.QuatIdent()
}

// NewQuat собирает кватернион из компонент (x, y, z, w).
func NewQuat(x, y, z, w float64) Quat {
	return Quat{W: w, V: Vec3{x, y, z}}
}

// vmul покомпонентно умножает два вектора.
func vmul(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// almostZero проверяет, что все компоненты вектора близки к нулю.
func almostZero(v Vec3, eps float64) bool {
	return math.Abs(v[0]) <= eps && math.Abs(v[1]) <= eps && math.Abs(v[2]) <= eps
}

// tangents строит два единичных вектора, ортогональных n и друг другу.
// Используется для осей трения в контактной точке.
func tangents(n Vec3) (Vec3, Vec3) {
	if n.LenSqr() > 0 {
		var rand Vec3
		if math.Abs(n[0]) < 0.9 {
			rand = Vec3{1, 0, 0}
		} else {
			rand = Vec3{0, 1, 0}
		}
		t1 := n.Cross(rand).Normalize()
		t2 := n.Cross(t1)
		return t1, t2
	}
	return Vec3{1, 0, 0}, Vec3{0, 1, 0}
}

// quatMat3 переводит кватернион в матрицу вращения 3x3.
func quatMat3(q Quat) Mat3 {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W

	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	// mgl64.Mat3 хранится по столбцам.
	return Mat3{
		1 - (yy + zz), xy + wz, xz - wy,
		xy - wz, 1 - (xx + zz), yz + wx,
		xz + wy, yz - wx, 1 - (xx + yy),
	}
}

// diagTransform вычисляет R * diag(d) * R^T - перевод диагонального
// тензора инерции в мировые координаты.
func diagTransform(r Mat3, d Vec3) Mat3 {
	rd := Mat3{
		r[0] * d[0], r[1] * d[0], r[2] * d[0],
		r[3] * d[1], r[4] * d[1], r[5] * d[1],
		r[6] * d[2], r[7] * d[2], r[8] * d[2],
	}
	return rd.Mul3(r.Transpose())
}

// integrateQuat интегрирует кватернион по угловой скорости за время dt.
// Стандартный подход: q' = q + dt/2 * (omega ⊗ q), без нормализации.
func integrateQuat(q Quat, angularVelocity Vec3, dt float64, angularFactor Vec3) Quat {
	ax := angularVelocity[0] * angularFactor[0]
	ay := angularVelocity[1] * angularFactor[1]
	az := angularVelocity[2] * angularFactor[2]

	bx, by, bz, bw := q.V[0], q.V[1], q.V[2], q.W
	half := dt * 0.5

	return Quat{
		W: bw + half*(-ax*bx-ay*by-az*bz),
		V: Vec3{
			bx + half*(ax*bw+ay*bz-az*by),
			by + half*(ay*bw+az*bx-ax*bz),
			bz + half*(az*bw+ax*by-ay*bx),
		},
	}
}

// normalizeQuat точно нормализует кватернион. Нулевой кватернион
// обнуляется (вырожденный случай).
func normalizeQuat(q Quat) Quat {
	l := math.Sqrt(q.V[0]*q.V[0] + q.V[1]*q.V[1] + q.V[2]*q.V[2] + q.W*q.W)
	if l == 0 {
		return Quat{}
	}
	inv := 1 / l
	return Quat{W: q.W * inv, V: q.V.Mul(inv)}
}

// normalizeQuatFast приближенно нормализует кватернион первым членом
// ряда Тейлора. Дешевле точной нормализации, подходит для частых шагов.
func normalizeQuatFast(q Quat) Quat {
	f := (3.0 - (q.V[0]*q.V[0] + q.V[1]*q.V[1] + q.V[2]*q.V[2] + q.W*q.W)) / 2.0
	if f == 0 {
		return Quat{}
	}
	return Quat{W: q.W * f, V: q.V.Mul(f)}
}
