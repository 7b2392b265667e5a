package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3)).Mul(NewMat4EulerY(0.3))
	assert.True(t, m.Mul(NewMat4Identity()).Compare(m, tolerance))
	assert.True(t, NewMat4Identity().Mul(m).Compare(m, tolerance))
}

func TestMat4MulOrderAppliesLeftFirst(t *testing.T) {
	p := NewVec3(1, 0, 0)
	scale := NewMat4UniformScale(2)
	translate := NewMat4Translation(NewVec3(1, 0, 0))

	// scale, then translate
	assert.True(t, p.Transform(scale.Mul(translate)).Compare(NewVec3(3, 0, 0), tolerance))
	// translate, then scale
	assert.True(t, p.Transform(translate.Mul(scale)).Compare(NewVec3(4, 0, 0), tolerance))
}

func TestMat4TranslationComposes(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 0, 0)).Mul(NewMat4Translation(NewVec3(0, 2, 0)))
	assert.True(t, m.Translation().Compare(NewVec3(1, 2, 0), tolerance))
}

func TestMat4EulerRotations(t *testing.T) {
	tests := []struct {
		name     string
		matrix   Mat4
		point    Vec3
		expected Vec3
	}{
		{"z quarter turn", NewMat4EulerZ(K_HALF_PI), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"x quarter turn", NewMat4EulerX(K_HALF_PI), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"y quarter turn", NewMat4EulerY(K_HALF_PI), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"zero angle", NewMat4EulerZ(0), NewVec3(4, 5, 6), NewVec3(4, 5, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.point.Transform(tt.matrix)
			assert.InDelta(t, tt.expected.X, got.X, tolerance)
			assert.InDelta(t, tt.expected.Y, got.Y, tolerance)
			assert.InDelta(t, tt.expected.Z, got.Z, tolerance)
		})
	}
}

func TestMat4Transposed(t *testing.T) {
	m := NewMat4Translation(NewVec3(7, 8, 9))
	tr := NewMat4Transposed(m)
	assert.Equal(t, float32(7), tr.Data[3])
	assert.Equal(t, float32(8), tr.Data[7])
	assert.Equal(t, float32(9), tr.Data[11])
	assert.True(t, NewMat4Transposed(tr).Compare(m, 0))
}

func TestMat4LookAtLH(t *testing.T) {
	view := NewMat4LookAtLH(NewVec3(0, 0, -5), NewVec3Zero(), NewVec3Up())

	// The target ends up straight ahead on +z.
	origin := NewVec3Zero().Transform(view)
	assert.InDelta(t, 0, origin.X, tolerance)
	assert.InDelta(t, 0, origin.Y, tolerance)
	assert.InDelta(t, 5, origin.Z, tolerance)

	// +x stays to the right, +y stays up.
	right := NewVec3(1, 0, 0).Transform(view)
	assert.InDelta(t, 1, right.X, tolerance)
	up := NewVec3(0, 1, 0).Transform(view)
	assert.InDelta(t, 1, up.Y, tolerance)
}

func TestMat4PerspectiveLHDepthRange(t *testing.T) {
	near, far := float32(1), float32(100)
	proj := NewMat4PerspectiveLH(DegToRad(45), 4.0/3.0, near, far)

	depth := func(z float32) float32 {
		clipZ := z*proj.Data[10] + proj.Data[14]
		clipW := z * proj.Data[11]
		return clipZ / clipW
	}
	assert.InDelta(t, 0, depth(near), tolerance)
	assert.InDelta(t, 1, depth(far), tolerance)
	assert.InDelta(t, proj.Data[5]/(4.0/3.0), proj.Data[0], tolerance)
}

func TestMat4OrthographicLH(t *testing.T) {
	proj := NewMat4OrthographicLH(8, 6, 1, 100)
	corner := NewVec3(4, 3, 100).Transform(proj)
	assert.InDelta(t, 1, corner.X, tolerance)
	assert.InDelta(t, 1, corner.Y, tolerance)
	assert.InDelta(t, 1, corner.Z, tolerance)

	nearPoint := NewVec3(0, 0, 1).Transform(proj)
	assert.InDelta(t, 0, nearPoint.Z, tolerance)
}

func TestVec3CrossAndNormalize(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	assert.Equal(t, NewVec3(0, 0, 1), x.Cross(y))
	assert.InDelta(t, 1, NewVec3(3, 4, 0).Normalized().Length(), tolerance)
	assert.Equal(t, NewVec3Zero(), NewVec3Zero().Normalized())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(1, 3, 15))
	assert.Equal(t, 15, Clamp(20, 3, 15))
	assert.Equal(t, float32(7.5), Clamp(float32(7.5), 3, 15))
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, K_PI, DegToRad(180), tolerance)
	assert.InDelta(t, K_HALF_PI, DegToRad(90), tolerance)
}
