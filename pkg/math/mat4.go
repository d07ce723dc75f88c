package math

// Mat4 is a 4x4 affine transform in row-major order, matching the element
// order of a COLLADA <matrix> tag.
// Layout: [m0  m1  m2  m3 ]
//
//	[m4  m5  m6  m7 ]
//	[m8  m9  m10 m11]
//	[m12 m13 m14 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// TransformPoint applies the full affine transform to a point, including
// translation.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		p.X*m[0] + p.Y*m[1] + p.Z*m[2] + m[3],
		p.X*m[4] + p.Y*m[5] + p.Z*m[6] + m[7],
		p.X*m[8] + p.Y*m[9] + p.Z*m[10] + m[11],
	}
}

// TransformDirection applies only the linear part of the transform, for
// normals and other direction vectors.
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		d.X*m[0] + d.Y*m[1] + d.Z*m[2],
		d.X*m[4] + d.Y*m[5] + d.Z*m[6],
		d.X*m[8] + d.Y*m[9] + d.Z*m[10],
	}
}

// IsIdentity reports whether the matrix is exactly the identity.
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}
