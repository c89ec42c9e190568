package components

import (
	"unsafe"

	"clawroom/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle is a single triangle with precomputed normal.
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max rl.Vector3
}

// BVHNode is a node in the bounding volume hierarchy.
type BVHNode struct {
	Bounds    AABB
	Left      *BVHNode
	Right     *BVHNode
	Triangles []int // indices into the triangle array (leaf nodes only)
}

// MeshCollider wraps a triangle mesh with a BVH and answers the collision
// queries the physics core needs: sphere push-out, closest point, exact
// mesh-vs-mesh and box-vs-mesh intersection under a relative transform.
// Triangles are stored in the space they were built in: statics bake
// their world transform at build time, dynamic proxies build in local
// space and pass a relative transform per query.
type MeshCollider struct {
	engine.BaseComponent
	Triangles []Triangle
	Root      *BVHNode
	built     bool
}

func NewMeshCollider() *MeshCollider {
	return &MeshCollider{}
}

// IsBuilt reports whether the BVH exists. Callers must skip colliders
// that were never built rather than fail.
func (m *MeshCollider) IsBuilt() bool {
	return m.built
}

// TriangleCount returns the number of triangles in the collider.
func (m *MeshCollider) TriangleCount() int {
	return len(m.Triangles)
}

// GetBounds returns the AABB of the whole mesh.
func (m *MeshCollider) GetBounds() AABB {
	if m.Root == nil {
		return AABB{}
	}
	return m.Root.Bounds
}

// BuildFromTriangles builds the BVH over a pre-made triangle list.
// Normals are recomputed. This is the path tests and the finger proxies
// use; no GPU context is required.
func (m *MeshCollider) BuildFromTriangles(tris []Triangle) {
	m.Triangles = make([]Triangle, len(tris))
	for i, t := range tris {
		t.Normal = triangleNormal(t.V0, t.V1, t.V2)
		m.Triangles[i] = t
	}
	m.buildBVH()
	m.built = len(m.Triangles) > 0
}

// BuildFromBox builds a 12-triangle box mesh centered on the origin.
func (m *MeshCollider) BuildFromBox(size rl.Vector3) {
	m.BuildFromTriangles(boxTriangles(size))
}

// BuildFromBoxAt builds the box mesh translated to center. Static
// colliders bake their world placement into the triangles this way so
// queries against them need no per-frame transform.
func (m *MeshCollider) BuildFromBoxAt(center, size rl.Vector3) {
	tris := boxTriangles(size)
	for i := range tris {
		tris[i].V0 = rl.Vector3Add(tris[i].V0, center)
		tris[i].V1 = rl.Vector3Add(tris[i].V1, center)
		tris[i].V2 = rl.Vector3Add(tris[i].V2, center)
	}
	m.BuildFromTriangles(tris)
}

func boxTriangles(size rl.Vector3) []Triangle {
	h := rl.Vector3Scale(size, 0.5)
	c := [8]rl.Vector3{
		{X: -h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: -h.Y, Z: -h.Z},
		{X: h.X, Y: h.Y, Z: -h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: -h.Y, Z: h.Z},
		{X: h.X, Y: h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: h.Z},
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}
	tris := make([]Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			Triangle{V0: c[q[0]], V1: c[q[1]], V2: c[q[2]]},
			Triangle{V0: c[q[0]], V1: c[q[2]], V2: c[q[3]]},
		)
	}
	return tris
}

// BuildFromModel extracts triangles from a raylib Model, applies the
// given transform (identity for dynamic bodies, world transform for
// statics), and builds the BVH.
func (m *MeshCollider) BuildFromModel(model rl.Model, transform rl.Matrix) {
	m.Triangles = nil
	meshes := unsafe.Slice(model.Meshes, model.MeshCount)

	for _, mesh := range meshes {
		vertices := unsafe.Slice(mesh.Vertices, mesh.VertexCount*3)

		if mesh.Indices != nil {
			indices := unsafe.Slice(mesh.Indices, mesh.TriangleCount*3)
			for i := int32(0); i < mesh.TriangleCount; i++ {
				i0, i1, i2 := indices[i*3+0], indices[i*3+1], indices[i*3+2]
				m.appendTriangle(
					rl.Vector3{X: vertices[i0*3+0], Y: vertices[i0*3+1], Z: vertices[i0*3+2]},
					rl.Vector3{X: vertices[i1*3+0], Y: vertices[i1*3+1], Z: vertices[i1*3+2]},
					rl.Vector3{X: vertices[i2*3+0], Y: vertices[i2*3+1], Z: vertices[i2*3+2]},
					transform)
			}
		} else {
			// Non-indexed: every 3 vertices form a triangle
			triCount := mesh.VertexCount / 3
			for i := int32(0); i < triCount; i++ {
				m.appendTriangle(
					rl.Vector3{X: vertices[i*9+0], Y: vertices[i*9+1], Z: vertices[i*9+2]},
					rl.Vector3{X: vertices[i*9+3], Y: vertices[i*9+4], Z: vertices[i*9+5]},
					rl.Vector3{X: vertices[i*9+6], Y: vertices[i*9+7], Z: vertices[i*9+8]},
					transform)
			}
		}
	}

	m.buildBVH()
	m.built = len(m.Triangles) > 0
}

func (m *MeshCollider) appendTriangle(v0, v1, v2 rl.Vector3, transform rl.Matrix) {
	v0 = rl.Vector3Transform(v0, transform)
	v1 = rl.Vector3Transform(v1, transform)
	v2 = rl.Vector3Transform(v2, transform)
	m.Triangles = append(m.Triangles, Triangle{
		V0: v0, V1: v1, V2: v2,
		Normal: triangleNormal(v0, v1, v2),
	})
}

func triangleNormal(v0, v1, v2 rl.Vector3) rl.Vector3 {
	n := rl.Vector3CrossProduct(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0))
	return rl.Vector3Normalize(n)
}

// ---- BVH construction (median split on the longest axis) ----

func (m *MeshCollider) buildBVH() {
	if len(m.Triangles) == 0 {
		m.Root = nil
		return
	}
	indices := make([]int, len(m.Triangles))
	for i := range indices {
		indices[i] = i
	}
	m.Root = m.buildBVHNode(indices, 0)
}

func (m *MeshCollider) buildBVHNode(indices []int, depth int) *BVHNode {
	node := &BVHNode{Bounds: m.computeBounds(indices)}

	if len(indices) <= 4 || depth > 20 {
		node.Triangles = indices
		return node
	}

	size := rl.Vector3Subtract(node.Bounds.Max, node.Bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > getAxisValue(size, axis) {
		axis = 2
	}

	mid := m.partitionTriangles(indices, axis)
	if mid == 0 || mid == len(indices) {
		// Couldn't split, make leaf
		node.Triangles = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)
	return node
}

func (m *MeshCollider) computeBounds(indices []int) AABB {
	bounds := AABB{
		Min: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds.Min = vector3Min(bounds.Min, vector3Min(tri.V0, vector3Min(tri.V1, tri.V2)))
		bounds.Max = vector3Max(bounds.Max, vector3Max(tri.V0, vector3Max(tri.V1, tri.V2)))
	}
	return bounds
}

func (m *MeshCollider) partitionTriangles(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += getAxisValue(m.centroid(idx), axis)
	}
	center /= float32(len(indices))

	left, right := 0, len(indices)-1
	for left <= right {
		if getAxisValue(m.centroid(indices[left]), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func (m *MeshCollider) centroid(idx int) rl.Vector3 {
	tri := &m.Triangles[idx]
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(tri.V0, tri.V1), tri.V2), 1.0/3.0)
}

func getAxisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func vector3Min(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: math32.Min(a.X, b.X),
		Y: math32.Min(a.Y, b.Y),
		Z: math32.Min(a.Z, b.Z),
	}
}

func vector3Max(a, b rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: math32.Max(a.X, b.X),
		Y: math32.Max(a.Y, b.Y),
		Z: math32.Max(a.Z, b.Z),
	}
}

func aabbIntersects(a, b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// transformAABB returns the enclosing AABB of box's corners under transform.
func transformAABB(box AABB, transform rl.Matrix) AABB {
	corners := [8]rl.Vector3{
		{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z},
	}
	out := AABB{
		Min: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
	for _, c := range corners {
		p := rl.Vector3Transform(c, transform)
		out.Min = vector3Min(out.Min, p)
		out.Max = vector3Max(out.Max, p)
	}
	return out
}

// ---- Queries ----

// SphereIntersect tests a sphere against the mesh and returns the
// accumulated push-out vector (largest push per axis, as in stacked
// wall/floor contacts).
func (m *MeshCollider) SphereIntersect(center rl.Vector3, radius float32) (bool, rl.Vector3) {
	if !m.built || m.Root == nil {
		return false, rl.Vector3{}
	}

	query := AABB{
		Min: rl.Vector3{X: center.X - radius, Y: center.Y - radius, Z: center.Z - radius},
		Max: rl.Vector3{X: center.X + radius, Y: center.Y + radius, Z: center.Z + radius},
	}
	candidates := m.queryBVH(m.Root, query)

	var totalPush rl.Vector3
	hit := false
	for _, idx := range candidates {
		tri := &m.Triangles[idx]
		if collides, push := sphereTriangleIntersect(center, radius, tri); collides {
			if math32.Abs(push.X) > math32.Abs(totalPush.X) {
				totalPush.X = push.X
			}
			if math32.Abs(push.Y) > math32.Abs(totalPush.Y) {
				totalPush.Y = push.Y
			}
			if math32.Abs(push.Z) > math32.Abs(totalPush.Z) {
				totalPush.Z = push.Z
			}
			hit = true
		}
	}
	return hit, totalPush
}

// ClosestPointToPoint returns the closest point on the mesh surface to p
// (both in the collider's build space). ok is false when no BVH exists.
func (m *MeshCollider) ClosestPointToPoint(p rl.Vector3) (rl.Vector3, bool) {
	if !m.built || m.Root == nil {
		return rl.Vector3{}, false
	}
	best := rl.Vector3{}
	bestDistSq := float32(math32.MaxFloat32)
	m.closestPointNode(m.Root, p, &best, &bestDistSq)
	return best, true
}

func (m *MeshCollider) closestPointNode(node *BVHNode, p rl.Vector3, best *rl.Vector3, bestDistSq *float32) {
	if node == nil {
		return
	}
	if aabbDistSq(node.Bounds, p) >= *bestDistSq {
		return
	}
	if node.Triangles != nil {
		for _, idx := range node.Triangles {
			tri := &m.Triangles[idx]
			q := closestPointOnTriangle(p, tri.V0, tri.V1, tri.V2)
			d := rl.Vector3Subtract(p, q)
			distSq := rl.Vector3DotProduct(d, d)
			if distSq < *bestDistSq {
				*bestDistSq = distSq
				*best = q
			}
		}
		return
	}
	// Visit the nearer child first so the far one can be culled.
	dl := aabbDistSq(node.Left.Bounds, p)
	dr := aabbDistSq(node.Right.Bounds, p)
	if dl <= dr {
		m.closestPointNode(node.Left, p, best, bestDistSq)
		m.closestPointNode(node.Right, p, best, bestDistSq)
	} else {
		m.closestPointNode(node.Right, p, best, bestDistSq)
		m.closestPointNode(node.Left, p, best, bestDistSq)
	}
}

func aabbDistSq(box AABB, p rl.Vector3) float32 {
	dx := math32.Max(math32.Max(box.Min.X-p.X, 0), p.X-box.Max.X)
	dy := math32.Max(math32.Max(box.Min.Y-p.Y, 0), p.Y-box.Max.Y)
	dz := math32.Max(math32.Max(box.Min.Z-p.Z, 0), p.Z-box.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

// IntersectsGeometry reports whether other's mesh, transformed by
// relTransform into this collider's space, intersects this mesh. This is
// the exact narrow-phase test: both BVHs are walked together and
// surviving leaf pairs get a triangle-triangle separating-axis test.
//
// Surfaces only: a mesh entirely contained in the other, with no
// triangle crossing, is not reported. Callers must keep every movable
// collider thicker than any geometry it can meet, so containment can
// only be reached through a crossing tick first.
func (m *MeshCollider) IntersectsGeometry(other *MeshCollider, relTransform rl.Matrix) bool {
	if !m.built || m.Root == nil || other == nil || !other.built || other.Root == nil {
		return false
	}
	return m.intersectsNode(m.Root, other, other.Root, relTransform)
}

func (m *MeshCollider) intersectsNode(mine *BVHNode, other *MeshCollider, theirs *BVHNode, relTransform rl.Matrix) bool {
	if mine == nil || theirs == nil {
		return false
	}
	theirBounds := transformAABB(theirs.Bounds, relTransform)
	if !aabbIntersects(mine.Bounds, theirBounds) {
		return false
	}

	mineLeaf := mine.Triangles != nil
	theirsLeaf := theirs.Triangles != nil

	if mineLeaf && theirsLeaf {
		for _, i := range mine.Triangles {
			a := &m.Triangles[i]
			for _, j := range theirs.Triangles {
				b := other.Triangles[j]
				b0 := rl.Vector3Transform(b.V0, relTransform)
				b1 := rl.Vector3Transform(b.V1, relTransform)
				b2 := rl.Vector3Transform(b.V2, relTransform)
				if triTriIntersect(a.V0, a.V1, a.V2, b0, b1, b2) {
					return true
				}
			}
		}
		return false
	}

	// Descend the non-leaf side; split the larger node when both are internal.
	if mineLeaf {
		return m.intersectsNode(mine, other, theirs.Left, relTransform) ||
			m.intersectsNode(mine, other, theirs.Right, relTransform)
	}
	if theirsLeaf || aabbVolume(mine.Bounds) >= aabbVolume(theirBounds) {
		return m.intersectsNode(mine.Left, other, theirs, relTransform) ||
			m.intersectsNode(mine.Right, other, theirs, relTransform)
	}
	return m.intersectsNode(mine, other, theirs.Left, relTransform) ||
		m.intersectsNode(mine, other, theirs.Right, relTransform)
}

func aabbVolume(b AABB) float32 {
	return (b.Max.X - b.Min.X) * (b.Max.Y - b.Min.Y) * (b.Max.Z - b.Min.Z)
}

// IntersectsBox reports whether a box, transformed by relTransform into
// this collider's space, overlaps the mesh. The transformed box is
// conservatively enclosed in an AABB before the per-triangle test.
func (m *MeshCollider) IntersectsBox(box AABB, relTransform rl.Matrix) bool {
	if !m.built || m.Root == nil {
		return false
	}
	query := transformAABB(box, relTransform)
	candidates := m.queryBVH(m.Root, query)
	for _, idx := range candidates {
		tri := &m.Triangles[idx]
		if triAABBOverlap(tri, query) {
			return true
		}
	}
	return false
}

func (m *MeshCollider) queryBVH(node *BVHNode, query AABB) []int {
	if node == nil || !aabbIntersects(node.Bounds, query) {
		return nil
	}
	if node.Triangles != nil {
		return node.Triangles
	}
	left := m.queryBVH(node.Left, query)
	right := m.queryBVH(node.Right, query)
	return append(left, right...)
}

// ---- Primitive tests ----

func sphereTriangleIntersect(center rl.Vector3, radius float32, tri *Triangle) (bool, rl.Vector3) {
	closest := closestPointOnTriangle(center, tri.V0, tri.V1, tri.V2)

	diff := rl.Vector3Subtract(center, closest)
	distSq := rl.Vector3DotProduct(diff, diff)
	if distSq >= radius*radius {
		return false, rl.Vector3{}
	}

	dist := math32.Sqrt(distSq)
	if dist < 0.0001 {
		// Center is on the triangle, push along its normal
		return true, rl.Vector3Scale(tri.Normal, radius)
	}
	pushDir := rl.Vector3Scale(diff, 1.0/dist)
	return true, rl.Vector3Scale(pushDir, radius-dist)
}

// closestPointOnTriangle finds the closest point on triangle abc to p.
func closestPointOnTriangle(p, a, b, c rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

// triTriIntersect is a separating-axis test between triangles
// (a0,a1,a2) and (b0,b1,b2): both face normals, the nine edge-pair
// cross products, and the in-plane edge normals, which settle the
// coplanar case the cross-product axes cannot. No separating axis
// means intersection.
func triTriIntersect(a0, a1, a2, b0, b1, b2 rl.Vector3) bool {
	ea := [3]rl.Vector3{
		rl.Vector3Subtract(a1, a0),
		rl.Vector3Subtract(a2, a1),
		rl.Vector3Subtract(a0, a2),
	}
	eb := [3]rl.Vector3{
		rl.Vector3Subtract(b1, b0),
		rl.Vector3Subtract(b2, b1),
		rl.Vector3Subtract(b0, b2),
	}
	na := rl.Vector3CrossProduct(ea[0], ea[1])
	nb := rl.Vector3CrossProduct(eb[0], eb[1])

	axes := make([]rl.Vector3, 0, 17)
	axes = append(axes, na, nb)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axes = append(axes, rl.Vector3CrossProduct(ea[i], eb[j]))
		}
	}
	for i := 0; i < 3; i++ {
		axes = append(axes, rl.Vector3CrossProduct(na, ea[i]))
		axes = append(axes, rl.Vector3CrossProduct(nb, eb[i]))
	}

	ta := [3]rl.Vector3{a0, a1, a2}
	tb := [3]rl.Vector3{b0, b1, b2}
	for _, axis := range axes {
		if rl.Vector3DotProduct(axis, axis) < 1e-12 {
			continue // parallel edges, degenerate axis
		}
		minA, maxA := projectOntoAxis(ta, axis)
		minB, maxB := projectOntoAxis(tb, axis)
		if maxA < minB || maxB < minA {
			return false
		}
	}
	return true
}

func projectOntoAxis(points [3]rl.Vector3, axis rl.Vector3) (float32, float32) {
	min := rl.Vector3DotProduct(points[0], axis)
	max := min
	for i := 1; i < 3; i++ {
		d := rl.Vector3DotProduct(points[i], axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// triAABBOverlap is the triangle-vs-AABB separating-axis test: box face
// normals, the triangle normal, and the nine edge-axis cross products.
func triAABBOverlap(tri *Triangle, box AABB) bool {
	center := rl.Vector3Scale(rl.Vector3Add(box.Min, box.Max), 0.5)
	half := rl.Vector3Scale(rl.Vector3Subtract(box.Max, box.Min), 0.5)

	// Translate the triangle so the box is at the origin
	v := [3]rl.Vector3{
		rl.Vector3Subtract(tri.V0, center),
		rl.Vector3Subtract(tri.V1, center),
		rl.Vector3Subtract(tri.V2, center),
	}

	// Box face normals
	for axis := 0; axis < 3; axis++ {
		min, max := getAxisValue(v[0], axis), getAxisValue(v[0], axis)
		for i := 1; i < 3; i++ {
			d := getAxisValue(v[i], axis)
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}
		if min > getAxisValue(half, axis) || max < -getAxisValue(half, axis) {
			return false
		}
	}

	edges := [3]rl.Vector3{
		rl.Vector3Subtract(v[1], v[0]),
		rl.Vector3Subtract(v[2], v[1]),
		rl.Vector3Subtract(v[0], v[2]),
	}

	// Triangle normal
	n := rl.Vector3CrossProduct(edges[0], edges[1])
	if !axisOverlapsBox(n, v, half) {
		return false
	}

	// Edge cross products with the box axes
	boxAxes := [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}
	for _, e := range edges {
		for _, b := range boxAxes {
			axis := rl.Vector3CrossProduct(e, b)
			if rl.Vector3DotProduct(axis, axis) < 1e-12 {
				continue
			}
			if !axisOverlapsBox(axis, v, half) {
				return false
			}
		}
	}
	return true
}

func axisOverlapsBox(axis rl.Vector3, v [3]rl.Vector3, half rl.Vector3) bool {
	min := rl.Vector3DotProduct(v[0], axis)
	max := min
	for i := 1; i < 3; i++ {
		d := rl.Vector3DotProduct(v[i], axis)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	r := half.X*math32.Abs(axis.X) + half.Y*math32.Abs(axis.Y) + half.Z*math32.Abs(axis.Z)
	return min <= r && max >= -r
}
