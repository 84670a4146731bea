package shadow

import (
	"math"
	"sort"
)

// ConvexHull returns the convex hull of pts in counter-clockwise order
// starting from the lowest point, using a Graham scan. Duplicate and
// collinear points are dropped; fewer than three hull points yields nil.
func ConvexHull(pts []Vec2) []Vec2 {
	uniq := make([]Vec2, 0, len(pts))
	for _, p := range pts {
		dup := false
		for _, q := range uniq {
			if p.dist(q) < vertexEpsilon {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, p)
		}
	}
	if len(uniq) < 3 {
		return nil
	}

	pivot := 0
	for i, p := range uniq {
		if p.Y < uniq[pivot].Y || (p.Y == uniq[pivot].Y && p.X < uniq[pivot].X) {
			pivot = i
		}
	}
	uniq[0], uniq[pivot] = uniq[pivot], uniq[0]
	o := uniq[0]

	rest := uniq[1:]
	sort.Slice(rest, func(i, j int) bool {
		ai := math.Atan2(rest[i].Y-o.Y, rest[i].X-o.X)
		aj := math.Atan2(rest[j].Y-o.Y, rest[j].X-o.X)
		if ai != aj {
			return ai < aj
		}
		return rest[i].dist(o) < rest[j].dist(o)
	})

	stack := make([]int, 0, len(uniq))
	for i := range uniq {
		for len(stack) >= 2 && cross(uniq[stack[len(stack)-2]], uniq[stack[len(stack)-1]], uniq[i]) <= 0 {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, i)
	}
	if len(stack) < 3 {
		return nil
	}

	hull := make([]Vec2, len(stack))
	for i, idx := range stack {
		hull[i] = uniq[idx]
	}
	if math.Abs(signedArea(hull)) < areaEpsilon {
		return nil
	}
	return hull
}
