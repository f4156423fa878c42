package riskmap

import "github.com/golang/geo/s2"

// Bounds is the rectangle passed to fit-to-bounds.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Empty reports whether no vertex was added to the bounds.
func (b Bounds) Empty() bool {
	return b == Bounds{}
}

func boundsFromRect(r s2.Rect) Bounds {
	if r.IsEmpty() {
		return Bounds{}
	}
	return Bounds{
		SouthWest: LatLng{Lat: r.Lo().Lat.Degrees(), Lng: r.Lo().Lng.Degrees()},
		NorthEast: LatLng{Lat: r.Hi().Lat.Degrees(), Lng: r.Hi().Lng.Degrees()},
	}
}

type s2Polygon struct {
	outer *s2.Loop
	holes []*s2.Loop
}

// shape is the spherical form of a Geometry used for hit testing.
type shape struct {
	polygons []s2Polygon
	rect     s2.Rect
}

func newShape(g Geometry) shape {
	sh := shape{rect: s2.EmptyRect()}
	for _, p := range g {
		var sp s2Polygon
		for i, ring := range p {
			loop := ringLoop(ring)
			if i == 0 {
				sp.outer = loop
				sh.rect = sh.rect.Union(loop.RectBound())
				continue
			}
			sp.holes = append(sp.holes, loop)
		}
		sh.polygons = append(sh.polygons, sp)
	}
	return sh
}

// ringLoop builds a loop enclosing the smaller of the two regions the ring
// bounds, so rings work in either winding order.
func ringLoop(ring Ring) *s2.Loop {
	pts := make([]s2.Point, len(ring))
	for i, v := range ring {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(v.Lat, v.Lng))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop
}

func (s shape) contains(ll LatLng) bool {
	latlng := s2.LatLngFromDegrees(ll.Lat, ll.Lng)
	if !s.rect.ContainsLatLng(latlng) {
		return false
	}
	pt := s2.PointFromLatLng(latlng)
	for _, p := range s.polygons {
		if !p.outer.ContainsPoint(pt) {
			continue
		}
		inHole := false
		for _, h := range p.holes {
			if h.ContainsPoint(pt) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
