// Package mapaggr clusters problem locations into S2 cells so the map view
// renders a bounded number of markers regardless of how dense an area gets.
package mapaggr

import (
	"citywatch/api"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// Target marker count for a viewport; drives the cell level choice.
	expectedCells = 16
	minLevel      = 2
	maxLevel      = 18
	// Cells holding up to this many problems emit individual markers
	// instead of a cluster.
	maxSingles = 3
)

type cellBucket struct {
	problems []*api.Problem
}

// Aggregator buckets problems into S2 cells at a level derived from the
// viewport area.
type Aggregator struct {
	level   int
	buckets map[s2.CellID]*cellBucket
}

// BaseLevel picks the S2 cell level whose cells cover the viewport with
// roughly expectedCells cells, probing cell area at the map center.
func BaseLevel(vp *api.ViewPort, center *api.Point) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(center.Lat, center.Lon))
	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if vpArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func New(vp *api.ViewPort, center *api.Point) *Aggregator {
	return &Aggregator{
		level:   BaseLevel(vp, center),
		buckets: make(map[s2.CellID]*cellBucket),
	}
}

func (a *Aggregator) AddProblem(p *api.Problem) {
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Location.Lat, p.Location.Lng)).Parent(a.level)
	b, ok := a.buckets[cell]
	if !ok {
		b = &cellBucket{}
		a.buckets[cell] = b
	}
	b.problems = append(b.problems, p)
}

// Markers renders the buckets. Sparse cells keep their individual problems;
// dense cells collapse into one cluster marker pinned at the centroid of the
// member locations.
func (a *Aggregator) Markers() []api.MapMarker {
	out := make([]api.MapMarker, 0, len(a.buckets))
	for _, b := range a.buckets {
		if len(b.problems) <= maxSingles {
			for _, p := range b.problems {
				out = append(out, api.MapMarker{
					Latitude:  p.Location.Lat,
					Longitude: p.Location.Lng,
					Count:     1,
					ProblemID: p.ID,
					Upvotes:   p.Upvotes,
				})
			}
			continue
		}
		ll := s2.LatLngFromPoint(centroid(b.problems))
		out = append(out, api.MapMarker{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     int64(len(b.problems)),
		})
	}
	return out
}

func centroid(problems []*api.Problem) s2.Point {
	sum := r3.Vector{}
	for _, p := range problems {
		pt := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Location.Lat, p.Location.Lng))
		sum = sum.Add(pt.Vector)
	}
	return s2.Point{Vector: sum.Normalize()}
}
