/*
Copyright © 2019 the Strata authors.
This file is part of Strata.

Strata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Strata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Strata.  If not, see <http://www.gnu.org/licenses/>.
*/

package strata

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// HexCoord is an axial coordinate of a pointy-top hexagonal tile.
type HexCoord struct {
	Q, R int
}

// Add returns the coordinate offset by o.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// Neighbor returns the coordinate of the adjacent tile in direction d.
// Vertical directions return h itself.
func (h HexCoord) Neighbor(d Direction) HexCoord {
	if int(d) < len(hexOffsets) {
		return h.Add(hexOffsets[d])
	}
	return h
}

// Direction identifies a face of a layer.
type Direction int

// The six lateral directions of a pointy-top hex tile, followed by
// the two vertical directions.
const (
	East Direction = iota
	NorthEast
	NorthWest
	West
	SouthWest
	SouthEast
	Up
	Down
)

var hexOffsets = []HexCoord{
	East:      {1, 0},
	NorthEast: {1, -1},
	NorthWest: {0, -1},
	West:      {-1, 0},
	SouthWest: {-1, 1},
	SouthEast: {0, 1},
}

// LinkDirections are the directions for which a column builds its own
// lateral surfaces. The opposite three are built by the neighbor, so
// every pair of adjacent tiles shares exactly one surface per layer
// overlap.
var LinkDirections = []Direction{East, NorthEast, NorthWest}

func (d Direction) String() string {
	switch d {
	case East:
		return "E"
	case NorthEast:
		return "NE"
	case NorthWest:
		return "NW"
	case West:
		return "W"
	case SouthWest:
		return "SW"
	case SouthEast:
		return "SE"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Opposite returns the direction facing d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return (d + 3) % 6
	}
}

// Normal returns the outward unit normal of the face in direction d,
// with x pointing east, y pointing north and z pointing up.
func (d Direction) Normal() [3]float64 {
	switch d {
	case Up:
		return [3]float64{0, 0, 1}
	case Down:
		return [3]float64{0, 0, -1}
	default:
		θ := float64(d) * math.Pi / 3
		return [3]float64{math.Cos(θ), math.Sin(θ), 0}
	}
}

// HexGeometry describes the planar footprint of a tile grid.
type HexGeometry struct {
	// Radius is the distance from a tile center to each of its
	// vertices [m]. It is also the length of each edge.
	Radius float64
}

// Center returns the planar location of the center of tile h [m].
func (g HexGeometry) Center(h HexCoord) geom.Point {
	return geom.Point{
		X: g.Radius * math.Sqrt(3) * (float64(h.Q) + float64(h.R)/2),
		Y: -g.Radius * 1.5 * float64(h.R),
	}
}

// Polygon returns the footprint of tile h.
func (g HexGeometry) Polygon(h HexCoord) geom.Polygon {
	c := g.Center(h)
	ring := make([]geom.Point, 7)
	for i := 0; i < 6; i++ {
		θ := (30 + 60*float64(i)) * math.Pi / 180
		ring[i] = geom.Point{X: c.X + g.Radius*math.Cos(θ), Y: c.Y + g.Radius*math.Sin(θ)}
	}
	ring[6] = ring[0]
	return geom.Polygon{ring}
}

// Area returns the footprint area of a single tile [m²].
func (g HexGeometry) Area() float64 {
	return g.Polygon(HexCoord{}).Area()
}

// EdgeLength returns the length of the face shared by two adjacent tiles [m].
func (g HexGeometry) EdgeLength() float64 { return g.Radius }
