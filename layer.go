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
)

// LayerType is the kind of a layer.
type LayerType int

// These are the layer types, from the bottom of a column to the top.
const (
	EarthLayer LayerType = iota
	HorizonLayer
	SeaLayer
	AirLayer
)

func (t LayerType) String() string {
	switch t {
	case EarthLayer:
		return "earth"
	case HorizonLayer:
		return "horizon"
	case SeaLayer:
		return "sea"
	case AirLayer:
		return "air"
	default:
		return fmt.Sprintf("LayerType(%d)", int(t))
	}
}

// Physical constants.
const (
	gravity          = 9.80665   // [m/s²]
	seaLevelPressure = 101325.   // [Pa]
	scaleHeight      = 8500.     // atmospheric scale height [m]
	rotationRate     = 7.2921e-5 // planetary angular velocity [rad/s]
	lapseRate        = 0.0065    // tropospheric lapse rate [K/m]
	tropopauseTemp   = 216.65    // [K]
	geothermal       = 0.025     // geothermal gradient [K/m]
	deepWaterTemp    = 277.      // [K]
)

// Fraction of air velocity retained from one hour to the next.
const (
	boundaryLayerDamping = 0.5
	upperAirDamping      = 0.8
)

// Layer is one horizontal band of material within a column. The set
// of layer types is closed, so behavior that differs by type is
// selected with a switch on Type.
type Layer struct {
	Type LayerType

	// Index is the position of the layer in the column stack,
	// counting from the bottom.
	Index int

	// DepthIndex is the position of the layer within its own section
	// of the column, counting from the bottom.
	DepthIndex int

	// Bottom and Top are absolute elevations [m].
	Bottom, Top float64

	// Surface is the land elevation of the column [m].
	Surface float64

	Mixture *Mixture

	up, down int

	pTop, pBottom float64

	// neighbors holds the horizon layers of adjacent columns.
	neighbors map[Direction]LayerHandle

	// coriolis is the Coriolis parameter of air layers [1/s].
	coriolis float64
}

// Up returns the stack index of the layer above, or -1.
func (l *Layer) Up() int { return l.up }

// Down returns the stack index of the layer below, or -1.
func (l *Layer) Down() int { return l.down }

// Thickness returns Top - Bottom [m].
func (l *Layer) Thickness() float64 { return l.Top - l.Bottom }

// Midpoint returns the elevation halfway between Bottom and Top [m].
func (l *Layer) Midpoint() float64 { return (l.Bottom + l.Top) / 2 }

// RelativeBottom returns the bottom elevation relative to the land surface [m].
func (l *Layer) RelativeBottom() float64 { return l.Bottom - l.Surface }

// RelativeTop returns the top elevation relative to the land surface [m].
func (l *Layer) RelativeTop() float64 { return l.Top - l.Surface }

// Temperature returns the temperature of the layer [K].
func (l *Layer) Temperature() float64 { return l.Mixture.Temperature() }

// Pressure returns the pressure at elevation z [Pa], interpolated
// linearly between the bottom and top of the layer. It is only
// meaningful after the column pressure profile has been calculated.
func (l *Layer) Pressure(z float64) float64 {
	f := (z - l.Bottom) / (l.Top - l.Bottom)
	return l.pBottom + f*(l.pTop-l.pBottom)
}

// Neighbor returns the horizon layer of the adjacent column in
// direction d, if the layer has one.
func (l *Layer) Neighbor(d Direction) (LayerHandle, bool) {
	h, ok := l.neighbors[d]
	return h, ok
}

// Validate checks the geometry of the layer.
func (l *Layer) Validate() error {
	if math.IsNaN(l.Bottom) || math.IsNaN(l.Top) || !(l.Bottom < l.Top) {
		return configErr("layer geometry", fmt.Sprintf("[%g, %g]", l.Bottom, l.Top),
			"%s layer %d bottom must be below its top", l.Type, l.DepthIndex)
	}
	if l.Mixture == nil {
		return configErr("mixture", nil, "%s layer %d has no material", l.Type, l.DepthIndex)
	}
	return nil
}

// simulateFlow applies the per-layer part of the hourly flow
// calculation. Only air layers move; the rest are extension points.
func (l *Layer) simulateFlow() error {
	switch l.Type {
	case EarthLayer, HorizonLayer, SeaLayer:
		return nil
	case AirLayer:
		damping := upperAirDamping
		if l.DepthIndex == 0 {
			damping = boundaryLayerDamping
		}
		v := l.Mixture.Velocity()
		// Deflect to the right in the northern hemisphere.
		α := -l.coriolis * secondsPerHour
		c, s := math.Cos(α), math.Sin(α)
		l.Mixture.SetVelocity([3]float64{
			damping * (c*v[0] - s*v[1]),
			damping * (s*v[0] + c*v[1]),
			damping * v[2],
		})
		return nil
	default:
		return configErr("layer type", l.Type, "unknown")
	}
}

// layerSpec holds what is needed to build the material of one layer.
type layerSpec struct {
	typ               LayerType
	depthIndex, count int
	bottom, top       float64
	surface, surfaceT float64
	area, latitude    float64
	tropopause        float64
}

// newLayer builds a layer and its material.
func newLayer(s layerSpec) (*Layer, error) {
	l := &Layer{
		Type:       s.typ,
		DepthIndex: s.depthIndex,
		Bottom:     s.bottom,
		Top:        s.top,
		Surface:    s.surface,
		up:         -1,
		down:       -1,
	}
	if math.IsNaN(s.bottom) || math.IsNaN(s.top) || !(s.bottom < s.top) {
		return nil, configErr("layer geometry", fmt.Sprintf("[%g, %g]", s.bottom, s.top),
			"%s layer %d bottom must be below its top", s.typ, s.depthIndex)
	}
	var err error
	switch s.typ {
	case EarthLayer:
		l.Mixture, err = earthMixture(s)
	case HorizonLayer:
		l.Mixture, err = horizonMixture(s)
	case SeaLayer:
		l.Mixture, err = seaMixture(s)
	case AirLayer:
		l.Mixture, err = airMixture(s)
		l.coriolis = 2 * rotationRate * math.Sin(s.latitude*math.Pi/180)
	default:
		err = configErr("layer type", s.typ, "unknown")
	}
	if err != nil {
		return nil, err
	}
	if s.typ == HorizonLayer {
		l.neighbors = make(map[Direction]LayerHandle)
	}
	return l, nil
}

type fraction struct {
	s Species
	f float64
}

// earthComposition returns volume fractions by depth. The deepest
// layer is always bedrock; layers nearer the surface grade from rock
// through clay to silt and sand.
func earthComposition(depthIndex, count int) []fraction {
	if depthIndex == 0 {
		return []fraction{{Bedrock, 1}}
	}
	switch count - 1 - depthIndex {
	case 0:
		return []fraction{{Silt, 0.5}, {Sand, 0.5}}
	case 1:
		return []fraction{{Clay, 0.5}, {Silt, 0.5}}
	case 2:
		return []fraction{{Rock, 0.6}, {Clay, 0.4}}
	default:
		return []fraction{{Rock, 1}}
	}
}

func volumeElements(thickness float64, fracs []fraction) ([]Element, error) {
	out := make([]Element, 0, len(fracs))
	for _, f := range fracs {
		e, err := NewElementFromVolume(f.s, Unset, thickness*f.f)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func earthMixture(s layerSpec) (*Mixture, error) {
	els, err := volumeElements(s.top-s.bottom, earthComposition(s.depthIndex, s.count))
	if err != nil {
		return nil, err
	}
	depth := s.surface - (s.top+s.bottom)/2
	return NewMixture(Solid, s.surfaceT+geothermal*depth, s.area, 0, els...)
}

func horizonMixture(s layerSpec) (*Mixture, error) {
	els, err := volumeElements(s.top-s.bottom, []fraction{
		{Clay, 0.3}, {Silt, 0.3}, {Sand, 0.3}, {LiquidWater, 0.1},
	})
	if err != nil {
		return nil, err
	}
	return NewMixture(Solid, s.surfaceT, s.area, 0, els...)
}

func seaMixture(s layerSpec) (*Mixture, error) {
	e, err := NewElementFromVolume(LiquidWater, Liquid, s.top-s.bottom)
	if err != nil {
		return nil, err
	}
	// Sea layers lie below sea level, which is elevation zero.
	depth := -(s.top + s.bottom) / 2
	t := deepWaterTemp + (s.surfaceT-deepWaterTemp)*math.Exp(-depth/200)
	return NewMixture(Liquid, t, s.area, 0, e)
}

// barometric returns the hydrostatic pressure at elevation z [Pa]
// for an isothermal atmosphere.
func barometric(z float64) float64 {
	return seaLevelPressure * math.Exp(-z/scaleHeight)
}

// specificHumidity returns the initial water vapor mass fraction at
// elevation z above the ground.
func specificHumidity(z float64) float64 {
	return math.Max(5.e-6, 0.012*math.Exp(-z/2000))
}

func airMixture(s layerSpec) (*Mixture, error) {
	mass := (barometric(s.bottom) - barometric(s.top)) / gravity
	ground := math.Max(s.surface, 0)
	mid := (s.bottom+s.top)/2 - ground
	q := specificHumidity(mid)
	dry, err := NewElementFromMass(DryAir, Gas, mass*(1-q))
	if err != nil {
		return nil, err
	}
	vapor, err := NewElementFromMass(WaterVapor, Gas, mass*q)
	if err != nil {
		return nil, err
	}
	t := math.Max(tropopauseTemp, s.surfaceT-lapseRate*mid)
	if mid+ground > s.tropopause {
		t = tropopauseTemp
	}
	return NewMixture(Gas, t, s.area, s.top-s.bottom, dry, vapor)
}
