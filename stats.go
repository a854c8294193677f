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
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/unit"
)

// StatType is a quantity that can be requested from a column.
type StatType int

// These are the available statistics.
const (
	Elevation StatType = iota
	Temperature
	MaterialProperties
	Pressure
	Flow
)

var statNames = []string{
	Elevation:          "elevation",
	Temperature:        "temperature",
	MaterialProperties: "materialProperties",
	Pressure:           "pressure",
	Flow:               "flow",
}

func (s StatType) String() string {
	if s < 0 || int(s) >= len(statNames) {
		return fmt.Sprintf("StatType(%d)", int(s))
	}
	return statNames[s]
}

// ParseStatType returns the statistic with the given name.
func ParseStatType(name string) (StatType, error) {
	for i, n := range statNames {
		if strings.EqualFold(n, name) {
			return StatType(i), nil
		}
	}
	return 0, configErr("statistic", name, "must be one of %v", statNames)
}

// Section is a part of a column.
type Section int

// These are the sections of a column.
const (
	SurfaceSection Section = iota
	HorizonSection
	EarthSection
	SeaSection
	AirSection
)

var sectionNames = []string{
	SurfaceSection: "surface",
	HorizonSection: "horizon",
	EarthSection:   "earth",
	SeaSection:     "sea",
	AirSection:     "air",
}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionNames[s]
}

// ParseSection returns the section with the given name.
func ParseSection(name string) (Section, error) {
	for i, n := range sectionNames {
		if strings.EqualFold(n, name) {
			return Section(i), nil
		}
	}
	return 0, configErr("section", name, "must be one of %v", sectionNames)
}

// StatRequest selects a statistic of one layer. LayerIndex counts
// from the bottom of the section.
type StatRequest struct {
	Type       StatType
	Section    Section
	LayerIndex int
}

func (r StatRequest) String() string {
	return fmt.Sprintf("{%s %s %d}", r.Type, r.Section, r.LayerIndex)
}

// Dimensions of the statistics.
var (
	meters       = unit.Dimensions{unit.LengthDim: 1}
	kelvin       = unit.Dimensions{unit.TemperatureDim: 1}
	kgPerM2      = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -2}
	pascals      = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -1, unit.TimeDim: -2}
	metersPerSec = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
)

// selectLayer returns the layer a request refers to.
func (c *Column) selectLayer(r StatRequest) (*Layer, error) {
	var idx []int
	switch r.Section {
	case SurfaceSection:
		if r.LayerIndex != 0 {
			return nil, configErr("layer index", r.LayerIndex, "the surface section has one layer")
		}
		return c.SurfaceLayer(), nil
	case HorizonSection:
		idx = []int{c.horizon}
	case EarthSection:
		idx = c.earth
	case SeaSection:
		idx = c.sea
	case AirSection:
		idx = c.air
	default:
		return nil, configErr("section", r.Section, "unknown section")
	}
	if r.LayerIndex < 0 || r.LayerIndex >= len(idx) {
		return nil, configErr("layer index", r.LayerIndex,
			"%s section of column (%d,%d) has %d layers", r.Section, c.Coord.Q, c.Coord.R, len(idx))
	}
	return c.layers[idx[r.LayerIndex]], nil
}

// Statistic returns the requested quantity. Elevation is the top of
// the layer, pressure is at the layer midpoint, material properties
// are the mass per unit area, and flow is the speed of the air.
func (c *Column) Statistic(r StatRequest) (*unit.Unit, error) {
	l, err := c.selectLayer(r)
	if err != nil {
		return nil, err
	}
	switch r.Type {
	case Elevation:
		return unit.New(l.Top, meters), nil
	case Temperature:
		return unit.New(l.Temperature(), kelvin), nil
	case MaterialProperties:
		return unit.New(l.Mixture.Mass(), kgPerM2), nil
	case Pressure:
		return unit.New(l.Pressure(l.Midpoint()), pascals), nil
	case Flow:
		v := l.Mixture.Velocity()
		return unit.New(math.Sqrt(v[0]*v[0]+v[1]*v[1]+v[2]*v[2]), metersPerSec), nil
	default:
		return nil, configErr("statistic", r.Type, "unknown statistic")
	}
}

// Messages returns a text description of the requested quantity.
func (c *Column) Messages(r StatRequest) ([]string, error) {
	l, err := c.selectLayer(r)
	if err != nil {
		return nil, err
	}
	if r.Type == MaterialProperties {
		return l.Mixture.Describe(), nil
	}
	v, err := c.Statistic(r)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s %s layer %d: %v", r.Type, l.Type, l.DepthIndex, v)}, nil
}

// Advection returns the horizontal velocity of the requested layer [m/s],
// with X pointing east and Y pointing north.
func (c *Column) Advection(r StatRequest) (geom.Point, error) {
	l, err := c.selectLayer(r)
	if err != nil {
		return geom.Point{}, err
	}
	v := l.Mixture.Velocity()
	return geom.Point{X: v[0], Y: v[1]}, nil
}
