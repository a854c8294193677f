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

// ColumnConfig holds the geometry shared by every column.
type ColumnConfig struct {
	// EarthLayerHeights are the thicknesses of the earth layers from
	// the deepest upward [m].
	EarthLayerHeights []float64

	// HorizonDepth is the thickness of the soil horizon [m].
	HorizonDepth float64

	// SeaBands are the boundaries of the ocean depth bands, starting
	// at sea level and descending [m].
	SeaBands []float64

	// BoundaryLayerHeight is the thickness of the lowest air layer [m].
	BoundaryLayerHeight float64

	// TroposphereLayers is the number of equal bands between the top
	// of the boundary layer and the tropopause.
	TroposphereLayers int

	// Tropopause and Stratopause are absolute elevations [m].
	Tropopause, Stratopause float64

	// FlowConstant converts area times pressure difference into the
	// fraction of an air layer that moves in one hour [1/(m²·Pa)].
	FlowConstant float64
}

// DefaultColumnConfig returns Earth-like column geometry with six air
// layers.
func DefaultColumnConfig() *ColumnConfig {
	return &ColumnConfig{
		EarthLayerHeights:   []float64{1000, 400, 100, 25, 5},
		HorizonDepth:        1,
		SeaBands:            []float64{0, -200, -1000, -4000, -6000, -11000},
		BoundaryLayerHeight: 1000,
		TroposphereLayers:   4,
		Tropopause:          12000,
		Stratopause:         50000,
		FlowConstant:        DefaultFlowConstant,
	}
}

// Validate checks the configuration for consistency.
func (c *ColumnConfig) Validate() error {
	if len(c.EarthLayerHeights) == 0 {
		return configErr("EarthLayerHeights", c.EarthLayerHeights, "need at least one earth layer")
	}
	for _, h := range c.EarthLayerHeights {
		if !(h > 0) {
			return configErr("EarthLayerHeights", c.EarthLayerHeights, "heights must be > 0")
		}
	}
	if !(c.HorizonDepth > 0) {
		return configErr("HorizonDepth", c.HorizonDepth, "must be > 0")
	}
	if len(c.SeaBands) < 2 || c.SeaBands[0] != 0 {
		return configErr("SeaBands", c.SeaBands, "need at least two boundaries starting at 0")
	}
	for i := 1; i < len(c.SeaBands); i++ {
		if !(c.SeaBands[i] < c.SeaBands[i-1]) {
			return configErr("SeaBands", c.SeaBands, "boundaries must descend")
		}
	}
	if !(c.BoundaryLayerHeight > 0) {
		return configErr("BoundaryLayerHeight", c.BoundaryLayerHeight, "must be > 0")
	}
	if c.TroposphereLayers < 1 {
		return configErr("TroposphereLayers", c.TroposphereLayers, "must be ≥ 1")
	}
	if !(c.Tropopause > 0) || !(c.Stratopause > c.Tropopause) {
		return configErr("Stratopause", c.Stratopause, "must be above the tropopause (%g)", c.Tropopause)
	}
	if math.IsNaN(c.FlowConstant) || c.FlowConstant < 0 {
		return configErr("FlowConstant", c.FlowConstant, "must be ≥ 0")
	}
	return nil
}

// ColumnParams are the properties of a single tile.
type ColumnParams struct {
	// LandElevation is the elevation of the top of the soil horizon
	// relative to sea level [m].
	LandElevation float64

	// Temperature is the initial surface temperature [K].
	Temperature float64

	// Latitude and Longitude are in degrees.
	Latitude, Longitude float64
}

// Diagnostics are radiative totals for one hour [kJ].
type Diagnostics struct {
	SolarIn, Reflected float64
	Escaped, Back      float64
	Flows, Backflows   int
}

// Column is the stack of layers beneath and above one tile.
type Column struct {
	ID         ColumnID
	Coord      HexCoord
	Area       float64 // [m²]
	EdgeLength float64 // [m]

	params ColumnParams
	cfg    *ColumnConfig

	// layers is the flattened stack, bottom first.
	layers  []*Layer
	earth   []int
	horizon int
	sea     []int
	air     []int

	// vertical[i] joins layers i and i+1.
	vertical []*SharedSurface

	// lateral holds the surfaces this column owns toward its
	// neighbors.
	lateral   []*SharedSurface
	neighbors map[Direction]ColumnID

	solar *SolarRadiation

	diag, last Diagnostics
}

// NewColumn builds the layers of a tile.
func NewColumn(id ColumnID, coord HexCoord, p ColumnParams, g HexGeometry, cfg *ColumnConfig) (*Column, error) {
	if cfg == nil {
		cfg = DefaultColumnConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !(g.Radius > 0) {
		return nil, configErr("tile radius", g.Radius, "must be > 0")
	}
	c := &Column{
		ID:         id,
		Coord:      coord,
		Area:       g.Area(),
		EdgeLength: g.EdgeLength(),
		params:     p,
		cfg:        cfg,
		neighbors:  make(map[Direction]ColumnID),
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Column) spec(t LayerType, i, n int, bottom, top float64) layerSpec {
	return layerSpec{
		typ: t, depthIndex: i, count: n,
		bottom: bottom, top: top,
		surface: c.params.LandElevation, surfaceT: c.params.Temperature,
		area: c.Area, latitude: c.params.Latitude,
		tropopause: c.cfg.Tropopause,
	}
}

// build replaces the layers of the column according to its
// parameters. The column is unchanged if an error is returned.
func (c *Column) build() error {
	p := c.params
	if math.IsNaN(p.LandElevation) || math.IsInf(p.LandElevation, 0) {
		return configErr("LandElevation", p.LandElevation, "must be finite")
	}
	if !(p.Temperature > 0) {
		return configErr("Temperature", p.Temperature, "must be > 0 K")
	}
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return configErr("Latitude", p.Latitude, "must be between -90 and 90 degrees")
	}
	var earth, sea, air []*Layer

	horizonBottom := p.LandElevation - c.cfg.HorizonDepth
	z := horizonBottom
	for _, h := range c.cfg.EarthLayerHeights {
		z -= h
	}
	n := len(c.cfg.EarthLayerHeights)
	for i, h := range c.cfg.EarthLayerHeights {
		l, err := newLayer(c.spec(EarthLayer, i, n, z, z+h))
		if err != nil {
			return err
		}
		earth = append(earth, l)
		z += h
	}
	horizon, err := newLayer(c.spec(HorizonLayer, 0, 1, horizonBottom, p.LandElevation))
	if err != nil {
		return err
	}

	if p.LandElevation < 0 {
		bands := c.cfg.SeaBands
		if p.LandElevation < bands[len(bands)-1] {
			return configErr("LandElevation", p.LandElevation,
				"sea floor is below the deepest ocean band (%g m)", bands[len(bands)-1])
		}
		for i := len(bands) - 1; i > 0; i-- {
			bottom := math.Max(bands[i], p.LandElevation)
			top := bands[i-1]
			if top <= bottom {
				continue
			}
			l, err := newLayer(c.spec(SeaLayer, len(sea), 0, bottom, top))
			if err != nil {
				return err
			}
			sea = append(sea, l)
		}
	}

	ground := math.Max(p.LandElevation, 0)
	blTop := ground + c.cfg.BoundaryLayerHeight
	if blTop >= c.cfg.Tropopause {
		return configErr("LandElevation", p.LandElevation,
			"boundary layer top (%g m) reaches the tropopause (%g m)", blTop, c.cfg.Tropopause)
	}
	bounds := []float64{ground, blTop}
	dz := (c.cfg.Tropopause - blTop) / float64(c.cfg.TroposphereLayers)
	for i := 1; i < c.cfg.TroposphereLayers; i++ {
		bounds = append(bounds, blTop+float64(i)*dz)
	}
	bounds = append(bounds, c.cfg.Tropopause, c.cfg.Stratopause)
	for i := 0; i < len(bounds)-1; i++ {
		l, err := newLayer(c.spec(AirLayer, i, len(bounds)-1, bounds[i], bounds[i+1]))
		if err != nil {
			return err
		}
		air = append(air, l)
	}

	stack := append(append(append(earth, horizon), sea...), air...)
	if err := checkStack(stack); err != nil {
		return err
	}
	c.layers = stack
	c.earth, c.sea, c.air = nil, nil, nil
	for i, l := range stack {
		switch l.Type {
		case EarthLayer:
			c.earth = append(c.earth, i)
		case HorizonLayer:
			c.horizon = i
		case SeaLayer:
			c.sea = append(c.sea, i)
		case AirLayer:
			c.air = append(c.air, i)
		}
	}
	c.flatten()
	return c.SimulatePressure()
}

// checkStack verifies that the layers are ordered bottom to top with
// no gaps or overlaps.
func checkStack(stack []*Layer) error {
	const tolerance = 1.e-6
	for i, l := range stack {
		if err := l.Validate(); err != nil {
			return err
		}
		if i > 0 && math.Abs(stack[i-1].Top-l.Bottom) > tolerance {
			return configErr("layer geometry", fmt.Sprintf("%g != %g", stack[i-1].Top, l.Bottom),
				"%s layer %d does not start where %s layer %d ends",
				l.Type, l.DepthIndex, stack[i-1].Type, stack[i-1].DepthIndex)
		}
		if i > 0 && stack[i-1].Type > l.Type {
			return configErr("layer order", l.Type, "cannot be above %s", stack[i-1].Type)
		}
	}
	return nil
}

// flatten sets the stack indices and vertical links and rebuilds the
// vertical surfaces. It must be called whenever layers are added or
// removed.
func (c *Column) flatten() {
	c.vertical = nil
	for i, l := range c.layers {
		l.Index = i
		l.down, l.up = i-1, i+1
		if i == len(c.layers)-1 {
			l.up = -1
		}
		if i > 0 {
			c.vertical = append(c.vertical, NewSharedSurface(
				LayerHandle{c.ID, i - 1}, LayerHandle{c.ID, i}, Up, c.Area, l.Bottom))
		}
	}
}

// Layer implements Resolver for the layers of this column.
func (c *Column) Layer(h LayerHandle) (*Layer, error) {
	if h.Column != c.ID {
		return nil, configErr("column", h.Column, "layer handle does not belong to column %d", c.ID)
	}
	if h.Index < 0 || h.Index >= len(c.layers) {
		return nil, configErr("layer index", h.Index, "column has %d layers", len(c.layers))
	}
	return c.layers[h.Index], nil
}

// Layers returns the stack, bottom first.
func (c *Column) Layers() []*Layer {
	return append([]*Layer(nil), c.layers...)
}

// Params returns the tile parameters the column was built from.
func (c *Column) Params() ColumnParams { return c.params }

// LandElevation returns the elevation of the top of the soil horizon [m].
func (c *Column) LandElevation() float64 { return c.params.LandElevation }

// SurfaceLayer returns the layer exposed to the atmosphere: the top
// sea layer if there is one, otherwise the horizon.
func (c *Column) SurfaceLayer() *Layer {
	if len(c.sea) > 0 {
		return c.layers[c.sea[len(c.sea)-1]]
	}
	return c.layers[c.horizon]
}

// SurfaceTemperature returns the temperature of the surface layer [K].
func (c *Column) SurfaceTemperature() float64 { return c.SurfaceLayer().Temperature() }

// BoundaryLayerTemperature returns the temperature of the lowest air layer [K].
func (c *Column) BoundaryLayerTemperature() float64 {
	return c.layers[c.air[0]].Temperature()
}

// Vertical returns the surfaces between vertically adjacent layers.
func (c *Column) Vertical() []*SharedSurface { return c.vertical }

// Lateral returns the surfaces this column owns toward its neighbors.
func (c *Column) Lateral() []*SharedSurface { return c.lateral }

// NeighborID returns the column adjacent in direction d, if linked.
func (c *Column) NeighborID(d Direction) (ColumnID, bool) {
	id, ok := c.neighbors[d]
	return id, ok
}

// Diagnostics returns the radiative totals of the last completed hour.
func (c *Column) Diagnostics() Diagnostics { return c.last }

// LinkNeighbors builds lateral surfaces toward the given neighbors.
// Only the East, NorthEast, and NorthWest directions are used, so that
// each pair of adjacent columns shares one set of surfaces.
func (c *Column) LinkNeighbors(neighbors map[Direction]*Column) {
	for _, d := range LinkDirections {
		if n, ok := neighbors[d]; ok && n != nil {
			c.linkNeighbor(d, n)
		}
	}
}

// linkNeighbor replaces the surfaces toward direction d with surfaces
// between overlapping air layers of c and n.
func (c *Column) linkNeighbor(d Direction, n *Column) {
	c.unlink(d)
	c.neighbors[d] = n.ID
	n.neighbors[d.Opposite()] = c.ID
	for _, ai := range c.air {
		a := c.layers[ai]
		for _, bi := range n.air {
			b := n.layers[bi]
			lo, hi := math.Max(a.Bottom, b.Bottom), math.Min(a.Top, b.Top)
			if hi <= lo {
				continue
			}
			c.lateral = append(c.lateral, NewSharedSurface(
				LayerHandle{c.ID, ai}, LayerHandle{n.ID, bi}, d, c.EdgeLength*(hi-lo), (lo+hi)/2))
		}
	}
	c.layers[c.horizon].neighbors[d] = LayerHandle{n.ID, n.horizon}
	n.layers[n.horizon].neighbors[d.Opposite()] = LayerHandle{c.ID, c.horizon}
}

// unlink removes the surfaces this column owns in direction d.
func (c *Column) unlink(d Direction) {
	kept := c.lateral[:0]
	for _, s := range c.lateral {
		if s.Direction != d {
			kept = append(kept, s)
		}
	}
	c.lateral = kept
	delete(c.layers[c.horizon].neighbors, d)
}

// Rebuild regenerates the column for a new land elevation. Subsurface
// and sea layers are rebuilt at the current surface temperature. Air
// layers keep their material, which is resized to the new bands.
// Lateral surfaces are dropped and must be linked again.
func (c *Column) Rebuild(landElevation float64) error {
	old := *c
	oldAir := make([]*Layer, len(c.air))
	for i, ai := range c.air {
		oldAir[i] = c.layers[ai]
	}
	c.params.LandElevation = landElevation
	c.params.Temperature = c.SurfaceTemperature()
	if err := c.build(); err != nil {
		*c = old
		return err
	}
	ratios := make([]float64, len(c.air))
	for i, ai := range c.air {
		r := c.layers[ai].Thickness() / oldAir[i].Thickness()
		if !(r > 0) || math.IsInf(r, 0) || oldAir[i].Mixture.Phase() != Gas {
			*c = old
			return numericErr("air layer resize", r, fmt.Sprintf("air layer %d", i))
		}
		ratios[i] = r
	}
	for i, ai := range c.air {
		m := oldAir[i].Mixture
		if err := m.ResizeBy(ratios[i]); err != nil {
			for j := 0; j <= i; j++ {
				oldAir[j].Mixture.ResizeBy(1 / ratios[j])
			}
			*c = old
			return err
		}
		c.layers[ai].Mixture = m
	}
	c.lateral = nil
	return c.SimulatePressure()
}

// Insolation returns the sunlight reaching the top of the column
// during hour t [kJ]. Columns built outside a World receive none.
func (c *Column) Insolation(t SimTime) float64 {
	if c.solar == nil {
		return 0
	}
	return c.solar.Incident(t, c.Area)
}

// FilterSolarRadiation passes the incident sunlight [kJ] down through
// the column starting at the top layer. Whatever reaches the bottom
// layer is absorbed there.
func (c *Column) FilterSolarRadiation(incident float64) error {
	c.diag.SolarIn += incident
	return c.filterSolar(len(c.layers)-1, incident)
}

func (c *Column) filterSolar(i int, incident float64) error {
	l := c.layers[i]
	rem, err := l.Mixture.FilterSolarRadiation(incident)
	if err != nil {
		return fmt.Errorf("%s layer %d: %w", l.Type, l.DepthIndex, err)
	}
	if l.down < 0 {
		l.Mixture.AbsorbSolar(rem)
		return nil
	}
	return c.filterSolar(l.down, rem)
}

// SimulateEvaporation moves water between the surface and the
// boundary layer. Phase change is not yet modeled.
func (c *Column) SimulateEvaporation() error { return nil }

// SimulateInfraredRadiation exchanges infrared radiation between the
// surface and the air layers. Radiation that returns to the surface and
// is not absorbed there continues into the layers below.
func (c *Column) SimulateInfraredRadiation() error {
	stack := append([]*Layer{c.SurfaceLayer()}, c.airLayers()...)
	emitted := make([]float64, len(stack))
	absorption := make([]float64, len(stack))
	for i, l := range stack {
		emitted[i] = l.Mixture.EmitInfrared()
		absorption[i] = l.Mixture.InfraredAbsorptionIndex()
	}
	b, err := InfraredExchange(emitted, absorption)
	if err != nil {
		return err
	}
	for i := 1; i < len(stack); i++ {
		stack[i].Mixture.AbsorbInfrared(b.Absorbed(i))
	}
	rem := b.Back
	l := stack[0]
	for {
		rem = l.Mixture.FilterInfrared(rem)
		if l.down < 0 {
			l.Mixture.AbsorbInfrared(rem)
			break
		}
		l = c.layers[l.down]
	}
	c.diag.Escaped += b.Escaped
	c.diag.Back += b.Back
	return nil
}

func (c *Column) airLayers() []*Layer {
	out := make([]*Layer, len(c.air))
	for i, ai := range c.air {
		out[i] = c.layers[ai]
	}
	return out
}

// SimulateConduction conducts heat across every vertical surface.
func (c *Column) SimulateConduction() error {
	for i, s := range c.vertical {
		if _, err := Conduction(c.layers[i].Mixture, c.layers[i+1].Mixture, s.Area); err != nil {
			return fmt.Errorf("between layers %d and %d: %w", i, i+1, err)
		}
	}
	return nil
}

// SimulatePressure calculates the hydrostatic pressure profile from
// the top of the column down.
func (c *Column) SimulatePressure() error {
	p := 0.
	for i := len(c.layers) - 1; i >= 0; i-- {
		l := c.layers[i]
		l.pTop = p
		p += gravity * l.Mixture.Mass()
		l.pBottom = p
		if math.IsNaN(p) {
			return numericErr("pressure", p, fmt.Sprintf("%s layer %d", l.Type, l.DepthIndex))
		}
	}
	return nil
}

// SimulateCondensation forms cloud droplets from water vapor. Phase
// change is not yet modeled.
func (c *Column) SimulateCondensation() error { return nil }

// SimulatePrecipitation removes cloud droplets from the air. Phase
// change is not yet modeled.
func (c *Column) SimulatePrecipitation() error { return nil }

// BuildPressureDifferentials builds the pressure differential of every
// lateral surface owned by the column.
func (c *Column) BuildPressureDifferentials(r Resolver) error {
	for _, s := range c.lateral {
		if err := s.BuildPressureDifferential(r); err != nil {
			return err
		}
	}
	return nil
}

// FlowAir flows air across every lateral surface owned by the column.
// BuildPressureDifferentials must have been called first.
func (c *Column) FlowAir(r Resolver) error { return c.flowAir(r, nil) }

// flowAir is FlowAir, except that surfaces whose tenant matches skip
// are discarded instead.
func (c *Column) flowAir(r Resolver, skip func(LayerHandle) bool) error {
	for _, s := range c.lateral {
		if skip != nil && skip(s.Tenant) {
			s.Discard()
			continue
		}
		res, err := s.Flow(r, c.cfg.FlowConstant)
		if err != nil {
			return err
		}
		if res.Proportion > 0 {
			c.diag.Flows++
			if res.Backflow {
				c.diag.Backflows++
			}
		}
	}
	return nil
}

// SimulateLayerFlow applies the per-layer flow calculation, which
// damps and deflects air velocities.
func (c *Column) SimulateLayerFlow() error {
	for _, l := range c.layers {
		if err := l.simulateFlow(); err != nil {
			return err
		}
	}
	return nil
}

// SimulateAirFlow builds and then flows every lateral surface owned by
// the column and updates the layer velocities. Within a World the two
// halves are run separately across all columns.
func (c *Column) SimulateAirFlow(r Resolver) error {
	if err := c.BuildPressureDifferentials(r); err != nil {
		return err
	}
	if err := c.FlowAir(r); err != nil {
		return err
	}
	return c.SimulateLayerFlow()
}

// SimulateWaterFlow moves water between the horizon layers of
// adjacent columns. Surface hydrology is not yet modeled.
func (c *Column) SimulateWaterFlow() error { return nil }

// SimulatePlants models vegetation. Vegetation is not yet modeled.
func (c *Column) SimulatePlants() error { return nil }

// EndHour applies the energy collected over the hour to each layer's
// temperature and stores the hour's diagnostics.
func (c *Column) EndHour() error {
	for _, l := range c.layers {
		c.diag.Reflected += l.Mixture.Reflected()
	}
	for _, l := range c.layers {
		if err := l.Mixture.HandleInOutRadiation(); err != nil {
			return fmt.Errorf("%s layer %d: %w", l.Type, l.DepthIndex, err)
		}
	}
	c.last, c.diag = c.diag, Diagnostics{}
	return nil
}

// discardHour drops the accumulators of an aborted hour.
func (c *Column) discardHour() {
	for _, l := range c.layers {
		l.Mixture.resetAccumulators()
	}
	for _, s := range c.lateral {
		s.Discard()
	}
	c.diag = Diagnostics{}
}
