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
	"errors"
	"math"
	"testing"

	"github.com/kr/pretty"
)

var testGeometry = HexGeometry{Radius: 1000}

func newTestColumn(t *testing.T, id ColumnID, coord HexCoord, elevation float64) *Column {
	t.Helper()
	c, err := NewColumn(id, coord, ColumnParams{
		LandElevation: elevation,
		Temperature:   288,
		Latitude:      30,
	}, testGeometry, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func layerTypes(c *Column) []LayerType {
	var out []LayerType
	for _, l := range c.Layers() {
		out = append(out, l.Type)
	}
	return out
}

func checkContiguous(t *testing.T, c *Column) {
	t.Helper()
	layers := c.Layers()
	for i, l := range layers {
		if l.Index != i {
			t.Errorf("layer %d has index %d", i, l.Index)
		}
		if i > 0 && absDifferent(layers[i-1].Top, l.Bottom, 1.e-6) {
			t.Errorf("gap between layers %d and %d: %g != %g", i-1, i, layers[i-1].Top, l.Bottom)
		}
		if !(l.Bottom < l.Top) {
			t.Errorf("layer %d is inverted: [%g, %g]", i, l.Bottom, l.Top)
		}
		wantDown, wantUp := i-1, i+1
		if i == len(layers)-1 {
			wantUp = -1
		}
		if l.Down() != wantDown || l.Up() != wantUp {
			t.Errorf("layer %d links: down %d up %d", i, l.Down(), l.Up())
		}
	}
	if len(c.Vertical()) != len(layers)-1 {
		t.Errorf("want %d vertical surfaces, have %d", len(layers)-1, len(c.Vertical()))
	}
}

func TestColumnLand(t *testing.T) {
	c := newTestColumn(t, 0, HexCoord{}, 500)
	want := []LayerType{
		EarthLayer, EarthLayer, EarthLayer, EarthLayer, EarthLayer,
		HorizonLayer,
		AirLayer, AirLayer, AirLayer, AirLayer, AirLayer, AirLayer,
	}
	if diff := pretty.Diff(want, layerTypes(c)); len(diff) != 0 {
		t.Errorf("layer types: %v", diff)
	}
	checkContiguous(t, c)
	if s := c.SurfaceLayer(); s.Type != HorizonLayer || s.Top != 500 {
		t.Errorf("surface layer: %v [%g, %g]", s.Type, s.Bottom, s.Top)
	}
	if c.layers[c.air[0]].Bottom != 500 {
		t.Errorf("air starts at %g", c.layers[c.air[0]].Bottom)
	}
	layers := c.Layers()
	if top := layers[len(layers)-1].Top; top != 50000 {
		t.Errorf("top of column %g", top)
	}
	if c.layers[c.earth[0]].Mixture.Temperature() <= c.SurfaceTemperature() {
		t.Error("deep earth should be warmer than the surface")
	}
	if c.layers[c.air[5]].Temperature() != tropopauseTemp {
		t.Errorf("stratosphere temperature %g", c.layers[c.air[5]].Temperature())
	}
}

func TestColumnSea(t *testing.T) {
	tests := []struct {
		elevation float64
		sea       int
	}{
		{elevation: 0, sea: 0},
		{elevation: -1, sea: 1},
		{elevation: -200, sea: 1},
		{elevation: -3000, sea: 3},
		{elevation: -11000, sea: 5},
	}
	for _, test := range tests {
		c := newTestColumn(t, 0, HexCoord{}, test.elevation)
		checkContiguous(t, c)
		if len(c.sea) != test.sea {
			t.Errorf("elevation %g: want %d sea layers, have %d", test.elevation, test.sea, len(c.sea))
		}
		if test.sea > 0 {
			s := c.SurfaceLayer()
			if s.Type != SeaLayer || s.Top != 0 {
				t.Errorf("elevation %g: surface %v at %g", test.elevation, s.Type, s.Top)
			}
			if c.layers[c.horizon].Top != test.elevation {
				t.Errorf("elevation %g: sea floor at %g", test.elevation, c.layers[c.horizon].Top)
			}
		}
		if c.layers[c.air[0]].Bottom != math.Max(test.elevation, 0) {
			t.Errorf("elevation %g: air starts at %g", test.elevation, c.layers[c.air[0]].Bottom)
		}
	}
}

func TestColumnConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		p    ColumnParams
		cfg  func(*ColumnConfig)
	}{
		{name: "too deep", p: ColumnParams{LandElevation: -12000, Temperature: 280}},
		{name: "boundary layer reaches tropopause", p: ColumnParams{LandElevation: 11500, Temperature: 280}},
		{name: "zero temperature", p: ColumnParams{Temperature: 0}},
		{name: "bad latitude", p: ColumnParams{Temperature: 280, Latitude: 100}},
		{name: "NaN elevation", p: ColumnParams{LandElevation: math.NaN(), Temperature: 280}},
		{
			name: "no earth",
			p:    ColumnParams{Temperature: 280},
			cfg:  func(c *ColumnConfig) { c.EarthLayerHeights = nil },
		},
		{
			name: "sea bands ascend",
			p:    ColumnParams{Temperature: 280},
			cfg:  func(c *ColumnConfig) { c.SeaBands = []float64{0, -10, 5} },
		},
		{
			name: "stratopause below tropopause",
			p:    ColumnParams{Temperature: 280},
			cfg:  func(c *ColumnConfig) { c.Stratopause = 1000 },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultColumnConfig()
			if test.cfg != nil {
				test.cfg(cfg)
			}
			_, err := NewColumn(0, HexCoord{}, test.p, testGeometry, cfg)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("want ConfigurationError, have %v", err)
			}
		})
	}
}

func TestColumnLink(t *testing.T) {
	a := newTestColumn(t, 0, HexCoord{}, 0)
	b := newTestColumn(t, 1, HexCoord{}.Neighbor(East), 500)
	a.LinkNeighbors(map[Direction]*Column{East: b, West: b})
	if len(a.Lateral()) != 10 {
		t.Errorf("want 10 lateral surfaces, have %d", len(a.Lateral()))
	}
	if len(b.Lateral()) != 0 {
		t.Error("the neighbor should not own surfaces toward the column")
	}
	for _, s := range a.Lateral() {
		if s.Direction != East || s.Owner.Column != 0 || s.Tenant.Column != 1 {
			t.Errorf("surface %v", s)
		}
		if !(s.Area > 0) || s.Area > a.EdgeLength*(50000-12000) {
			t.Errorf("surface %v area %g", s, s.Area)
		}
	}
	if id, ok := b.NeighborID(West); !ok || id != 0 {
		t.Errorf("neighbor of b: %v %v", id, ok)
	}
	h, ok := a.layers[a.horizon].Neighbor(East)
	if !ok || h != (LayerHandle{Column: 1, Index: b.horizon}) {
		t.Errorf("horizon neighbor: %v %v", h, ok)
	}
	if h, ok := b.layers[b.horizon].Neighbor(West); !ok || h.Column != 0 {
		t.Errorf("horizon neighbor of b: %v %v", h, ok)
	}

	// Linking again replaces the surfaces.
	a.LinkNeighbors(map[Direction]*Column{East: b})
	if len(a.Lateral()) != 10 {
		t.Errorf("relink: want 10 lateral surfaces, have %d", len(a.Lateral()))
	}
}

func TestColumnRebuild(t *testing.T) {
	c := newTestColumn(t, 0, HexCoord{}, 500)
	var airMass []float64
	for _, l := range c.airLayers() {
		airMass = append(airMass, l.Mixture.TrueMass())
	}
	if err := c.Rebuild(-500); err != nil {
		t.Fatal(err)
	}
	checkContiguous(t, c)
	if len(c.sea) != 2 {
		t.Errorf("want 2 sea layers, have %d", len(c.sea))
	}
	for i, l := range c.airLayers() {
		if different(l.Mixture.TrueMass(), airMass[i], 1.e-12) {
			t.Errorf("air layer %d mass changed from %g to %g", i, airMass[i], l.Mixture.TrueMass())
		}
		if different(l.Mixture.Volume(), l.Thickness(), 1.e-12) {
			t.Errorf("air layer %d volume %g, thickness %g", i, l.Mixture.Volume(), l.Thickness())
		}
	}

	n := len(c.Layers())
	var ce *ConfigurationError
	if err := c.Rebuild(-20000); !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, have %v", err)
	}
	if len(c.Layers()) != n || c.LandElevation() != -500 {
		t.Error("failed rebuild changed the column")
	}
	checkContiguous(t, c)
	for i, l := range c.airLayers() {
		if different(l.Mixture.Volume(), l.Thickness(), 1.e-12) ||
			different(l.Mixture.TrueMass(), airMass[i], 1.e-12) {
			t.Errorf("failed rebuild resized air layer %d", i)
		}
	}
}

func TestColumnPressure(t *testing.T) {
	c := newTestColumn(t, 0, HexCoord{}, 0)
	if err := c.SimulatePressure(); err != nil {
		t.Fatal(err)
	}
	p := c.layers[c.air[0]].pBottom
	if p < 95000 || p > seaLevelPressure {
		t.Errorf("surface pressure %g", p)
	}
	layers := c.Layers()
	for i := 1; i < len(layers); i++ {
		if layers[i].pBottom != layers[i-1].pTop {
			t.Errorf("pressure discontinuity at layer %d", i)
		}
		if layers[i].pBottom > layers[i-1].pBottom {
			t.Errorf("pressure increases with height at layer %d", i)
		}
	}
}

func TestColumnPressureOnBuild(t *testing.T) {
	c := newTestColumn(t, 0, HexCoord{}, 100)
	surface := func() float64 {
		t.Helper()
		p, err := c.Statistic(StatRequest{Type: Pressure, Section: AirSection})
		if err != nil {
			t.Fatal(err)
		}
		return p.Value()
	}
	before := surface()
	if before < 50000 || before > seaLevelPressure {
		t.Errorf("new column boundary layer pressure %g", before)
	}
	if err := c.Rebuild(1500); err != nil {
		t.Fatal(err)
	}
	after := surface()
	if !(after > 0) || !(after < before) {
		t.Errorf("rebuilt column boundary layer pressure %g, was %g", after, before)
	}
}

func TestColumnHour(t *testing.T) {
	c := newTestColumn(t, 0, HexCoord{}, 100)
	c.solar, _ = NewSolarRadiation(30, 0, nil)
	steps := []func() error{
		func() error { return c.FilterSolarRadiation(c.Insolation(12)) },
		c.SimulateInfraredRadiation,
		c.SimulateConduction,
		c.SimulatePressure,
		c.SimulateLayerFlow,
	}
	for _, f := range steps {
		if err := f(); err != nil {
			t.Fatal(err)
		}
	}
	var absorbed float64
	for _, l := range c.Layers() {
		absorbed += l.Mixture.SolarAbsorbed() + l.Mixture.Reflected()
	}
	if in := c.diag.SolarIn; !(in > 0) || different(absorbed, in, 1.e-9) {
		t.Errorf("sunlight: %g in, %g absorbed or reflected", in, absorbed)
	}
	if err := c.EndHour(); err != nil {
		t.Fatal(err)
	}
	d := c.Diagnostics()
	if !(d.Escaped > 0) || !(d.Back > 0) || !(d.Reflected > 0) {
		t.Errorf("diagnostics: %+v", d)
	}
	for _, l := range c.Layers() {
		if l.Mixture.SolarAbsorbed() != 0 || l.Mixture.NetEnergy() != 0 {
			t.Errorf("%v layer %d accumulators not reset", l.Type, l.DepthIndex)
		}
		if tk := l.Temperature(); !(tk > 100) || tk > 1000 {
			t.Errorf("%v layer %d temperature %g", l.Type, l.DepthIndex, tk)
		}
	}
}
