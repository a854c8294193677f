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
)

func TestElementPhase(t *testing.T) {
	tests := []struct {
		s    Species
		p    Phase
		want Phase
		ok   bool
	}{
		{s: DryAir, p: Unset, want: Gas, ok: true},
		{s: DryAir, p: Gas, want: Gas, ok: true},
		{s: DryAir, p: Liquid},
		{s: LiquidWater, p: Unset, want: Liquid, ok: true},
		{s: CloudDroplet, p: Unset, want: Droplet, ok: true},
		{s: Sand, p: Unset, want: Particulate, ok: true},
		{s: Sand, p: Solid},
		{s: Bedrock, p: Solid, want: Solid, ok: true},
		{s: Species(99), p: Unset},
	}
	for _, test := range tests {
		e, err := NewElementFromVolume(test.s, test.p, 1)
		if !test.ok {
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("%v %v: want ConfigurationError, have %v", test.s, test.p, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v %v: %v", test.s, test.p, err)
			continue
		}
		if e.Phase != test.want {
			t.Errorf("%v: want phase %v, have %v", test.s, test.want, e.Phase)
		}
	}
}

func TestElementQuantities(t *testing.T) {
	e, err := NewElementFromMass(DryAir, Gas, DryAir.MolarMass()*10)
	if err != nil {
		t.Fatal(err)
	}
	if different(e.Mols(), 10, 1.e-12) {
		t.Errorf("mols: want 10, have %g", e.Mols())
	}
	if different(e.Volume(), e.Mass()/DryAir.Density(), 1.e-12) {
		t.Errorf("volume: have %g", e.Volume())
	}
	if different(e.HeatCapacity(), e.Mass()*DryAir.SpecificHeat(), 1.e-12) {
		t.Errorf("heat capacity: have %g", e.HeatCapacity())
	}
	half := e.Scaled(0.5)
	if different(half.Mass(), e.Mass()/2, 1.e-12) {
		t.Errorf("scaled mass: have %g", half.Mass())
	}

	w, err := NewElementFromVolume(LiquidWater, Liquid, 2)
	if err != nil {
		t.Fatal(err)
	}
	if different(w.Mass(), 2000, 1.e-12) {
		t.Errorf("water mass: want 2000, have %g", w.Mass())
	}
}

func TestElementBadAmount(t *testing.T) {
	if _, err := NewElementFromMols(Rock, Solid, -1); err == nil {
		t.Error("negative amount should fail")
	}
	var ne *NumericError
	if _, err := NewElementFromMass(Rock, Solid, math.NaN()); !errors.As(err, &ne) {
		t.Errorf("NaN amount: want NumericError, have %v", err)
	}
}
