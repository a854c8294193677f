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

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// mustElement returns a function that fails the test if an element
// could not be created.
func mustElement(t *testing.T) func(Element, error) Element {
	return func(e Element, err error) Element {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return e
	}
}

func testAir(t *testing.T, temperature, area, mass float64) *Mixture {
	t.Helper()
	dry := mustElement(t)(NewElementFromMass(DryAir, Gas, mass*0.99))
	vapor := mustElement(t)(NewElementFromMass(WaterVapor, Gas, mass*0.01))
	m, err := NewMixture(Gas, temperature, area, 1000, dry, vapor)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testSoil(t *testing.T, temperature, area float64) *Mixture {
	t.Helper()
	sand := mustElement(t)(NewElementFromVolume(Sand, Unset, 0.5))
	water := mustElement(t)(NewElementFromVolume(LiquidWater, Unset, 0.1))
	m, err := NewMixture(Solid, temperature, area, 0, sand, water)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMixturePhases(t *testing.T) {
	water := mustElement(t)(NewElementFromVolume(LiquidWater, Liquid, 1))
	if _, err := NewMixture(Gas, 300, 1, 1, water); err == nil {
		t.Error("liquid water should not be part of a gas mixture")
	}
	if _, err := NewMixture(Droplet, 300, 1, 1); err == nil {
		t.Error("droplet is not a mixture phase")
	}
	if _, err := NewMixture(Gas, 300, 1, 0); err == nil {
		t.Error("gas mixture without a volume should fail")
	}
	if _, err := NewMixture(Solid, 300, 1, 0, water); err != nil {
		t.Errorf("solid mixtures hold pore water: %v", err)
	}
	soil := testSoil(t, 300, 1)
	if err := soil.ResizeBy(2); err == nil {
		t.Error("only gas can be resized")
	}
}

func TestMixtureCombinesElements(t *testing.T) {
	a := mustElement(t)(NewElementFromMass(DryAir, Gas, 1))
	b := mustElement(t)(NewElementFromMols(DryAir, Gas, 1/DryAir.MolarMass()))
	m, err := NewMixture(Gas, 300, 1, 10, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Elements()) != 1 {
		t.Fatalf("want one element, have %d", len(m.Elements()))
	}
	if different(m.Mass(), 2, 1.e-12) {
		t.Errorf("mass: want 2, have %g", m.Mass())
	}
	if m.Volume() != 10 {
		t.Errorf("gas volume should be fixed, have %g", m.Volume())
	}
}

type mixtureSnapshot struct {
	Volume, Mass, Mols, HeatCapacity float64
	Albedo, SolarIndex, IRIndex      float64
	Conductivity                     float64
	Elements                         []Element
}

func snapshot(m *Mixture) mixtureSnapshot {
	return mixtureSnapshot{
		Volume: m.Volume(), Mass: m.Mass(), Mols: m.Mols(), HeatCapacity: m.HeatCapacity(),
		Albedo: m.Albedo(), SolarIndex: m.SolarAbsorptionIndex(), IRIndex: m.InfraredAbsorptionIndex(),
		Conductivity: m.Conductivity(),
		Elements:     m.Elements(),
	}
}

func TestCalculateParametersIdempotent(t *testing.T) {
	m := testSoil(t, 290, 3)
	before := snapshot(m)
	if err := m.CalculateParameters(); err != nil {
		t.Fatal(err)
	}
	if err := m.CalculateParameters(); err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(before, snapshot(m)); len(diff) != 0 {
		t.Errorf("parameters changed: %v", diff)
	}
}

func TestSolarBudget(t *testing.T) {
	for _, m := range []*Mixture{testAir(t, 280, 10, 10000), testSoil(t, 290, 10)} {
		if s := m.Albedo() + m.SolarAbsorptionIndex(); s > 1+1.e-12 || m.Albedo() < 0 || m.SolarAbsorptionIndex() < 0 {
			t.Errorf("%s: albedo %g + absorption %g", m.Phase(), m.Albedo(), m.SolarAbsorptionIndex())
		}
		const incident = 1000.
		trans, err := m.FilterSolarRadiation(incident)
		if err != nil {
			t.Fatal(err)
		}
		if total := trans + m.Reflected() + m.SolarAbsorbed(); different(total, incident, 1.e-12) {
			t.Errorf("%s: transmitted + reflected + absorbed = %g", m.Phase(), total)
		}
	}
	soil := testSoil(t, 290, 10)
	if soil.Albedo()+soil.SolarAbsorptionIndex() < 0.99 {
		t.Errorf("half a meter of soil should be opaque: transmits %g",
			1-soil.Albedo()-soil.SolarAbsorptionIndex())
	}
}

func TestSolarBudgetDegenerate(t *testing.T) {
	m := testSoil(t, 290, 1)
	m.albedo, m.solarIndex = 0.7, 0.5
	_, err := m.FilterSolarRadiation(10)
	var ne *NumericError
	if !errors.As(err, &ne) {
		t.Fatalf("want NumericError, have %v", err)
	}
	if ne.Quantity != "albedo + solar absorption index" {
		t.Errorf("quantity: %s", ne.Quantity)
	}
}

func TestTransferMixtureConservesMass(t *testing.T) {
	giving := testAir(t, 300, 2, 1000)
	receiving := testAir(t, 250, 5, 1000)
	total := giving.TrueMass() + receiving.TrueMass()
	totalMols := giving.TrueMols() + receiving.TrueMols()
	energy := giving.TrueHeatCapacity()*giving.Temperature() +
		receiving.TrueHeatCapacity()*receiving.Temperature()

	if err := TransferMixture(receiving, giving, 0.25); err != nil {
		t.Fatal(err)
	}
	if m := giving.TrueMass() + receiving.TrueMass(); different(m, total, 1.e-12) {
		t.Errorf("mass: want %g, have %g", total, m)
	}
	if n := giving.TrueMols() + receiving.TrueMols(); different(n, totalMols, 1.e-12) {
		t.Errorf("mols: want %g, have %g", totalMols, n)
	}
	if different(giving.TrueMass(), 0.75*2*1000, 1.e-12) {
		t.Errorf("giving mass: have %g", giving.TrueMass())
	}
	if e := giving.TrueHeatCapacity()*giving.Temperature() +
		receiving.TrueHeatCapacity()*receiving.Temperature(); different(e, energy, 1.e-12) {
		t.Errorf("enthalpy: want %g, have %g", energy, e)
	}
	if receiving.Temperature() <= 250 || receiving.Temperature() >= 300 {
		t.Errorf("mixed temperature %g", receiving.Temperature())
	}
	if giving.Temperature() != 300 {
		t.Errorf("giving temperature changed to %g", giving.Temperature())
	}
}

func TestTransferMixtureInvalid(t *testing.T) {
	air := testAir(t, 300, 1, 100)
	soil := testSoil(t, 300, 1)
	if err := TransferMixture(air, soil, 0.1); err == nil {
		t.Error("transfer between phases should fail")
	}
	if err := TransferMixture(air, testAir(t, 300, 1, 100), 1.5); err == nil {
		t.Error("proportion above one should fail")
	}
}

func TestConduction(t *testing.T) {
	tests := []struct {
		name string
		area float64
	}{
		{name: "small contact", area: 1},
		{name: "huge contact", area: 1.e12},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := testSoil(t, 320, 10)
			b := testSoil(t, 280, 10)
			q, err := Conduction(a, b, test.area)
			if err != nil {
				t.Fatal(err)
			}
			if q <= 0 {
				t.Errorf("heat should flow from hot to cold: %g", q)
			}
			if absDifferent(a.ConductiveNet()+b.ConductiveNet(), 0, 1.e-9) {
				t.Errorf("energy not conserved: %g + %g", a.ConductiveNet(), b.ConductiveNet())
			}
			ta := a.Temperature() + a.ConductiveNet()/a.TrueHeatCapacity()
			tb := b.Temperature() + b.ConductiveNet()/b.TrueHeatCapacity()
			if ta < tb-1.e-9 {
				t.Errorf("overshoot: %g < %g", ta, tb)
			}
		})
	}
}

func TestConductionLimit(t *testing.T) {
	a := testSoil(t, 320, 10)
	b := testSoil(t, 280, 10)
	q, err := Conduction(a, b, 1.e12)
	if err != nil {
		t.Fatal(err)
	}
	ca, cb := a.TrueHeatCapacity(), b.TrueHeatCapacity()
	if want := 40 * ca * cb / (ca + cb); different(q, want, 1.e-12) {
		t.Errorf("want heat %g, have %g", want, q)
	}
}

func TestHandleInOutRadiation(t *testing.T) {
	vapor := mustElement(t)(NewElementFromMass(WaterVapor, Gas, 1))
	newVapor := func() *Mixture {
		m, err := NewMixture(Gas, 300, 1, 1, vapor)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}

	t.Run("clamped at equilibrium", func(t *testing.T) {
		m := newVapor()
		e := m.EmitInfrared()
		m.AbsorbInfrared(16 * e)
		if teq := m.CalculateEquilibriumTemperature(); different(teq, 600, 1.e-12) {
			t.Errorf("equilibrium: want 600, have %g", teq)
		}
		if err := m.HandleInOutRadiation(); err != nil {
			t.Fatal(err)
		}
		if different(m.Temperature(), 600, 1.e-12) {
			t.Errorf("want 600 K, have %g", m.Temperature())
		}
		if m.InfraredAbsorbed() != 0 || m.InfraredEmitted() != 0 {
			t.Error("accumulators not reset")
		}
	})

	t.Run("cooling", func(t *testing.T) {
		m := newVapor()
		e := m.EmitInfrared()
		if err := m.HandleInOutRadiation(); err != nil {
			t.Fatal(err)
		}
		if want := 300 - e/m.TrueHeatCapacity(); different(m.Temperature(), want, 1.e-12) {
			t.Errorf("want %g K, have %g", want, m.Temperature())
		}
	})

	t.Run("no emitter", func(t *testing.T) {
		sand := mustElement(t)(NewElementFromVolume(Sand, Unset, 0))
		m, err := NewMixture(Solid, 300, 1, 0, sand)
		if err != nil {
			t.Fatal(err)
		}
		if !math.IsInf(m.CalculateEquilibriumTemperature(), 1) {
			t.Error("a mixture that does not emit has no equilibrium")
		}
		var ne *NumericError
		if err := m.HandleInOutRadiation(); !errors.As(err, &ne) {
			t.Errorf("empty mixture: want NumericError, have %v", err)
		}
	})
}
