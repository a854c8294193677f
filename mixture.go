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
	"sort"
)

const (
	// stefanBoltzmann is the Stefan-Boltzmann constant [W/m²/K⁴].
	stefanBoltzmann = 5.670374419e-8

	// secondsPerHour converts W to J per hour.
	secondsPerHour = 3600.

	// kJ per J.
	kilo = 1. / 1000.

	// eddyFactor scales the molecular conductivity of gases to
	// account for turbulent mixing.
	eddyFactor = 1.e4

	// indexTolerance is the amount by which albedo plus absorption
	// may exceed one before it is treated as an error.
	indexTolerance = 1.e-12
)

// Mixture is a collection of elements sharing one temperature and one
// volume. Element quantities are per square meter of tile footprint;
// "true" quantities are scaled by the footprint area. Energy
// accumulators are true quantities [kJ] collected over the current hour.
type Mixture struct {
	elements    map[Species]Element
	phase       Phase
	temperature float64 // [K]
	area        float64 // tile footprint [m²]
	fixedVolume float64 // gas layers only [m³/m²]
	velocity    [3]float64

	volume, mass, mols, heatCapacity float64
	albedo, solarIndex, irIndex      float64
	conductivity                     float64

	solarAbsorbed, reflected float64
	irAbsorbed, irEmitted    float64
	conductive               float64
}

// admits reports whether an element in phase p may be part of a
// mixture in phase m.
func admits(m, p Phase) bool {
	switch m {
	case Gas:
		return p == Gas || p == Droplet
	case Liquid:
		return p == Liquid || p == Particulate
	case Solid:
		return p == Solid || p == Particulate || p == Liquid
	}
	return false
}

// NewMixture returns a mixture of the given elements. phase must be
// Gas, Liquid, or Solid. fixedVolume is the geometric volume per unit
// footprint area of a gas mixture [m³/m²] and is ignored for other
// phases. Elements of the same species are combined.
func NewMixture(phase Phase, temperature, area, fixedVolume float64, elements ...Element) (*Mixture, error) {
	if phase != Gas && phase != Liquid && phase != Solid {
		return nil, configErr("phase", phase, "mixtures must be gas, liquid, or solid")
	}
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, configErr("temperature", temperature, "must be > 0 K")
	}
	if !(area > 0) {
		return nil, configErr("area", area, "must be > 0")
	}
	if phase == Gas && !(fixedVolume > 0) {
		return nil, configErr("fixedVolume", fixedVolume, "gas mixtures need a volume > 0")
	}
	m := &Mixture{
		elements:    make(map[Species]Element),
		phase:       phase,
		temperature: temperature,
		area:        area,
	}
	if phase == Gas {
		m.fixedVolume = fixedVolume
	}
	for _, e := range elements {
		if !admits(phase, e.Phase) {
			return nil, configErr("phase", e.Phase, "%s cannot be part of a %s mixture", e.Species, phase)
		}
		m.add(e)
	}
	if err := m.CalculateParameters(); err != nil {
		return nil, err
	}
	return m, nil
}

// add merges e into the mixture, keeping the defining measure of any
// element already present.
func (m *Mixture) add(e Element) {
	old, ok := m.elements[e.Species]
	if !ok {
		m.elements[e.Species] = e
		return
	}
	switch old.measure {
	case byVolume:
		old.amount += e.Volume()
	case byMols:
		old.amount += e.Mols()
	default:
		old.amount += e.Mass()
	}
	m.elements[e.Species] = old
}

// CalculateParameters recomputes the derived totals and radiative
// properties from the element list. It has no other side effects, so
// calling it more than once in a row gives the same result.
func (m *Mixture) CalculateParameters() error {
	var volume, mass, mols, heatCap float64
	var τSolar, τIR, albedoWeight, condWeight float64
	for _, e := range m.elements {
		p := species[e.Species]
		em := e.Mass()
		if math.IsNaN(em) || em < 0 {
			return numericErr("mass", em, e.Species.String())
		}
		ev := e.Volume()
		volume += ev
		mass += em
		mols += e.Mols()
		heatCap += e.HeatCapacity()
		τ := p.solarAtten * em
		τSolar += τ
		albedoWeight += p.albedo * τ
		τIR += p.irAtten * em
		condWeight += p.conductivity * ev
	}
	if volume > 0 {
		m.conductivity = condWeight / volume
	} else {
		m.conductivity = 0
	}
	if m.phase == Gas {
		m.conductivity *= eddyFactor
		volume = m.fixedVolume
	}
	m.volume, m.mass, m.mols, m.heatCapacity = volume, mass, mols, heatCap

	extinct := -math.Expm1(-τSolar)
	if τSolar > 0 {
		m.albedo = albedoWeight / τSolar * extinct
	} else {
		m.albedo = 0
	}
	m.solarIndex = extinct - m.albedo
	m.irIndex = -math.Expm1(-τIR)

	for _, v := range []struct {
		name string
		val  float64
	}{{"volume", volume}, {"heat capacity", heatCap}, {"albedo", m.albedo},
		{"solar absorption index", m.solarIndex}, {"infrared absorption index", m.irIndex}} {
		if math.IsNaN(v.val) || v.val < 0 {
			return numericErr(v.name, v.val, "calculating mixture parameters")
		}
	}
	return nil
}

// Phase returns the phase of the mixture.
func (m *Mixture) Phase() Phase { return m.phase }

// Temperature returns the mixture temperature [K].
func (m *Mixture) Temperature() float64 { return m.temperature }

// Area returns the footprint area of the tile the mixture belongs to [m²].
func (m *Mixture) Area() float64 { return m.area }

// Volume returns the volume per unit footprint area [m³/m²], which is
// also the thickness of the mixture [m].
func (m *Mixture) Volume() float64 { return m.volume }

// TrueVolume returns the volume of the mixture over the whole tile [m³].
func (m *Mixture) TrueVolume() float64 { return m.volume * m.area }

// Mass returns the mass per unit area [kg/m²].
func (m *Mixture) Mass() float64 { return m.mass }

// TrueMass returns the mass over the whole tile [kg].
func (m *Mixture) TrueMass() float64 { return m.mass * m.area }

// Mols returns the amount per unit area [mol/m²].
func (m *Mixture) Mols() float64 { return m.mols }

// TrueMols returns the amount over the whole tile [mol].
func (m *Mixture) TrueMols() float64 { return m.mols * m.area }

// HeatCapacity returns the heat capacity per unit area [kJ/K/m²].
func (m *Mixture) HeatCapacity() float64 { return m.heatCapacity }

// TrueHeatCapacity returns the heat capacity over the whole tile [kJ/K].
func (m *Mixture) TrueHeatCapacity() float64 { return m.heatCapacity * m.area }

// MolarDensity returns true mols over true volume [mol/m³].
func (m *Mixture) MolarDensity() float64 { return m.mols / m.volume }

// Density returns the mass density [kg/m³].
func (m *Mixture) Density() float64 { return m.mass / m.volume }

// Albedo returns the fraction of incident sunlight reflected.
func (m *Mixture) Albedo() float64 { return m.albedo }

// SolarAbsorptionIndex returns the fraction of incident sunlight absorbed.
func (m *Mixture) SolarAbsorptionIndex() float64 { return m.solarIndex }

// InfraredAbsorptionIndex returns the fraction of incident infrared
// radiation absorbed. It is also the emissivity.
func (m *Mixture) InfraredAbsorptionIndex() float64 { return m.irIndex }

// Conductivity returns the effective thermal conductivity [W/m/K].
func (m *Mixture) Conductivity() float64 { return m.conductivity }

// Velocity returns the bulk velocity of the mixture [m/s].
func (m *Mixture) Velocity() [3]float64 { return m.velocity }

// SetVelocity sets the bulk velocity of the mixture [m/s].
func (m *Mixture) SetVelocity(v [3]float64) { m.velocity = v }

// Element returns the element of species s and whether it is present.
func (m *Mixture) Element(s Species) (Element, bool) {
	e, ok := m.elements[s]
	return e, ok
}

// Elements returns the elements of the mixture ordered by species.
func (m *Mixture) Elements() []Element {
	out := make([]Element, 0, len(m.elements))
	for _, e := range m.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Species < out[j].Species })
	return out
}

// Describe returns one line per element followed by the mixture totals.
func (m *Mixture) Describe() []string {
	var out []string
	for _, e := range m.Elements() {
		out = append(out, e.String())
	}
	out = append(out, fmt.Sprintf("%s mixture: %.2f K, %.4g kg/m², %.4g m³/m², albedo %.3f, "+
		"solar absorption %.3f, infrared absorption %.3f", m.phase, m.temperature, m.mass,
		m.volume, m.albedo, m.solarIndex, m.irIndex))
	return out
}

// FilterSolarRadiation absorbs and reflects part of the incident
// sunlight [kJ] and returns the part that is transmitted.
func (m *Mixture) FilterSolarRadiation(incident float64) (float64, error) {
	if math.IsNaN(incident) || incident < 0 {
		return 0, numericErr("incident solar radiation", incident, "filtering solar radiation")
	}
	if m.albedo+m.solarIndex > 1+indexTolerance {
		return 0, numericErr("albedo + solar absorption index", m.albedo+m.solarIndex,
			"filtering solar radiation")
	}
	m.solarAbsorbed += incident * m.solarIndex
	m.reflected += incident * m.albedo
	return math.Max(0, incident*(1-m.albedo-m.solarIndex)), nil
}

// AbsorbSolar credits sunlight that was not otherwise filtered [kJ].
func (m *Mixture) AbsorbSolar(kJ float64) { m.solarAbsorbed += kJ }

// Reflected returns the sunlight reflected so far this hour [kJ].
func (m *Mixture) Reflected() float64 { return m.reflected }

// SolarAbsorbed returns the sunlight absorbed so far this hour [kJ].
func (m *Mixture) SolarAbsorbed() float64 { return m.solarAbsorbed }

// EmitInfrared records and returns the infrared energy the mixture
// emits in one hour [kJ]. The temperature is not changed until
// HandleInOutRadiation is called.
func (m *Mixture) EmitInfrared() float64 {
	t2 := m.temperature * m.temperature
	e := m.irIndex * stefanBoltzmann * t2 * t2 * m.area * secondsPerHour * kilo
	m.irEmitted += e
	return e
}

// FilterInfrared absorbs part of the incident infrared radiation [kJ]
// and returns the remainder.
func (m *Mixture) FilterInfrared(incident float64) float64 {
	a := incident * m.irIndex
	m.irAbsorbed += a
	return incident - a
}

// AbsorbInfrared credits infrared energy absorbed by the mixture [kJ].
func (m *Mixture) AbsorbInfrared(kJ float64) { m.irAbsorbed += kJ }

// InfraredEmitted returns the infrared emitted so far this hour [kJ].
func (m *Mixture) InfraredEmitted() float64 { return m.irEmitted }

// InfraredAbsorbed returns the infrared absorbed so far this hour [kJ].
func (m *Mixture) InfraredAbsorbed() float64 { return m.irAbsorbed }

// ConductiveNet returns the net heat conducted into the mixture so far
// this hour [kJ].
func (m *Mixture) ConductiveNet() float64 { return m.conductive }

// NetEnergy returns the net energy gained so far this hour [kJ].
func (m *Mixture) NetEnergy() float64 {
	return m.solarAbsorbed + m.irAbsorbed - m.irEmitted + m.conductive
}

// CalculateEquilibriumTemperature returns the temperature [K] at which
// the infrared emitted over the hour would balance the energy received.
// Mixtures that do not emit have no equilibrium and return +Inf.
func (m *Mixture) CalculateEquilibriumTemperature() float64 {
	if m.irIndex <= 0 {
		return math.Inf(1)
	}
	input := m.solarAbsorbed + m.irAbsorbed + m.conductive
	if input <= 0 {
		return 0
	}
	t2 := m.temperature * m.temperature
	emission := m.irIndex * stefanBoltzmann * t2 * t2 * m.area * secondsPerHour * kilo
	return m.temperature * math.Pow(input/emission, 0.25)
}

// HandleInOutRadiation applies the energy accumulated over the hour to
// the temperature and resets the accumulators. The temperature of a
// mixture that emitted this hour moves toward the equilibrium
// temperature but never past it.
func (m *Mixture) HandleInOutRadiation() error {
	c := m.TrueHeatCapacity()
	if !(c > 0) {
		return numericErr("heat capacity", c, "settling temperature")
	}
	net := m.NetEnergy()
	if math.IsNaN(net) {
		return numericErr("net energy", net, "settling temperature")
	}
	newT := m.temperature + net/c
	if m.irEmitted > 0 {
		teq := m.CalculateEquilibriumTemperature()
		if (net > 0 && newT > teq) || (net < 0 && newT < teq) {
			newT = teq
		}
	}
	if !(newT > 0) || math.IsInf(newT, 0) {
		return numericErr("temperature", newT, "settling temperature")
	}
	m.temperature = newT
	m.resetAccumulators()
	return nil
}

func (m *Mixture) resetAccumulators() {
	m.solarAbsorbed, m.reflected = 0, 0
	m.irAbsorbed, m.irEmitted = 0, 0
	m.conductive = 0
}

// harmonicMean returns the harmonic mean of a and b.
func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2. * a * b / (a + b)
}

// Conduction moves heat between a and b across a contact of the given
// true area [m²]. The heat moved over the hour [kJ] is subtracted from
// a and added to b and is limited to the amount that would bring the
// two to the same temperature.
func Conduction(a, b *Mixture, area float64) (float64, error) {
	if math.IsNaN(area) || area < 0 {
		return 0, configErr("area", area, "contact area must be ≥ 0")
	}
	d := (a.volume + b.volume) / 2
	if !(d > 0) {
		return 0, numericErr("center distance", d, "conduction")
	}
	ΔT := a.temperature - b.temperature
	q := harmonicMean(a.conductivity, b.conductivity) / d * area * ΔT * secondsPerHour * kilo

	ca, cb := a.TrueHeatCapacity(), b.TrueHeatCapacity()
	if ca+cb > 0 {
		limit := math.Abs(ΔT) * ca * cb / (ca + cb)
		if math.Abs(q) > limit {
			q = math.Copysign(limit, q)
		}
	}
	if math.IsNaN(q) {
		return 0, numericErr("conducted heat", q, "conduction")
	}
	a.conductive -= q
	b.conductive += q
	return q, nil
}

// TransferMixture moves fraction p of every element in giving to
// receiving. Quantities are converted by the ratio of the two tile
// areas so that true mass and mols are conserved. The receiving
// temperature becomes the heat-capacity-weighted mean.
func TransferMixture(receiving, giving *Mixture, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return configErr("proportion", p, "must be between 0 and 1")
	}
	if receiving.phase != giving.phase {
		return configErr("phase", giving.phase, "cannot transfer into a %s mixture", receiving.phase)
	}
	if p == 0 {
		return nil
	}
	ratio := giving.area / receiving.area
	cr := receiving.TrueHeatCapacity()
	cg := giving.TrueHeatCapacity() * p
	tg := giving.temperature

	for s, e := range giving.elements {
		giving.elements[s] = e.Scaled(1 - p)
		receiving.add(e.Scaled(p * ratio))
	}
	if cr+cg > 0 {
		receiving.temperature = (cr*receiving.temperature + cg*tg) / (cr + cg)
	}
	if err := giving.CalculateParameters(); err != nil {
		return err
	}
	return receiving.CalculateParameters()
}

// ResizeBy scales the volume of a gas mixture by p without changing
// its mass.
func (m *Mixture) ResizeBy(p float64) error {
	if m.phase != Gas {
		return configErr("phase", m.phase, "only gas mixtures can be resized")
	}
	if !(p > 0) || math.IsInf(p, 0) {
		return configErr("proportion", p, "must be > 0")
	}
	m.fixedVolume *= p
	return m.CalculateParameters()
}
