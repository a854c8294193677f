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

// Species is a kind of material that can make up a layer.
type Species int

// These are the species available to the model.
const (
	DryAir Species = iota
	WaterVapor
	CloudDroplet
	LiquidWater
	Ice
	Snow
	Sand
	Silt
	Clay
	Rock
	Bedrock
)

// Phase is the physical state of an element.
type Phase int

// Phases. Unset resolves to the natural phase of the species.
const (
	Unset Phase = iota
	Solid
	Particulate
	Liquid
	Droplet
	Gas
)

func (p Phase) String() string {
	switch p {
	case Unset:
		return "unset"
	case Solid:
		return "solid"
	case Particulate:
		return "particulate"
	case Liquid:
		return "liquid"
	case Droplet:
		return "droplet"
	case Gas:
		return "gas"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// speciesProperties holds the physical constants of a species.
type speciesProperties struct {
	name         string
	phase        Phase   // natural phase
	density      float64 // reference density [kg/m³]
	molarMass    float64 // [kg/mol]
	specificHeat float64 // [kJ/kg/K]
	conductivity float64 // [W/m/K]
	albedo       float64 // [fraction]
	solarAtten   float64 // solar mass attenuation coefficient [m²/kg]
	irAtten      float64 // infrared mass attenuation coefficient [m²/kg]
}

// Gas densities are at 0 °C and 101.325 kPa. Condensed-phase mass
// attenuation coefficients are large enough that a few tens of
// centimeters are optically thick.
var species = []speciesProperties{
	DryAir:       {"dry air", Gas, 1.2754, 0.0289647, 1.005, 0.026, 0, 2.0e-5, 5.0e-5},
	WaterVapor:   {"water vapor", Gas, 0.804, 0.018015, 1.996, 0.016, 0, 4.0e-3, 0.05},
	CloudDroplet: {"cloud droplets", Droplet, 1000, 0.018015, 4.186, 0.6, 0.6, 5, 20},
	LiquidWater:  {"liquid water", Liquid, 1000, 0.018015, 4.186, 0.6, 0.06, 0.05, 10},
	Ice:          {"ice", Solid, 917, 0.018015, 2.09, 2.2, 0.5, 0.02, 10},
	Snow:         {"snow", Particulate, 300, 0.018015, 2.09, 0.3, 0.85, 0.05, 10},
	Sand:         {"sand", Particulate, 1600, 0.06008, 0.83, 0.27, 0.35, 5, 10},
	Silt:         {"silt", Particulate, 1400, 0.06008, 0.85, 0.5, 0.25, 5, 10},
	Clay:         {"clay", Particulate, 1300, 0.2582, 0.92, 1.0, 0.2, 5, 10},
	Rock:         {"rock", Solid, 2700, 0.06008, 0.79, 2.5, 0.2, 5, 10},
	Bedrock:      {"bedrock", Solid, 2900, 0.06008, 0.75, 3.0, 0.2, 5, 10},
}

func (s Species) valid() bool { return s >= 0 && int(s) < len(species) }

func (s Species) String() string {
	if !s.valid() {
		return fmt.Sprintf("Species(%d)", int(s))
	}
	return species[s].name
}

// NaturalPhase returns the phase s takes when none is specified.
func (s Species) NaturalPhase() Phase { return species[s].phase }

// Density returns the reference density of s [kg/m³].
func (s Species) Density() float64 { return species[s].density }

// MolarMass returns the molar mass of s [kg/mol].
func (s Species) MolarMass() float64 { return species[s].molarMass }

// SpecificHeat returns the specific heat capacity of s [kJ/kg/K].
func (s Species) SpecificHeat() float64 { return species[s].specificHeat }

// Conductivity returns the thermal conductivity of s [W/m/K].
func (s Species) Conductivity() float64 { return species[s].conductivity }

// measure is the quantity that defines an element.
type measure int

const (
	byVolume measure = iota
	byMols
	byMass
)

// Element is a single species in a single phase. The amount of
// material is stored as one defining measure per square meter of tile
// footprint; the other two are derived from the species constants.
type Element struct {
	Species Species
	Phase   Phase

	measure measure
	amount  float64
}

func newElement(s Species, p Phase, m measure, v float64, field string) (Element, error) {
	if !s.valid() {
		return Element{}, configErr("species", int(s), "unknown species")
	}
	if p == Unset {
		p = s.NaturalPhase()
	}
	if p != s.NaturalPhase() {
		return Element{}, configErr("phase", p, "%s cannot be %s", s, p)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Element{}, numericErr(field, v, s.String())
	}
	if v < 0 {
		return Element{}, configErr(field, v, "%s quantity must be ≥ 0", s)
	}
	return Element{Species: s, Phase: p, measure: m, amount: v}, nil
}

// NewElementFromVolume returns an element of species s defined by
// its volume per unit footprint area [m³/m²].
func NewElementFromVolume(s Species, p Phase, volume float64) (Element, error) {
	return newElement(s, p, byVolume, volume, "volume")
}

// NewElementFromMols returns an element defined by its amount per unit
// footprint area [mol/m²].
func NewElementFromMols(s Species, p Phase, mols float64) (Element, error) {
	return newElement(s, p, byMols, mols, "mols")
}

// NewElementFromMass returns an element defined by its mass per unit
// footprint area [kg/m²].
func NewElementFromMass(s Species, p Phase, mass float64) (Element, error) {
	return newElement(s, p, byMass, mass, "mass")
}

// Mass returns the mass per unit area [kg/m²].
func (e Element) Mass() float64 {
	switch e.measure {
	case byVolume:
		return e.amount * e.Species.Density()
	case byMols:
		return e.amount * e.Species.MolarMass()
	default:
		return e.amount
	}
}

// Volume returns the volume per unit area at the reference density [m³/m²].
func (e Element) Volume() float64 {
	if e.measure == byVolume {
		return e.amount
	}
	return e.Mass() / e.Species.Density()
}

// Mols returns the amount per unit area [mol/m²].
func (e Element) Mols() float64 {
	if e.measure == byMols {
		return e.amount
	}
	return e.Mass() / e.Species.MolarMass()
}

// HeatCapacity returns the heat capacity per unit area [kJ/K/m²].
func (e Element) HeatCapacity() float64 {
	return e.Mass() * e.Species.SpecificHeat()
}

// Scaled returns a copy of e holding p times as much material.
func (e Element) Scaled(p float64) Element {
	e.amount *= p
	return e
}

func (e Element) String() string {
	return fmt.Sprintf("%s (%s): %.4g kg/m², %.4g m³/m², %.4g mol/m²",
		e.Species, e.Phase, e.Mass(), e.Volume(), e.Mols())
}
