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

// Insolation returns a function that passes the hour's sunlight
// through the column.
func Insolation() ColumnManipulator {
	return func(c *Column, t SimTime) error {
		return c.FilterSolarRadiation(c.Insolation(t))
	}
}

// Evaporation returns a function that calculates evaporation.
func Evaporation() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulateEvaporation() }
}

// InfraredRadiation returns a function that exchanges infrared
// radiation between the surface and the atmosphere.
func InfraredRadiation() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulateInfraredRadiation() }
}

// HeatConduction returns a function that conducts heat between
// vertically adjacent layers.
func HeatConduction() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulateConduction() }
}

// PressureProfile returns a function that calculates the hydrostatic
// pressure of every layer.
func PressureProfile() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulatePressure() }
}

// Condensation returns a function that calculates cloud formation.
func Condensation() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulateCondensation() }
}

// Precipitation returns a function that calculates precipitation.
func Precipitation() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulatePrecipitation() }
}

// WaterFlow returns a function that calculates surface water flow.
func WaterFlow() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulateWaterFlow() }
}

// Plants returns a function that calculates vegetation.
func Plants() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.SimulatePlants() }
}

// SettleTemperature returns a function that applies the hour's energy
// budget to the layer temperatures.
func SettleTemperature() ColumnManipulator {
	return func(c *Column, _ SimTime) error { return c.EndHour() }
}

// HourlyFuncs returns the calculations of one simulated hour, in the
// order they must run.
func HourlyFuncs() []DomainManipulator {
	return []DomainManipulator{
		Calculations("solar", Insolation()),
		Calculations("evaporation", Evaporation()),
		Calculations("infrared", InfraredRadiation()),
		Calculations("conduction", HeatConduction()),
		Calculations("pressure", PressureProfile()),
		Calculations("condensation", Condensation()),
		Calculations("precipitation", Precipitation()),
		AirFlow(),
		Calculations("water flow", WaterFlow()),
		Calculations("plants", Plants()),
		Calculations("settle", SettleTemperature()),
	}
}
