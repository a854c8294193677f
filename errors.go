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

import "fmt"

// ConfigurationError is returned when a column, layer, or mixture is
// constructed or queried with inconsistent inputs, for example a species
// in a phase it cannot take, inverted layer geometry, or a statistic
// request for a layer that does not exist.
type ConfigurationError struct {
	// Field is the name of the offending input.
	Field string
	// Value is the offending value.
	Value interface{}
	// Reason describes what is wrong with Value.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("strata: configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func configErr(field string, value interface{}, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError is returned when the hourly calculation protocol is
// violated, such as flowing across a surface whose pressure differential
// has not been built.
type ProtocolError struct {
	// Op is the operation that was called out of order.
	Op string
	// Surface identifies the shared surface involved.
	Surface string
	// Reason describes which step was missing or repeated.
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("strata: protocol violation in %s on surface %s: %s", e.Op, e.Surface, e.Reason)
}

// NumericError is returned when a calculation produces a value that
// cannot be physical: zero heat capacity, NaN, negative mass, or
// radiative indices that sum to more than one.
type NumericError struct {
	// Quantity is the name of the degenerate value.
	Quantity string
	// Value is the degenerate value.
	Value float64
	// Context names where it was calculated, such as the layer.
	Context string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("strata: numeric degeneracy: %s=%g (%s)", e.Quantity, e.Value, e.Context)
}

func numericErr(quantity string, value float64, context string) error {
	return &NumericError{Quantity: quantity, Value: value, Context: context}
}

// TileError wraps an error that occurred while one tile was being
// advanced, so that the driver can abort only that tile's hour.
type TileError struct {
	// Coord is the address of the tile.
	Coord HexCoord
	// Stage is the calculation that failed.
	Stage string
	// Err is the underlying error.
	Err error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("strata: tile (%d,%d) stage %s: %v", e.Coord.Q, e.Coord.R, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *TileError) Unwrap() error { return e.Err }
