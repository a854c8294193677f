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

// Package strata simulates the energy and air budget of a planet
// divided into hexagonal tiles. Each tile is a column of layers: earth,
// a soil horizon, optional sea, and air. Every simulated hour the
// columns exchange radiation and heat vertically, and air moves
// laterally between neighboring columns in response to pressure
// differences.
//
// InitFuncs build a World and RunFuncs advance it one hour at a time
// until one of them sets Done. CleanupFuncs then write the results.
package strata

// Version gives the version number.
const Version = "0.1.0"
