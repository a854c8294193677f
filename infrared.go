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
	"math"

	"gonum.org/v1/gonum/floats"
)

// InfraredBudget is the result of exchanging infrared radiation
// through a stack of layers. Index 0 is the surface.
type InfraredBudget struct {
	// Up and Down hold the radiation entering each layer boundary
	// from below and from above, respectively, after all passes.
	// Up[i] enters layer i from below; Down[i] enters layer i from
	// above. Both have one more entry than there are layers.
	Up, Down []float64

	// AbsorbedUp and AbsorbedDown are the amounts each layer absorbed
	// from the upward and downward streams.
	AbsorbedUp, AbsorbedDown []float64

	// Escaped leaves the top of the stack.
	Escaped float64

	// Back returns to the surface from the lowest air layer.
	Back float64
}

// Absorbed returns the total absorbed by layer i.
func (b *InfraredBudget) Absorbed(i int) float64 {
	return b.AbsorbedUp[i] + b.AbsorbedDown[i]
}

// TotalAbsorbed returns the total absorbed by all layers.
func (b *InfraredBudget) TotalAbsorbed() float64 {
	return floats.Sum(b.AbsorbedUp) + floats.Sum(b.AbsorbedDown)
}

// InfraredExchange distributes the infrared radiation emitted by each
// layer of a stack [kJ] using each layer's absorption index. Layer 0 is
// the surface, which emits everything upward; every other layer emits
// half upward and half downward. The upward stream is filtered from
// the bottom up, after which the downward stream is filtered from the
// top down. Whatever reaches the surface is returned as Back and is
// left for the surface to absorb.
func InfraredExchange(emitted, absorption []float64) (*InfraredBudget, error) {
	n := len(emitted)
	if n == 0 {
		return nil, configErr("layers", n, "infrared exchange needs at least one layer")
	}
	if len(absorption) != n {
		return nil, configErr("absorption", len(absorption), "have %d emitting layers", n)
	}
	for i, a := range absorption {
		if math.IsNaN(a) || a < 0 || a > 1 {
			return nil, configErr("absorption", a, "layer %d index must be between 0 and 1", i)
		}
		if math.IsNaN(emitted[i]) || emitted[i] < 0 {
			return nil, numericErr("emitted infrared", emitted[i], "infrared exchange")
		}
	}
	b := &InfraredBudget{
		Up:           make([]float64, n+1),
		Down:         make([]float64, n+1),
		AbsorbedUp:   make([]float64, n),
		AbsorbedDown: make([]float64, n),
	}
	b.Up[1] += emitted[0]
	for i := 1; i < n; i++ {
		b.Up[i+1] += emitted[i] / 2
		b.Down[i-1] += emitted[i] / 2
	}

	// The surface does not filter its own emission.
	for i := 1; i < n; i++ {
		b.AbsorbedUp[i] = b.Up[i] * absorption[i]
		b.Up[i+1] += b.Up[i] * (1 - absorption[i])
	}
	b.Escaped = b.Up[n]

	for i := n - 1; i >= 1; i-- {
		b.AbsorbedDown[i] = b.Down[i] * absorption[i]
		b.Down[i-1] += b.Down[i] * (1 - absorption[i])
	}
	b.Back = b.Down[0]
	return b, nil
}
