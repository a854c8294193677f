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
along with Strata.  If not, see <http://www.gnu.org/licenses/>.*/

package hash

import (
	"math"
	"testing"
)

type tile struct {
	Q, R      int
	Elevation float64
}

type named struct{}

func (named) String() string { return "named" }

func TestHash(t *testing.T) {
	a := []tile{{0, 0, 100}, {1, 0, -50}}
	b := []tile{{0, 0, 100}, {1, 0, -50}}
	c := []tile{{0, 0, 100}, {1, 0, -51}}
	if Hash(a) != Hash(b) {
		t.Error("equal inputs have different keys")
	}
	if Hash(a) == Hash(c) {
		t.Error("different inputs have the same key")
	}
	if len(Hash(a)) != 32 {
		t.Errorf("key %s is not 128 bits", Hash(a))
	}
	if Hash(named{}) != "named" {
		t.Error("Stringers should use String")
	}
}

func TestHashNaN(t *testing.T) {
	n := []tile{{0, 0, math.NaN()}}
	if Hash(n) != Hash([]tile{{0, 0, math.NaN()}}) {
		t.Error("NaN inputs should hash consistently")
	}
	if Hash(n) == Hash([]tile{{0, 0, 1}}) {
		t.Error("NaN input collides")
	}
}

func TestShort(t *testing.T) {
	if s := Short([]int{1, 2, 3}, 8); len(s) != 8 {
		t.Errorf("short key %s", s)
	}
	if Short(named{}, 100) != "named" {
		t.Error("short key longer than the key")
	}
}

func TestHashUnexported(t *testing.T) {
	type hidden struct{ x int }
	if Hash(hidden{1}) == Hash(hidden{2}) {
		t.Error("unexported fields should be part of the key")
	}
	if Hash(hidden{1}) != Hash(hidden{1}) {
		t.Error("keys are not repeatable")
	}
}
