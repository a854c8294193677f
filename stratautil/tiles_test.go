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

package stratautil

import (
	"strings"
	"testing"

	"github.com/spatialmodel/strata"
)

func TestReadTiles(t *testing.T) {
	tiles, err := ReadTiles("testdata/tiles.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 7 {
		t.Fatalf("have %d tiles, want 7", len(tiles))
	}
	want := strata.Tile{
		Coord: strata.HexCoord{Q: 0, R: -1},
		ColumnParams: strata.ColumnParams{
			LandElevation: 300,
			Temperature:   285,
			Latitude:      15.2,
			Longitude:     -0.1,
		},
	}
	if tiles[3] != want {
		t.Errorf("have %+v, want %+v", tiles[3], want)
	}
	if tiles[0].Temperature != 288 {
		t.Errorf("default temperature not applied: %g", tiles[0].Temperature)
	}
	if _, err := ReadTiles("testdata/missing.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestDecodeTilesInvalid(t *testing.T) {
	tests := []struct {
		name, file, errContains string
	}{
		{
			name:        "no tiles",
			file:        "Temperature = 288.0\n",
			errContains: "no tiles",
		},
		{
			name:        "duplicate",
			file:        "Temperature = 288.0\n[[Tile]]\nQ = 1\n[[Tile]]\nQ = 1\n",
			errContains: "both have coordinate (1,0)",
		},
		{
			name:        "unknown key",
			file:        "[[Tile]]\nQ = 1\nTemp = 280.0\n",
			errContains: "unknown keys",
		},
		{
			name:        "no temperature",
			file:        "[[Tile]]\nQ = 1\n",
			errContains: "temperature",
		},
		{
			name:        "latitude",
			file:        "[[Tile]]\nTemperature = 280.0\nLatitude = 95.0\n",
			errContains: "latitude",
		},
		{
			name:        "syntax",
			file:        "[[Tile]\n",
			errContains: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeTiles(strings.NewReader(test.file))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), test.errContains) {
				t.Errorf("error %q does not contain %q", err, test.errContains)
			}
		})
	}
}
