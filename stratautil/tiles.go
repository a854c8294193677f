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
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/strata"
)

// tileRecord is one [[Tile]] entry in a tile file.
type tileRecord struct {
	Q, R                int
	Elevation           float64
	Latitude, Longitude float64

	// Temperature is the initial surface temperature [K]. The file
	// default is used if it is zero.
	Temperature float64
}

// tileFile is the layout of a tile file:
//
//	Temperature = 288.0
//
//	[[Tile]]
//	Q = 0
//	R = 0
//	Elevation = 120.0
//	Latitude = 10.0
//	Longitude = 0.0
type tileFile struct {
	Temperature float64
	Tile        []tileRecord
}

// ReadTiles reads the tiles to be simulated from a TOML file.
func ReadTiles(path string) ([]strata.Tile, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("strata: opening tile file: %v", err)
	}
	defer f.Close()
	tiles, err := DecodeTiles(f)
	if err != nil {
		return nil, fmt.Errorf("strata: tile file %s: %v", path, err)
	}
	return tiles, nil
}

// DecodeTiles decodes TOML-formatted tiles from r.
func DecodeTiles(r io.Reader) ([]strata.Tile, error) {
	var tf tileFile
	md, err := toml.DecodeReader(r, &tf)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown keys %v", undec)
	}
	if len(tf.Tile) == 0 {
		return nil, fmt.Errorf("no tiles")
	}
	seen := make(map[strata.HexCoord]int, len(tf.Tile))
	tiles := make([]strata.Tile, len(tf.Tile))
	for i, t := range tf.Tile {
		coord := strata.HexCoord{Q: t.Q, R: t.R}
		if j, ok := seen[coord]; ok {
			return nil, fmt.Errorf("tiles %d and %d both have coordinate (%d,%d)", j, i, t.Q, t.R)
		}
		seen[coord] = i
		if t.Temperature == 0 {
			t.Temperature = tf.Temperature
		}
		if !(t.Temperature > 0) {
			return nil, fmt.Errorf("tile (%d,%d) has temperature %g K but should be >0", t.Q, t.R, t.Temperature)
		}
		if t.Latitude < -90 || t.Latitude > 90 {
			return nil, fmt.Errorf("tile (%d,%d) has latitude %g", t.Q, t.R, t.Latitude)
		}
		tiles[i] = strata.Tile{
			Coord: coord,
			ColumnParams: strata.ColumnParams{
				LandElevation: t.Elevation,
				Temperature:   t.Temperature,
				Latitude:      t.Latitude,
				Longitude:     t.Longitude,
			},
		}
	}
	return tiles, nil
}
