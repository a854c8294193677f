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
	"fmt"

	"github.com/sirupsen/logrus"
)

// World holds the current state of the model: an arena of columns
// addressed by ColumnID.
type World struct {
	// InitFuncs are run once by Init.
	InitFuncs []DomainManipulator

	// RunFuncs are run once per simulated hour by Step.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run once after the last hour.
	CleanupFuncs []DomainManipulator

	// Geometry is the footprint of every tile.
	Geometry HexGeometry

	// ColumnConfig and SolarConfig are shared by every column.
	// Defaults are used if they are nil.
	ColumnConfig *ColumnConfig
	SolarConfig  *SolarConfig

	// Log receives status and error messages. The standard logrus
	// logger is used if it is nil.
	Log logrus.FieldLogger

	// Hour is the simulated time of the hour being calculated.
	Hour SimTime

	// Done is set by a RunFunc to end the simulation.
	Done bool

	columns []*Column
	index   map[HexCoord]ColumnID

	failed, lastFailed map[ColumnID]error
}

// DomainManipulator is a function that operates on the whole world.
type DomainManipulator func(w *World) error

// ColumnManipulator is a function that operates on a single column
// for one simulated hour.
type ColumnManipulator func(c *Column, t SimTime) error

// Tile is the input description of one tile.
type Tile struct {
	Coord HexCoord
	ColumnParams
}

func (w *World) setup() {
	if w.Log == nil {
		w.Log = logrus.StandardLogger()
	}
	if w.index == nil {
		w.index = make(map[HexCoord]ColumnID)
	}
	if w.failed == nil {
		w.failed = make(map[ColumnID]error)
	}
	if w.ColumnConfig == nil {
		w.ColumnConfig = DefaultColumnConfig()
	}
	if w.SolarConfig == nil {
		w.SolarConfig = DefaultSolarConfig()
	}
}

// Init initializes the simulation by running w.InitFuncs.
func (w *World) Init() error {
	w.setup()
	for _, f := range w.InitFuncs {
		if err := f(w); err != nil {
			return err
		}
	}
	return nil
}

// Step calculates one hour by running w.RunFuncs and then advances
// the clock.
func (w *World) Step() error {
	w.setup()
	for _, f := range w.RunFuncs {
		if err := f(w); err != nil {
			return err
		}
	}
	w.lastFailed, w.failed = w.failed, make(map[ColumnID]error)
	w.Hour++
	return nil
}

// Run calls Step until Done is set and then runs w.CleanupFuncs.
func (w *World) Run() error {
	for !w.Done {
		if err := w.Step(); err != nil {
			return err
		}
	}
	for _, f := range w.CleanupFuncs {
		if err := f(w); err != nil {
			return err
		}
	}
	return nil
}

// AddColumn builds a column for the tile at coord.
func (w *World) AddColumn(coord HexCoord, p ColumnParams) (ColumnID, error) {
	w.setup()
	if _, ok := w.index[coord]; ok {
		return 0, configErr("tile", coord, "duplicate tile coordinate")
	}
	id := ColumnID(len(w.columns))
	c, err := NewColumn(id, coord, p, w.Geometry, w.ColumnConfig)
	if err != nil {
		return 0, &TileError{Coord: coord, Stage: "build", Err: err}
	}
	if c.solar, err = NewSolarRadiation(p.Latitude, p.Longitude, w.SolarConfig); err != nil {
		return 0, &TileError{Coord: coord, Stage: "build", Err: err}
	}
	w.columns = append(w.columns, c)
	w.index[coord] = id
	return id, nil
}

// Columns returns every column in ColumnID order.
func (w *World) Columns() []*Column { return w.columns }

// Column returns the column with the given handle.
func (w *World) Column(id ColumnID) (*Column, error) {
	if id < 0 || int(id) >= len(w.columns) {
		return nil, configErr("column", id, "world has %d columns", len(w.columns))
	}
	return w.columns[id], nil
}

// Lookup returns the column at coord.
func (w *World) Lookup(coord HexCoord) (*Column, bool) {
	id, ok := w.index[coord]
	if !ok {
		return nil, false
	}
	return w.columns[id], true
}

// Layer implements Resolver.
func (w *World) Layer(h LayerHandle) (*Layer, error) {
	c, err := w.Column(h.Column)
	if err != nil {
		return nil, err
	}
	return c.Layer(h)
}

// link builds the lateral surfaces of c toward its East, NorthEast, and
// NorthWest neighbors, and the surfaces its other neighbors own toward it.
func (w *World) link(c *Column) {
	for _, d := range LinkDirections {
		if n, ok := w.Lookup(c.Coord.Neighbor(d)); ok {
			c.linkNeighbor(d, n)
		}
		if n, ok := w.Lookup(c.Coord.Neighbor(d.Opposite())); ok {
			n.linkNeighbor(d, c)
		}
	}
}

// ChangeElevation rebuilds the column at coord for a new land
// elevation and links it to its neighbors again.
func (w *World) ChangeElevation(coord HexCoord, elevation float64) error {
	c, ok := w.Lookup(coord)
	if !ok {
		return configErr("tile", coord, "no such tile")
	}
	if err := c.Rebuild(elevation); err != nil {
		return &TileError{Coord: coord, Stage: "rebuild", Err: err}
	}
	w.link(c)
	w.Log.WithFields(logrus.Fields{
		"q": coord.Q, "r": coord.R, "elevation": elevation, "layers": len(c.layers),
	}).Info("rebuilt column")
	return nil
}

// HourFailures returns the tiles whose last completed hour was aborted,
// and why.
func (w *World) HourFailures() map[ColumnID]error { return w.lastFailed }

// fail aborts the current hour of column c.
func (w *World) fail(c *Column, stage string, err error) {
	te := &TileError{Coord: c.Coord, Stage: stage, Err: err}
	w.failed[c.ID] = te
	c.discardHour()
	fields := logrus.Fields{"q": c.Coord.Q, "r": c.Coord.R, "stage": stage, "hour": int(w.Hour)}
	var ne *NumericError
	if errors.As(err, &ne) {
		fields["quantity"] = ne.Quantity
		fields["value"] = ne.Value
	}
	w.Log.WithFields(fields).WithError(err).Error("aborted tile hour")
}

func (w *World) isFailed(id ColumnID) bool {
	_, ok := w.failed[id]
	return ok
}

// AddTiles returns a function that adds the given tiles to the world.
func AddTiles(tiles ...Tile) DomainManipulator {
	return func(w *World) error {
		for _, t := range tiles {
			if _, err := w.AddColumn(t.Coord, t.ColumnParams); err != nil {
				return err
			}
		}
		w.Log.WithField("tiles", len(tiles)).Info("built columns")
		return nil
	}
}

// LinkTiles returns a function that builds the lateral surfaces
// between every pair of adjacent tiles.
func LinkTiles() DomainManipulator {
	return func(w *World) error {
		nSurf := 0
		for _, c := range w.columns {
			neighbors := make(map[Direction]*Column)
			for _, d := range LinkDirections {
				if n, ok := w.Lookup(c.Coord.Neighbor(d)); ok {
					neighbors[d] = n
				}
			}
			c.LinkNeighbors(neighbors)
			nSurf += len(c.lateral)
		}
		w.Log.WithField("surfaces", nSurf).Info("linked columns")
		return nil
	}
}

// Calculations returns a function that runs a series of calculations
// on every column in turn. An error aborts the current hour of that
// column only; the column is skipped by the remaining stages of the
// hour.
func Calculations(stage string, calculators ...ColumnManipulator) DomainManipulator {
	return func(w *World) error {
		for _, c := range w.columns {
			if w.isFailed(c.ID) {
				continue
			}
			for _, f := range calculators {
				if err := f(c, w.Hour); err != nil {
					w.fail(c, stage, err)
					break
				}
			}
		}
		return nil
	}
}

// AirFlow returns a function that moves air between columns. Every
// pressure differential in the world is built before any air moves,
// so the result does not depend on the order of the columns.
func AirFlow() DomainManipulator {
	return func(w *World) error {
		for _, c := range w.columns {
			if w.isFailed(c.ID) {
				continue
			}
			if err := c.BuildPressureDifferentials(w); err != nil {
				w.fail(c, "air flow", err)
			}
		}
		for _, c := range w.columns {
			if w.isFailed(c.ID) {
				continue
			}
			skip := func(h LayerHandle) bool { return w.isFailed(h.Column) }
			if err := c.flowAir(w, skip); err != nil {
				w.fail(c, "air flow", err)
				continue
			}
			if err := c.SimulateLayerFlow(); err != nil {
				w.fail(c, "air flow", err)
			}
		}
		return nil
	}
}

// HourLimit returns a function that sets Done after numHours hours.
func HourLimit(numHours int) DomainManipulator {
	hours := 0
	return func(w *World) error {
		hours++
		if hours >= numHours {
			w.Done = true
		}
		return nil
	}
}

func (w *World) String() string {
	return fmt.Sprintf("world of %d tiles at hour %d", len(w.columns), w.Hour)
}
