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
	"io/ioutil"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/strata"
	"github.com/spatialmodel/strata/internal/hash"
	"github.com/spf13/cobra"
)

// RunConfig holds everything needed for a simulation.
type RunConfig struct {
	LogFile, OutputFile string
	OutputVariables     map[string]string
	LogLevel            logrus.Level

	Tiles        []strata.Tile
	Geometry     strata.HexGeometry
	ColumnConfig *strata.ColumnConfig
	SolarConfig  *strata.SolarConfig

	// StartHour is the simulated time of the first hour.
	StartHour int

	// Hours is the number of hours to simulate.
	Hours int

	// LogPeriod is the number of hours between status messages.
	LogPeriod int
}

// newLogger returns a logger writing to w.
func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableColors:   true,
	}
	log.Level = level
	return log
}

// Run runs a simulation and writes the results to
// cfg.OutputFile. Status messages go to the command output and to
// cfg.LogFile.
func Run(cmd *cobra.Command, cfg *RunConfig) error {
	if cfg.Hours < 1 {
		return fmt.Errorf("strata: Hours=%d but should be >0", cfg.Hours)
	}
	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("strata: problem creating log file: %v", err)
	}
	defer logfile.Close()

	mw := io.MultiWriter(cmd.OutOrStdout(), logfile)
	log := newLogger(mw, cfg.LogLevel).WithField("run", hash.Short(struct {
		Tiles  []strata.Tile
		Column strata.ColumnConfig
		Solar  strata.SolarConfig
		Start  int
	}{cfg.Tiles, *cfg.ColumnConfig, *cfg.SolarConfig, cfg.StartHour}, 8))

	o, err := strata.NewOutputter(cfg.OutputFile, cfg.OutputVariables, nil)
	if err != nil {
		return err
	}

	w := &strata.World{
		InitFuncs: []strata.DomainManipulator{
			strata.AddTiles(cfg.Tiles...),
			strata.LinkTiles(),
			o.CheckOutputVars(),
		},
		RunFuncs: append(strata.HourlyFuncs(),
			strata.Log(cfg.LogPeriod),
			strata.HourLimit(cfg.Hours),
		),
		CleanupFuncs: []strata.DomainManipulator{
			o.Output(),
		},
		Geometry:     cfg.Geometry,
		ColumnConfig: cfg.ColumnConfig,
		SolarConfig:  cfg.SolarConfig,
		Log:          log,
		Hour:         strata.SimTime(cfg.StartHour),
	}

	start := time.Now()
	log.WithFields(logrus.Fields{
		"version": strata.Version,
		"tiles":   len(cfg.Tiles),
		"hours":   cfg.Hours,
	}).Info("starting simulation")
	if err := w.Init(); err != nil {
		return fmt.Errorf("strata: problem initializing model: %v", err)
	}
	if err := w.Run(); err != nil {
		return fmt.Errorf("strata: problem running simulation: %v", err)
	}
	s := w.Summarize()
	log.WithFields(logrus.Fields{
		"walltime": time.Since(start).Round(time.Millisecond).String(),
		"meanT":    s.Mean,
		"failed":   len(w.HourFailures()),
	}).Info("simulation complete")
	return nil
}

// Describe builds the columns of the given tiles and writes the
// requested statistic of each one to out.
func Describe(out io.Writer, tiles []strata.Tile, g strata.HexGeometry, cc *strata.ColumnConfig,
	sc *strata.SolarConfig, r strata.StatRequest) error {
	w := &strata.World{
		InitFuncs:    []strata.DomainManipulator{strata.AddTiles(tiles...), strata.LinkTiles()},
		Geometry:     g,
		ColumnConfig: cc,
		SolarConfig:  sc,
		Log:          newLogger(ioutil.Discard, logrus.WarnLevel),
	}
	if err := w.Init(); err != nil {
		return err
	}
	for _, c := range w.Columns() {
		msgs, err := c.Messages(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tile (%d,%d) elevation %g m:\n", c.Coord.Q, c.Coord.R, c.LandElevation())
		for _, m := range msgs {
			fmt.Fprintf(out, "\t%s\n", m)
		}
	}
	return nil
}
