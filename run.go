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
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
)

// Summary holds statistics of the surface temperature across all
// tiles [K].
type Summary struct {
	Mean, Min, Max, StdDev float64
	Tiles, Failed          int
}

// Summarize returns statistics of the current surface temperatures.
func (w *World) Summarize() Summary {
	t := make([]float64, len(w.columns))
	for i, c := range w.columns {
		t[i] = c.SurfaceTemperature()
	}
	s := Summary{Tiles: len(t), Failed: len(w.failed)}
	if len(t) == 0 {
		return s
	}
	s.Mean = stats.StatsMean(t)
	s.Min = stats.StatsMin(t)
	s.Max = stats.StatsMax(t)
	if len(t) > 1 {
		s.StdDev = stats.StatsSampleStandardDeviation(t)
	}
	return s
}

// Log returns a function that logs the simulation status every
// period hours. Hours with aborted tiles are always logged.
func Log(period int) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()
	if period < 1 {
		period = 1
	}
	return func(w *World) error {
		s := w.Summarize()
		if int(w.Hour)%period != 0 && s.Failed == 0 {
			return nil
		}
		entry := w.Log.WithFields(logrus.Fields{
			"hour":     int(w.Hour),
			"day":      w.Hour.DayOfYear(),
			"walltime": time.Since(startTime).Round(time.Millisecond).String(),
			"Δwall":    time.Since(stepTime).Round(time.Millisecond).String(),
			"meanT":    s.Mean,
			"minT":     s.Min,
			"maxT":     s.Max,
			"sdT":      s.StdDev,
			"failed":   s.Failed,
		})
		stepTime = time.Now()
		if s.Failed > 0 {
			entry.Warn("hour complete with aborted tiles")
		} else {
			entry.Info("hour complete")
		}
		return nil
	}
}
