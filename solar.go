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

	"github.com/golang/groupcache/lru"
	"gonum.org/v1/gonum/mat"
)

const (
	hoursPerDay = 24
	daysPerYear = 365
)

// SimTime is the simulated time in hours since the start of the
// simulation. Hour zero is midnight at longitude zero on the vernal
// equinox.
type SimTime int

// HourOfDay returns the hour within the current day, in [0, 24).
func (t SimTime) HourOfDay() int { return mod(int(t), hoursPerDay) }

// DayOfYear returns the day within the current year, in [0, 365).
func (t SimTime) DayOfYear() int { return mod(int(t)/hoursPerDay, daysPerYear) }

// HourOfYear returns the hour within the current year.
func (t SimTime) HourOfYear() int { return mod(int(t), hoursPerDay*daysPerYear) }

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// SolarConfig holds the astronomical parameters of the planet.
type SolarConfig struct {
	// SolarConstant is the flux at the top of the atmosphere on a
	// surface facing the sun [W/m²].
	SolarConstant float64

	// AxialTilt is the obliquity of the rotation axis [degrees].
	AxialTilt float64

	// CacheSize is the number of hourly results each tile keeps.
	// Zero disables caching.
	CacheSize int
}

// DefaultSolarConfig returns Earth-like parameters.
func DefaultSolarConfig() *SolarConfig {
	return &SolarConfig{
		SolarConstant: 1361,
		AxialTilt:     23.44,
		CacheSize:     hoursPerDay * 2,
	}
}

// SolarRadiation calculates insolation at one tile as a function of
// simulated time.
type SolarRadiation struct {
	cfg    *SolarConfig
	normal *mat.VecDense
	cache  *lru.Cache
}

// NewSolarRadiation returns a calculator for a tile at the given
// latitude and longitude [degrees].
func NewSolarRadiation(latitude, longitude float64, cfg *SolarConfig) (*SolarRadiation, error) {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return nil, configErr("latitude", latitude, "must be between -90 and 90 degrees")
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return nil, configErr("longitude", longitude, "must be finite")
	}
	if cfg == nil {
		cfg = DefaultSolarConfig()
	}
	if cfg.SolarConstant < 0 {
		return nil, configErr("SolarConstant", cfg.SolarConstant, "must be ≥ 0")
	}
	lat, lon := latitude*math.Pi/180, longitude*math.Pi/180
	s := &SolarRadiation{
		cfg: cfg,
		normal: mat.NewVecDense(3, []float64{
			math.Cos(lat) * math.Cos(lon),
			math.Cos(lat) * math.Sin(lon),
			math.Sin(lat),
		}),
	}
	if cfg.CacheSize > 0 {
		s.cache = lru.New(cfg.CacheSize)
	}
	return s, nil
}

// orientation returns the rotation from planet-fixed to orbital
// coordinates at time t and the direction of the sun in orbital
// coordinates. Rotation is measured per solar day, so local noon
// always falls at hour 12 at longitude zero.
func (s *SolarRadiation) orientation(t SimTime) (*mat.Dense, *mat.VecDense) {
	φ := 2 * math.Pi * float64(t.DayOfYear()) / daysPerYear
	θ := 2*math.Pi*float64(t.HourOfDay())/hoursPerDay + φ
	ε := s.cfg.AxialTilt * math.Pi / 180

	spin := mat.NewDense(3, 3, []float64{
		math.Cos(θ), -math.Sin(θ), 0,
		math.Sin(θ), math.Cos(θ), 0,
		0, 0, 1,
	})
	tilt := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(ε), -math.Sin(ε),
		0, math.Sin(ε), math.Cos(ε),
	})
	var r mat.Dense
	r.Mul(tilt, spin)
	sun := mat.NewVecDense(3, []float64{-math.Cos(φ), -math.Sin(φ), 0})
	return &r, sun
}

// Fraction returns the cosine of the solar zenith angle at time t, or
// zero when the sun is below the horizon.
func (s *SolarRadiation) Fraction(t SimTime) float64 {
	key := t.HourOfYear()
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(float64)
		}
	}
	r, sun := s.orientation(t)
	var n mat.VecDense
	n.MulVec(r, s.normal)
	f := math.Max(0, mat.Dot(&n, sun))
	if s.cache != nil {
		s.cache.Add(key, f)
	}
	return f
}

// Incident returns the sunlight reaching the top of the atmosphere
// over a footprint of the given area during hour t [kJ].
func (s *SolarRadiation) Incident(t SimTime, area float64) float64 {
	return s.Fraction(t) * s.cfg.SolarConstant * area * secondsPerHour * kilo
}
