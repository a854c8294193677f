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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/strata"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.shp")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("strata: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// checkLogLevel parses a logrus level name.
func checkLogLevel(level string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return l, fmt.Errorf("strata: LogLevel: %v", err)
	}
	return l, nil
}

// ColumnConfig returns the column geometry specified in cfg.
func ColumnConfig(cfg *viper.Viper) (*strata.ColumnConfig, error) {
	earth, err := toFloat64SliceE(cfg.Get("Column.EarthLayerHeights"))
	if err != nil {
		return nil, fmt.Errorf("Column.EarthLayerHeights: %v", err)
	}
	sea, err := toFloat64SliceE(cfg.Get("Column.SeaBands"))
	if err != nil {
		return nil, fmt.Errorf("Column.SeaBands: %v", err)
	}
	c := &strata.ColumnConfig{
		EarthLayerHeights:   earth,
		HorizonDepth:        cfg.GetFloat64("Column.HorizonDepth"),
		SeaBands:            sea,
		BoundaryLayerHeight: cfg.GetFloat64("Column.BoundaryLayerHeight"),
		TroposphereLayers:   cfg.GetInt("Column.TroposphereLayers"),
		Tropopause:          cfg.GetFloat64("Column.Tropopause"),
		Stratopause:         cfg.GetFloat64("Column.Stratopause"),
		FlowConstant:        cfg.GetFloat64("Column.FlowConstant"),
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("parsing column configuration: %v", err)
	}
	return c, nil
}

// SolarConfig returns the sunlight parameters specified in cfg.
func SolarConfig(cfg *viper.Viper) (*strata.SolarConfig, error) {
	c := &strata.SolarConfig{
		SolarConstant: cfg.GetFloat64("Solar.SolarConstant"),
		AxialTilt:     cfg.GetFloat64("Solar.AxialTilt"),
		CacheSize:     cfg.GetInt("Solar.CacheSize"),
	}
	if !(c.SolarConstant >= 0) {
		return nil, fmt.Errorf("parsing solar configuration: Solar.SolarConstant=%g but should be >=0", c.SolarConstant)
	}
	if c.AxialTilt < -90 || c.AxialTilt > 90 {
		return nil, fmt.Errorf("parsing solar configuration: Solar.AxialTilt=%g but should be between -90 and 90", c.AxialTilt)
	}
	if c.CacheSize < 0 {
		return nil, fmt.Errorf("parsing solar configuration: Solar.CacheSize=%d but should be >=0", c.CacheSize)
	}
	return c, nil
}

// geometry returns the tile footprint specified in cfg.
func geometry(cfg *viper.Viper) (strata.HexGeometry, error) {
	g := strata.HexGeometry{Radius: cfg.GetFloat64("TileRadius")}
	if !(g.Radius > 0) {
		return g, fmt.Errorf("parsing configuration: TileRadius=%g but should be >0", g.Radius)
	}
	return g, nil
}

// toFloat64SliceE converts a configuration value into a slice of numbers.
// Values from configuration files arrive as []interface{}, values from
// the command line as []string, and values from environment variables
// as a single string in either JSON or comma-separated form.
func toFloat64SliceE(s interface{}) ([]float64, error) {
	switch v := s.(type) {
	case []float64:
		return v, nil
	case []interface{}:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case []string:
		o := make([]float64, len(v))
		for i, val := range v {
			f, err := cast.ToFloat64E(strings.TrimSpace(val))
			if err != nil {
				return nil, err
			}
			o[i] = f
		}
		return o, nil
	case string:
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var o []float64
			if err := json.Unmarshal([]byte(v), &o); err != nil {
				return nil, err
			}
			return o, nil
		}
		if v == "" {
			return nil, nil
		}
		return toFloat64SliceE(strings.Split(v, ","))
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid type for number list: %#v", s)
	}
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapString(v), nil
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("strata: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for variable %s: %#v", varName, i)
	}
}
