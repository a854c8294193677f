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
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// modelVariable is a per-tile quantity available to output expressions.
type modelVariable struct {
	desc, units string
	value       func(c *Column) float64
}

var modelVariables = map[string]modelVariable{
	"SurfaceT":  {"Surface temperature", "K", func(c *Column) float64 { return c.SurfaceTemperature() }},
	"AirT":      {"Boundary layer temperature", "K", func(c *Column) float64 { return c.BoundaryLayerTemperature() }},
	"Elevation": {"Land elevation", "m", func(c *Column) float64 { return c.LandElevation() }},
	"Latitude":  {"Latitude", "degrees", func(c *Column) float64 { return c.params.Latitude }},
	"Area":      {"Tile footprint area", "m²", func(c *Column) float64 { return c.Area }},
	"SurfaceP": {"Pressure at the bottom of the boundary layer", "Pa",
		func(c *Column) float64 { return c.layers[c.air[0]].pBottom }},
	"Albedo":    {"Surface albedo", "fraction", func(c *Column) float64 { return c.SurfaceLayer().Mixture.Albedo() }},
	"SeaLayers": {"Number of sea layers", "count", func(c *Column) float64 { return float64(len(c.sea)) }},
	"WindU": {"Boundary layer east-west velocity", "m/s",
		func(c *Column) float64 { return c.layers[c.air[0]].Mixture.Velocity()[0] }},
	"WindV": {"Boundary layer north-south velocity", "m/s",
		func(c *Column) float64 { return c.layers[c.air[0]].Mixture.Velocity()[1] }},
	"SolarIn":   {"Sunlight entering the column in the last hour", "kJ", func(c *Column) float64 { return c.last.SolarIn }},
	"Reflected": {"Sunlight reflected in the last hour", "kJ", func(c *Column) float64 { return c.last.Reflected }},
	"Escaped":   {"Infrared escaping to space in the last hour", "kJ", func(c *Column) float64 { return c.last.Escaped }},
	"BackIR":    {"Infrared returned to the surface in the last hour", "kJ", func(c *Column) float64 { return c.last.Back }},
}

// OutputOptions returns the names, descriptions, and units of the
// variables available to output expressions, sorted by name.
func OutputOptions() (names, descriptions, units []string) {
	for n := range modelVariables {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		descriptions = append(descriptions, modelVariables[n].desc)
		units = append(units, modelVariables[n].units)
	}
	return
}

// Outputter writes tile results to a shapefile.
//
// outputVariables maps output field names to expressions of model
// variables, functions, and other output variables.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	expressions     map[string]*govaluate.EvaluableExpression
	outputFunctions map[string]govaluate.ExpressionFunction
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("strata: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		v, ok := arg[0].(float64)
		if !ok {
			return nil, fmt.Errorf("strata: argument to '%s' must be a number", name)
		}
		return f(v), nil
	}
}

// NewOutputter initializes a new Outputter. In addition to any
// functions in outputFunctions, expressions may use 'exp(x)',
// 'log(x)', 'sqrt(x)', 'abs(x)', and 'celsius(x)', which converts a
// temperature in K to °C.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":     oneArg("exp", math.Exp),
		"log":     oneArg("log", math.Log),
		"sqrt":    oneArg("sqrt", math.Sqrt),
		"abs":     oneArg("abs", math.Abs),
		"celsius": oneArg("celsius", func(k float64) float64 { return k - 273.15 }),
	}
	for k, v := range outputFunctions {
		funcs[k] = v
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
		outputFunctions: funcs,
	}
	for name, expr := range outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("strata: output variable %s: %v", name, err)
		}
		o.expressions[name] = e
	}
	return o, nil
}

// checkOutputNames checks whether any output variable names are too
// long for a shapefile field or contain unsupported characters.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		long := len(key) > 10
		ok := valid.MatchString(key)
		switch {
		case long && !ok:
			return fmt.Errorf("strata: output variable name '%s' exceeds 10 characters and includes unsupported character(s)", key)
		case long:
			return fmt.Errorf("strata: output variable name '%s' exceeds 10 characters", key)
		case !ok:
			return fmt.Errorf("strata: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// checkVars checks that every variable used by the output expressions
// is a model variable or another output variable, and that output
// variables do not depend on themselves.
func (o *Outputter) checkVars() error {
	for name := range o.expressions {
		if err := o.checkVar(name, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func (o *Outputter) checkVar(name string, visiting map[string]bool) error {
	if visiting[name] {
		return fmt.Errorf("strata: output variable '%s' depends on itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)
	for _, v := range o.expressions[name].Vars() {
		if _, ok := modelVariables[v]; ok {
			continue
		}
		if _, ok := o.expressions[v]; !ok {
			return fmt.Errorf("strata: undefined variable name '%s'", v)
		}
		if err := o.checkVar(v, visiting); err != nil {
			return err
		}
	}
	return nil
}

// CheckOutputVars returns a function that ensures the output variables
// can be calculated.
func (o *Outputter) CheckOutputVars() DomainManipulator {
	return func(w *World) error {
		if err := checkOutputNames(o.outputVariables); err != nil {
			return err
		}
		return o.checkVars()
	}
}

// evaluate calculates output variable name for column c. Names that
// are model variables always refer to the model variable. results
// caches output variables that have already been calculated.
func (o *Outputter) evaluate(name string, c *Column, results map[string]float64) (float64, error) {
	if v, ok := results[name]; ok {
		return v, nil
	}
	e := o.expressions[name]
	params := make(map[string]interface{})
	for _, v := range e.Vars() {
		if mv, ok := modelVariables[v]; ok {
			params[v] = mv.value(c)
		} else if _, ok := o.expressions[v]; ok {
			r, err := o.evaluate(v, c, results)
			if err != nil {
				return 0, err
			}
			params[v] = r
		} else {
			return 0, fmt.Errorf("strata: undefined variable name '%s'", v)
		}
	}
	r, err := e.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("strata: evaluating output variable %s: %v", name, err)
	}
	f, ok := r.(float64)
	if !ok {
		return 0, fmt.Errorf("strata: output variable %s is not a number: %v", name, r)
	}
	results[name] = f
	return f, nil
}

// Results returns the output variables for every column, in ColumnID
// order.
func (o *Outputter) Results(w *World) (map[string][]float64, error) {
	out := make(map[string][]float64, len(o.expressions))
	for name := range o.expressions {
		out[name] = make([]float64, len(w.columns))
	}
	for i, c := range w.columns {
		results := make(map[string]float64)
		for name := range o.expressions {
			v, err := o.evaluate(name, c, results)
			if err != nil {
				return nil, err
			}
			out[name][i] = v
		}
	}
	return out, nil
}

// Output returns a function that writes the results to a shapefile
// with one hexagon per tile.
func (o *Outputter) Output() DomainManipulator {
	return func(w *World) error {
		results, err := o.Results(w)
		if err != nil {
			return err
		}
		vars := make([]string, 0, len(results))
		for v := range results {
			vars = append(vars, v)
		}
		sort.Strings(vars)
		fields := make([]goshp.Field, len(vars))
		for i, v := range vars {
			fields[i] = goshp.FloatField(v, 14, 8)
		}

		fileBase := strings.TrimSuffix(o.fileName, filepath.Ext(o.fileName))
		o.fileName = fileBase + ".shp"
		shape, err := shp.NewEncoderFromFields(o.fileName, goshp.POLYGON, fields...)
		if err != nil {
			return fmt.Errorf("error creating output shapefile: %v", err)
		}
		for i, c := range w.columns {
			outFields := make([]interface{}, len(vars))
			for j, v := range vars {
				outFields[j] = results[v][i]
			}
			if err := shape.EncodeFields(w.Geometry.Polygon(c.Coord), outFields...); err != nil {
				return fmt.Errorf("error writing output shapefile: %v", err)
			}
		}
		shape.Close()
		w.Log.WithField("file", o.fileName).Info("wrote output")
		return nil
	}
}
