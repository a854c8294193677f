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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ctessum/geom/encoding/shp"
	"github.com/spatialmodel/strata"
)

func TestVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "Strata v" + strata.Version; !strings.Contains(buf.String(), want) {
		t.Errorf("have %q, want %q", buf.String(), want)
	}
}

func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "strata")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	outFile := filepath.Join(dir, "out.shp")

	Cfg.Set("config", "testdata/configExample.toml")
	Cfg.Set("OutputFile", outFile)
	defer Cfg.Set("config", "")
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	if n := strings.Count(buf.String(), "hour complete"); n != 3 {
		t.Errorf("have %d status messages, want 3:\n%s", n, buf.String())
	}
	logData, err := ioutil.ReadFile(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(logData), "simulation complete") {
		t.Errorf("log file is missing completion message:\n%s", logData)
	}

	d, err := shp.NewDecoder(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	var rows int
	for {
		_, fields, more := d.DecodeRowFields("SurfaceT", "TC", "Sea")
		if !more {
			break
		}
		T, err := strconv.ParseFloat(strings.TrimSpace(fields["SurfaceT"]), 64)
		if err != nil {
			t.Fatal(err)
		}
		tc, err := strconv.ParseFloat(strings.TrimSpace(fields["TC"]), 64)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(T-273.15-tc) > 1.e-6 {
			t.Errorf("row %d: SurfaceT=%g but TC=%g", rows, T, tc)
		}
		if !(T > 200 && T < 350) {
			t.Errorf("row %d: implausible surface temperature %g", rows, T)
		}
		if rows == 0 && strings.TrimSpace(fields["Sea"]) != "2.00000000" {
			t.Errorf("center tile sea layers: %s", fields["Sea"])
		}
		rows++
	}
	if err := d.Error(); err != nil {
		t.Fatal(err)
	}
	if rows != 7 {
		t.Errorf("have %d rows, want 7", rows)
	}
}

func TestDescribe(t *testing.T) {
	buf := new(bytes.Buffer)
	Root.SetOutput(buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"describe", "--TileFile=testdata/tiles.toml",
		"--Stat=temperature", "--Section=air", "--LayerIndex=1"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "tile ("); n != 7 {
		t.Errorf("have %d tiles, want 7:\n%s", n, out)
	}
	if n := strings.Count(out, "temperature air layer 1"); n != 7 {
		t.Errorf("have %d layer lines, want 7:\n%s", n, out)
	}
}

func TestDescribePressure(t *testing.T) {
	tiles, err := ReadTiles("testdata/tiles.toml")
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	r := strata.StatRequest{Type: strata.Pressure, Section: strata.AirSection}
	if err := Describe(buf, tiles, strata.HexGeometry{Radius: 1000}, nil, nil, r); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "pressure air layer 0: 0 ") {
			t.Errorf("unset pressure: %s", line)
		}
	}
	if n := strings.Count(buf.String(), "pressure air layer 0"); n != 7 {
		t.Errorf("have %d pressure lines, want 7:\n%s", n, buf.String())
	}
}

func TestDescribeBadRequest(t *testing.T) {
	tiles, err := ReadTiles("testdata/tiles.toml")
	if err != nil {
		t.Fatal(err)
	}
	r := strata.StatRequest{Type: strata.Temperature, Section: strata.SeaSection, LayerIndex: 10}
	err = Describe(ioutil.Discard, tiles, strata.HexGeometry{Radius: 1000}, nil, nil, r)
	if err == nil {
		t.Error("expected an error for a missing layer")
	}
}

func TestRunBadHours(t *testing.T) {
	if err := Run(Root, &RunConfig{Hours: 0}); err == nil {
		t.Error("expected an error")
	}
}
