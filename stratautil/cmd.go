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

	"github.com/lnashier/viper"
	"github.com/spatialmodel/strata"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	def := strata.DefaultColumnConfig()
	solar := strata.DefaultSolarConfig()

	// Options are the configuration options available to Strata.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "TileFile",
			usage: `
              TileFile is the path to the TOML file listing the tiles to
              simulate. Each [[Tile]] entry has the axial coordinates Q and R,
              the land Elevation [m], Latitude and Longitude [degrees], and
              optionally the initial surface Temperature [K]. A top-level
              Temperature sets the default. It can contain environment
              variables.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "TileRadius",
			usage: `
              TileRadius is the distance from the center of each hexagonal
              tile to its vertices [m].`,
			defaultVal: 50000.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Hours",
			usage: `
              Hours is the number of hours to simulate.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StartHour",
			usage: `
              StartHour is the hour of the year at which the simulation
              starts, counted from midnight on the first day.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogPeriod",
			usage: `
              LogPeriod is the number of simulated hours between status
              messages. Hours in which a tile failed are always logged.`,
			defaultVal: 6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              logfile will be saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the lowest severity of messages that are logged:
              one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the desired output shapefile
              location. It can include environment variables.`,
			shorthand:  "o",
			defaultVal: "strata_output.shp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be included
              in the output file. It can include environment variables. Each
              output variable is an expression of the model variables, the
              functions exp, log, sqrt, abs, and celsius, and other output
              variables.`,
			defaultVal: map[string]string{
				"SurfaceT":  "SurfaceT",
				"AirT":      "AirT",
				"Elevation": "Elevation",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Column.EarthLayerHeights",
			usage: `
              Column.EarthLayerHeights are the thicknesses of the earth layers
              below the soil horizon, from the deepest upward [m].`,
			defaultVal: floatStrings(def.EarthLayerHeights),
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.HorizonDepth",
			usage: `
              Column.HorizonDepth is the thickness of the soil horizon [m].`,
			defaultVal: def.HorizonDepth,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.SeaBands",
			usage: `
              Column.SeaBands are the elevations that separate the ocean depth
              bands, starting at sea level and descending [m]. A tile below sea
              level has one sea layer for each band its floor is below.`,
			defaultVal: floatStrings(def.SeaBands),
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.BoundaryLayerHeight",
			usage: `
              Column.BoundaryLayerHeight is the thickness of the lowest air
              layer [m].`,
			defaultVal: def.BoundaryLayerHeight,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.TroposphereLayers",
			usage: `
              Column.TroposphereLayers is the number of air layers between the
              boundary layer and the tropopause.`,
			defaultVal: def.TroposphereLayers,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.Tropopause",
			usage: `
              Column.Tropopause is the elevation of the tropopause [m].`,
			defaultVal: def.Tropopause,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.Stratopause",
			usage: `
              Column.Stratopause is the elevation of the top of the model [m].`,
			defaultVal: def.Stratopause,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), describeCmd.Flags()},
		},
		{
			name: "Column.FlowConstant",
			usage: `
              Column.FlowConstant converts the area of a lateral surface times
              the pressure difference across it into the fraction of an air
              layer that moves in one hour [1/(m²·Pa)].`,
			defaultVal: def.FlowConstant,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Solar.SolarConstant",
			usage: `
              Solar.SolarConstant is the flux of sunlight at the top of the
              atmosphere on a surface facing the sun [W/m²].`,
			defaultVal: solar.SolarConstant,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Solar.AxialTilt",
			usage: `
              Solar.AxialTilt is the obliquity of the planet's rotation axis
              [degrees].`,
			defaultVal: solar.AxialTilt,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Solar.CacheSize",
			usage: `
              Solar.CacheSize is the number of hourly sunlight results each tile
              keeps. Zero disables caching.`,
			defaultVal: solar.CacheSize,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stat",
			usage: `
              Stat is the statistic to describe: one of elevation, temperature,
              materialProperties, pressure, or flow.`,
			defaultVal: "materialProperties",
			flagsets:   []*pflag.FlagSet{describeCmd.Flags()},
		},
		{
			name: "Section",
			usage: `
              Section is the part of the column to describe: one of surface,
              horizon, earth, sea, or air.`,
			defaultVal: "surface",
			flagsets:   []*pflag.FlagSet{describeCmd.Flags()},
		},
		{
			name: "LayerIndex",
			usage: `
              LayerIndex is the layer to describe, counted from the bottom of
              the section.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{describeCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("STRATA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(describeCmd)
}

// floatStrings formats numbers as flag default values.
func floatStrings(v []float64) []string {
	o := make([]string, len(v))
	for i, f := range v {
		o[i] = fmt.Sprint(f)
	}
	return o
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("strata: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "strata",
	Short: "A layered planetary climate model.",
	Long: `Strata simulates the climate of a planet whose surface is divided into
hexagonal tiles. Each tile is a column of earth, sea, and air layers that
exchange sunlight, infrared radiation, heat, and air every simulated hour.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'STRATA_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of Strata.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("Strata v%s\n", strata.Version)
	},
	DisableAutoGenTag: true,
}

// runConfig assembles a RunConfig from Cfg.
func runConfig() (*RunConfig, error) {
	tiles, err := ReadTiles(Cfg.GetString("TileFile"))
	if err != nil {
		return nil, err
	}
	g, err := geometry(Cfg)
	if err != nil {
		return nil, err
	}
	cc, err := ColumnConfig(Cfg)
	if err != nil {
		return nil, err
	}
	sc, err := SolarConfig(Cfg)
	if err != nil {
		return nil, err
	}
	outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	vars, err := GetStringMapString("OutputVariables", Cfg)
	if err != nil {
		return nil, err
	}
	outputVars, err := checkOutputVars(vars)
	if err != nil {
		return nil, err
	}
	level, err := checkLogLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return nil, err
	}
	return &RunConfig{
		LogFile:         checkLogFile(Cfg.GetString("LogFile"), outputFile),
		OutputFile:      outputFile,
		OutputVariables: outputVars,
		LogLevel:        level,
		Tiles:           tiles,
		Geometry:        g,
		ColumnConfig:    cc,
		SolarConfig:     sc,
		StartHour:       Cfg.GetInt("StartHour"),
		Hours:           Cfg.GetInt("Hours"),
		LogPeriod:       Cfg.GetInt("LogPeriod"),
	}, nil
}

// runCmd is a command that runs a simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run simulates the tiles in TileFile for the specified number of hours
and saves the OutputVariables of every tile to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := runConfig()
		if err != nil {
			return err
		}
		return Run(cmd, cfg)
	},
	DisableAutoGenTag: true,
}

// describeCmd is a command that prints the initial state of the columns.
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the initial columns.",
	Long: `describe builds the column of every tile in TileFile and prints the
requested statistic of one layer of each column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tiles, err := ReadTiles(Cfg.GetString("TileFile"))
		if err != nil {
			return err
		}
		g, err := geometry(Cfg)
		if err != nil {
			return err
		}
		cc, err := ColumnConfig(Cfg)
		if err != nil {
			return err
		}
		stat, err := strata.ParseStatType(Cfg.GetString("Stat"))
		if err != nil {
			return err
		}
		section, err := strata.ParseSection(Cfg.GetString("Section"))
		if err != nil {
			return err
		}
		r := strata.StatRequest{Type: stat, Section: section, LayerIndex: Cfg.GetInt("LayerIndex")}
		return Describe(cmd.OutOrStdout(), tiles, g, cc, nil, r)
	},
	DisableAutoGenTag: true,
}
