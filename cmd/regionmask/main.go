/*
Copyright © 2024 the regionmask authors.
This file is part of regionmask.

regionmask is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regionmask is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regionmask.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command regionmask inspects the bundled region catalog and builds
// region code rasters and masks on synthetic or NetCDF-derived grid
// templates.
package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spatialgrid/regionmask"
	"github.com/spatialgrid/regionmask/grid"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

// cfg holds the configuration, bound to the command-line flags so that
// every option can also come from a config file or the environment.
var cfg *viper.Viper

var root = &cobra.Command{
	Use:   "regionmask",
	Short: "Rasterize country and continent polygons into grid masks.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile := cfg.GetString("config"); cfgFile != "" {
			cfg.SetConfigFile(cfgFile)
			if err := cfg.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
		}
		return nil
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions in the bundled catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := regionmask.LoadRegions()
		if err != nil {
			return err
		}
		records = regionmask.FilterRegions(records, filterNames())
		for _, r := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Name, r.Continent)
		}
		logger.Infof("%d regions", len(records))
		return nil
	},
}

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize",
	Short: "Build country and continent code layers on a grid template.",
	RunE: func(cmd *cobra.Command, args []string) error {
		template, err := loadTemplate()
		if err != nil {
			return err
		}
		rd, err := regionmask.MakeRegionsDataset(template, filterNames())
		if err != nil {
			return err
		}
		cc := rd.Var(regionmask.ContinentCodeVar)
		names := cc.Attrs["continent_names"].(map[int]string)
		census := make(map[int]int)
		for _, v := range cc.Data.Elements {
			if v != regionmask.FillValue {
				census[int(v)]++
			}
		}
		codes := make([]int, 0, len(census))
		for code := range census {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			logger.Infof("%s: %d cells", names[code], census[code])
		}
		return nil
	},
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Clip a grid template's variables to land or to named regions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		template, err := loadTemplate()
		if err != nil {
			return err
		}
		var masked *grid.Dataset
		if names := filterNames(); len(names) > 0 {
			masked, err = regionmask.MaskDatasetByRegions(template, names)
		} else {
			masked, err = regionmask.MaskDatasetByLand(template)
		}
		if err != nil {
			return err
		}
		for _, name := range masked.VarNames() {
			v := masked.Var(name)
			kept := 0
			for _, val := range v.Data.Elements {
				if !math.IsNaN(val) {
					kept++
				}
			}
			logger.Infof("%s: %d of %d cells retained", name, kept, len(v.Data.Elements))
		}
		return nil
	},
}

// loadTemplate builds the grid template the subcommands operate on:
// either a NetCDF file given with --template, or a synthetic global
// cube.
func loadTemplate() (*grid.Dataset, error) {
	if path := cfg.GetString("template"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return grid.ReadCDF(f)
	}
	return grid.NewCube(
		cfg.GetInt("width"), cfg.GetInt("height"), cfg.GetFloat64("res"),
		map[string]float64{"s": 0},
	), nil
}

func filterNames() []string {
	s := cfg.GetString("regions")
	if s == "" {
		return nil
	}
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

func main() {
	cfg = viper.New()
	cfg.SetEnvPrefix("REGIONMASK")
	cfg.AutomaticEnv()

	options := []struct {
		name, usage string
		defaultVal  interface{}
		flagset     *pflag.FlagSet
	}{
		{
			name:       "config",
			usage:      "path to a configuration file",
			defaultVal: "",
			flagset:    root.PersistentFlags(),
		},
		{
			name:       "regions",
			usage:      "comma-separated country or continent names to select",
			defaultVal: "",
			flagset:    root.PersistentFlags(),
		},
		{
			name:       "template",
			usage:      "NetCDF file supplying the grid template",
			defaultVal: "",
			flagset:    root.PersistentFlags(),
		},
		{
			name:       "width",
			usage:      "number of cells in the synthetic template's x direction",
			defaultVal: 360,
			flagset:    root.PersistentFlags(),
		},
		{
			name:       "height",
			usage:      "number of cells in the synthetic template's y direction",
			defaultVal: 180,
			flagset:    root.PersistentFlags(),
		},
		{
			name:       "res",
			usage:      "cell size of the synthetic template in degrees",
			defaultVal: 1.0,
			flagset:    root.PersistentFlags(),
		},
	}
	for _, o := range options {
		switch v := o.defaultVal.(type) {
		case string:
			o.flagset.String(o.name, v, o.usage)
		case int:
			o.flagset.Int(o.name, v, o.usage)
		case float64:
			o.flagset.Float64(o.name, v, o.usage)
		}
		cfg.BindPFlag(o.name, o.flagset.Lookup(o.name))
	}

	root.AddCommand(regionsCmd, rasterizeCmd, maskCmd)
	if err := root.Execute(); err != nil {
		logger.Fatal(err)
	}
}
