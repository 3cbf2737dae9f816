package cmd

import (
	"flux-tools/extract"
	"flux-tools/gridflux"
	"flux-tools/towerflux"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// configFromViper collects the bound flags and config file values.
func configFromViper() (extract.ConfigOpts, error) {
	engine, err := gridflux.ParseEngine(viper.GetString("engine"))
	if err != nil {
		return extract.ConfigOpts{}, err
	}
	return extract.ConfigOpts{
		MetaPath:      viper.GetString("meta"),
		TowerRoot:     viper.GetString("towerRoot"),
		GridRoot:      viper.GetString("gridRoot"),
		OutputDir:     viper.GetString("outputDir"),
		Engine:        engine,
		Format:        viper.GetString("format"),
		AggFunc:       chooseAggFunc(viper.GetString("aggFunc")),
		FluxColumn:    viper.GetString("fluxColumn"),
		MaxDistanceKm: viper.GetFloat64("maxDistanceKm"),
		Manifest:      viper.GetBool("manifest"),
		MetricsFile:   viper.GetString("metricsFile"),
	}, nil
}

func chooseAggFunc(funcFlag string) towerflux.AggFunc {
	switch funcFlag {
	case "mean":
		return towerflux.Mean
	case "sum":
		return towerflux.Sum
	case "max":
		return towerflux.Max
	case "min":
		return towerflux.Min
	default:
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return towerflux.Mean
	}
}
