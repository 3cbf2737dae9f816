// Package cmd holds the flux-tools command line.
package cmd

import (
	"os"

	"flux-tools/extract"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Verbose bool
var Debug bool
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flux-tools",
	Short: "Extract flux tower and gridded carbon flux series for a site",
	Long: `Pairs AmeriFlux FLUXNET tower observations with the nearest MiCASA
	grid cell and writes the aligned series for plotting:
	./flux-tools micasa [opts] [site_ID]
	./flux-tools compare [opts] [site_ID] [HH|DD] [variable...]`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Fatalf("Reading config %s: %v", cfgFile, err)
	}
	logrus.Infof("Using config file %s", viper.ConfigFileUsed())
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// bindPersistent registers a persistent flag's viper key, exiting if the
// flag does not exist.
func bindPersistent(key string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
		logrus.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json) overriding the defaults below")
	flags.BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	bindPersistent("verbose")
	flags.BoolVarP(&Debug, "debug", "d", false, "Debug output")
	bindPersistent("debug")

	flags.String("meta", extract.DefaultMetaPath, "AmeriFlux site metadata table (tab separated)")
	bindPersistent("meta")
	flags.String("towerRoot", extract.DefaultTowerRoot, "Directory holding AMF_<site>_FLUXNET_SUBSET_* folders")
	bindPersistent("towerRoot")
	flags.String("gridRoot", extract.DefaultGridRoot, "Directory holding <year>/<month>/MiCASA_v1_flux_*.nc4 files")
	bindPersistent("gridRoot")
	flags.StringP("outputDir", "o", extract.DefaultOutputDir, "Directory to write results to, created if absent")
	bindPersistent("outputDir")
	flags.StringP("engine", "e", "netcdf", "Reader for gridded files, choose from: netcdf, gdal")
	bindPersistent("engine")
	flags.StringP("format", "f", extract.FormatCSV, "Output format, choose from: csv, parquet")
	bindPersistent("format")
	flags.StringP("aggFunc", "a", "mean", "Function used to resample tower data. Default is the mean, choose from: mean, sum, max, min")
	bindPersistent("aggFunc")
	flags.String("fluxColumn", "NEE_VUT_REF", "Tower column to extract")
	bindPersistent("fluxColumn")
	flags.Float64("maxDistanceKm", 0, "Fail when the nearest grid cell is farther than this, 0 disables the check")
	bindPersistent("maxDistanceKm")
	flags.Bool("manifest", false, "Write a JSON provenance record next to each output")
	bindPersistent("manifest")
	flags.String("metricsFile", "", "Write run metrics in Prometheus textfile format to this path")
	bindPersistent("metricsFile")
}
