package cmd

import (
	"fmt"

	"flux-tools/extract"
	"flux-tools/towerflux"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare site_ID {HH|DD} variable...",
	Short: "Compare tower NEE in UTC with MiCASA variables at a site",
	Long: `Reads the site's FLUXNET subset file at the given resolution, treats
	its timestamps as local standard time for the site's time zone (no
	daylight saving) and shifts them to UTC. HH data is averaged to 3-hourly,
	DD data to daily, along with the gridded series. The resolution is
	matched exactly, so it must be upper case.

	One file is written per variable:
		<outputDir>/<site_ID>_<variable>_<HH|DD>.csv`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevels()

		res, err := towerflux.ParseResolution(args[1])
		if err != nil {
			return err
		}
		opts, err := configFromViper()
		if err != nil {
			return err
		}
		paths, err := extract.Compare(opts, args[0], res, args[2:])
		if err != nil {
			return err
		}
		for _, p := range paths {
			logrus.Infof("Wrote %s", p)
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
