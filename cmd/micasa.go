package cmd

import (
	"fmt"

	"flux-tools/extract"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// micasaCmd represents the micasa command
var micasaCmd = &cobra.Command{
	Use:   "micasa site_ID",
	Short: "Extract tower NEE and the nearest MiCASA NEE cell for a site",
	Long: `Looks up the site's coordinates, reads its half-hourly FLUXNET subset
	file, converts NEE_VUT_REF from umolCO2 m-2 s-1 to kgC m-2 s-1 and
	averages it to 3-hourly. The MiCASA files for every day covered are
	opened together and the grid cell nearest the site is extracted.
	Both series are written to <outputDir>/<site_ID>_micasa.csv.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setLogLevels()

		opts, err := configFromViper()
		if err != nil {
			return err
		}
		paths, err := extract.Micasa(opts, args[0])
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
	rootCmd.AddCommand(micasaCmd)
}
