package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VriskaSerket51/eastward-go/src/app"
	"github.com/VriskaSerket51/eastward-go/src/asset"
)

var (
	hmg2pngCmd  = newConvertCmd(app.HMGToPNG, "Converts hmg images to PNG")
	hmg2bmpCmd  = newConvertCmd(app.HMGToBMP, "Converts hmg images to BMP")
	png2hmgCmd  = newConvertCmd(app.PNGToHMG, "Converts PNG images to hmg")
	json2msgCmd = newConvertCmd(app.JSONToPacked, "Converts JSON files to their packed form (<name>.packed when recursive)")
)

func init() {
	rootCmd.AddCommand(hmg2pngCmd)
	rootCmd.AddCommand(hmg2bmpCmd)
	rootCmd.AddCommand(png2hmgCmd)
	rootCmd.AddCommand(json2msgCmd)
	rootCmd.AddCommand(typesCmd)
}

func newConvertCmd(c app.Conversion, short string) *cobra.Command {
	return &cobra.Command{
		Use:   c.Name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := requirePath("in")
			if err != nil {
				return err
			}
			out, err := requirePath("out")
			if err != nil {
				return err
			}
			recursive := viper.GetBool("recursive")
			log.Info().
				Str("in", in).
				Str("out", out).
				Bool("recursive", recursive).
				Msgf("Eastward %s running", c.Name)

			if _, err := app.Convert(c, in, out, recursive); err != nil {
				return err
			}

			log.Info().Msgf("Eastward %s finished", c.Name)
			return nil
		},
	}
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Lists the asset types extract can load",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range asset.Types() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}
