package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VriskaSerket51/eastward-go/src/app"
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringSliceP("type", "T", nil, "asset types to extract (default all); see the types command")
	extractCmd.Flags().IntP("jobs", "j", 1, "number of assets extracted concurrently")
	extractCmd.Flags().StringSlice("overlay", nil, "directories holding add-on <id>.g files loaded over the base packages")
	extractCmd.Flags().String("language", "", "translate decompiled scripts into this locale (en, ko, de, es, fr, zh-TW, zh-CN, ja)")
	extractCmd.Flags().Bool("builds", false, "also write the built record tree of every script")
	_ = viper.BindPFlag("type", extractCmd.Flags().Lookup("type"))
	_ = viper.BindPFlag("jobs", extractCmd.Flags().Lookup("jobs"))
	_ = viper.BindPFlag("overlay", extractCmd.Flags().Lookup("overlay"))
	_ = viper.BindPFlag("language", extractCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("builds", extractCmd.Flags().Lookup("builds"))
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts assets from the game root into the output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("Eastward extract running")

		root, err := requirePath("root")
		if err != nil {
			return err
		}
		out, err := requirePath("out")
		if err != nil {
			return err
		}
		overlays := viper.GetStringSlice("overlay")
		for i, o := range overlays {
			overlays[i] = app.ExpandPath(o)
		}

		// Update globals so downstream helpers/logs stay consistent
		GameRoot = root
		OutputPath = out

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sum, err := app.Extract(ctx, app.ExtractConfig{
			Root:     root,
			Out:      out,
			Types:    viper.GetStringSlice("type"),
			Jobs:     viper.GetInt("jobs"),
			Overlays: overlays,
			Language: viper.GetString("language"),
			Builds:   viper.GetBool("builds"),
		})
		if err != nil {
			return err
		}
		for _, f := range sum.Failures {
			log.Warn().Err(f.Err).Str("path", f.Path).Msg("not extracted")
		}

		log.Info().Msg("Eastward extract finished")
		return nil
	},
}
