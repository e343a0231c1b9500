package cmd

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/VriskaSerket51/eastward-go/src/app"
)

func init() {
	rootCmd.AddCommand(unzipCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(injectCmd)
}

var unzipCmd = &cobra.Command{
	Use:   "unzip [FILE.g]...",
	Short: "Unpacks .g package files into <out>/<package name>/",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no package files given")
		}
		out, err := requirePath("out")
		if err != nil {
			return err
		}
		log.Info().Strs("files", args).Str("out", out).Msg("Eastward unzip running")

		files := make([]string, len(args))
		for i, a := range args {
			files[i] = app.ExpandPath(a)
		}
		res, err := app.Unzip(files, out)
		if err != nil {
			return err
		}

		log.Info().Int("files", res.Done).Int("failed", res.Failed).Msg("Eastward unzip finished")
		return nil
	},
}

var zipCmd = &cobra.Command{
	Use:   "zip",
	Short: "Packs every file under --root into the .g package file --out",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requirePath("root")
		if err != nil {
			return err
		}
		out, err := requirePath("out")
		if err != nil {
			return err
		}
		log.Info().Str("root", root).Str("out", out).Msg("Eastward zip running")

		if _, err := app.Zip(root, out); err != nil {
			return err
		}

		log.Info().Msg("Eastward zip finished")
		return nil
	},
}

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Writes the files under --root over the entries of package --in and saves it as --out",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := requirePath("root")
		if err != nil {
			return err
		}
		in, err := requirePath("in")
		if err != nil {
			return err
		}
		out, err := requirePath("out")
		if err != nil {
			return err
		}
		log.Info().Str("root", root).Str("in", in).Str("out", out).Msg("Eastward inject running")

		if _, err := app.Inject(root, in, out); err != nil {
			return err
		}

		log.Info().Msg("Eastward inject finished")
		return nil
	},
}
