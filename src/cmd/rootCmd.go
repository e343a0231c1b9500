package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VriskaSerket51/eastward-go/src/app"
)

var (
	GameRoot   string
	OutputPath string
	InputPath  string
	Recursive  bool

	cfgFile           string
	debugMode         bool
	humanReadableLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "eastward",
	Short: "Eastward asset tools: extract game content and rebuild package files",
	Long: `Eastward asset tools read the packed archives of an Eastward install,
			extract its assets into plain files and convert them back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Show help by default when no subcommand is provided
		return cmd.Help()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initDebugMode)
	cobra.OnInitialize(initHumanOutput)
	cobra.OnInitialize(initPathsFromViper)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eastward.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&humanReadableLogs, "human", false, "enable human readable mode")
	rootCmd.PersistentFlags().StringVar(&GameRoot, "root", defaultGameRoot(), "game root directory, or the source directory for zip and inject")
	rootCmd.PersistentFlags().StringVarP(&OutputPath, "out", "o", defaultOutputPath(), "output directory or file")
	rootCmd.PersistentFlags().StringVarP(&InputPath, "in", "i", "", "input directory or file")
	rootCmd.PersistentFlags().BoolVarP(&Recursive, "recursive", "r", false, "convert every file under the input directory")

	// Bind persistent flags to Viper keys
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("human", rootCmd.PersistentFlags().Lookup("human"))
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("out", rootCmd.PersistentFlags().Lookup("out"))
	_ = viper.BindPFlag("in", rootCmd.PersistentFlags().Lookup("in"))
	_ = viper.BindPFlag("recursive", rootCmd.PersistentFlags().Lookup("recursive"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".eastward" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".eastward")
	}

	viper.SetEnvPrefix("EASTWARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		log.Info().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func initDebugMode() {
	if viper.GetBool("debug") || debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func initHumanOutput() {
	if viper.GetBool("human") || humanReadableLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func initPathsFromViper() {
	// Sync our derived variables from Viper so config/env are respected
	if v := viper.GetString("root"); v != "" {
		GameRoot = app.ExpandPath(v)
	}
	if v := viper.GetString("out"); v != "" {
		OutputPath = app.ExpandPath(v)
	}
	if v := viper.GetString("in"); v != "" {
		InputPath = app.ExpandPath(v)
	}
}

// requirePath reads a path setting, failing when it is empty.
func requirePath(key string) (string, error) {
	v := viper.GetString(key)
	if v == "" {
		return "", fmt.Errorf("required option: --%s", key)
	}
	return app.ExpandPath(v), nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultGameRoot() string {
	switch runtime.GOOS {
	case "darwin":
		return app.ExpandPath(
			"~/Library/Application Support/Steam/steamapps/common/Eastward",
		)
	case "windows":
		return `C:\Program Files (x86)\Steam\steamapps\common\Eastward`
	case "linux":
		return app.ExpandPath(
			"~/.local/share/Steam/steamapps/common/Eastward",
		)
	default:
		return "."
	}
}

func defaultOutputPath() string {
	return app.ExpandPath(
		"./output",
	)
}
