package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/leakprobe/internal/logging"
	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leakprobe",
	Short: "leakprobe - benchmark contamination probe against web archives",
	Long: `leakprobe renders multiple-choice QA benchmark records into natural
language queries that fuse the question with its gold answer, then asks
web archives whether that exact text was ever captured.

A capture is a proxy signal that the example leaked into a crawl used for
pretraining. leakprobe does not crawl, does not guarantee archive coverage,
and does not detect paraphrases.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("leakprobe v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.leakprobe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults(model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.leakprobe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// LEAKPROBE_ARCHIVE_BACKEND overrides archive.backend, and so on
	viper.SetEnvPrefix("LEAKPROBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that env
// variables can override keys absent from the config file
func registerDefaults(cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults("", tree)
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// bindFlags maps command flags onto config keys. Binding happens at run
// time so commands sharing a key do not override each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadConfig resolves defaults, config file, env and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) *slog.Logger {
	level := cfg.Output.LogLevel
	if cfg.Output.Verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level)
}
