package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/costengine/pkg/client"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

// NewRootCmd builds the costengine command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "costengine",
		Short: "Cost analysis engine CLI",
		Long: `costengine detects cost anomalies, proposes optimizations and summarizes
potential savings, either offline from local cost files or against a running
costengine API server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return initClient()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.costengine/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newAnomalyCmd())
	rootCmd.AddCommand(newRecommendationCmd())
	rootCmd.AddCommand(newJobCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("COSTENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")
	viper.SetDefault("user", os.Getenv("USER"))

	_ = viper.ReadInConfig()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home + "/.costengine", nil
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return "table"
}

// currentUser is recorded on status changes when --user is not given
func currentUser(flag string) string {
	if flag != "" {
		return flag
	}
	if u := viper.GetString("user"); u != "" {
		return u
	}
	return "cli"
}
