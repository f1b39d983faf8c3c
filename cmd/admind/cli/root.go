package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	appVersion string // set in Execute, used by serve for telemetry
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admind",
		Short: "Administrator account management service",
		Long: `admind manages the administrator accounts of a KUB deployment: create,
list, update, and delete admins over a super-admin-guarded HTTP API, with
invite mails dispatched on creation and on demand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./admind.yaml)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newKeyCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("admind")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.admind")
	}

	viper.SetEnvPrefix("ADMIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	viper.ReadInConfig() // config file is optional
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.rate_limit_per_minute", 300)
	viper.SetDefault("server.cors.origins", []string{"*"})
	viper.SetDefault("auth.invite_ttl", "72h")
	viper.SetDefault("auth.invite_base_url", "http://localhost:8080")
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("mail.mode", "log")
	viper.SetDefault("mail.timeout", "10s")
	viper.SetDefault("mail.fail_domains", []string{"smtp.com"})
	viper.SetDefault("validation.middle_name_min", 2)
	viper.SetDefault("validation.middle_name_max", 64)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
