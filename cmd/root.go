package cmd

import (
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/privacybydesign/rsarng"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rsarng",
	Short: "RSA-based pseudorandom bit generator.",
	Long: `RSA-based pseudorandom bit generator.
Every output bit is the low bit of a state that advances as x -> x^65537 mod n.
For example:
  rsarng read --half-bits 1024 --bytes 32
  rsarng demo --prime-bits 64 --output-bits 128
  rsarng pool fill --db primes.db --bits 1024 --count 16`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetOutput(cmd.ErrOrStderr())
		if viper.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		rsarng.SetLogger(logrus.StandardLogger())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rsarng.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log modulus construction")
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".rsarng")
	}

	viper.SetEnvPrefix("rsarng")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}
