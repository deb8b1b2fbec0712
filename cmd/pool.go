package cmd

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/privacybydesign/rsarng"
	"github.com/privacybydesign/rsarng/pool"
)

// poolCmd groups the commands managing a bolt file of precalculated primes
var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage a file of precalculated primes",
	Long: `Precalculate primes into a bolt file that "read --pool bolt" draws from.
Every prime is handed out once. For example:
  rsarng pool fill --db primes.db --bits 1024 --count 16
  rsarng pool count --db primes.db --bits 1024`,
}

var poolFillCmd = &cobra.Command{
	Use:     "fill",
	Short:   "Generate primes and store them",
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		bits := viper.GetUint("bits")
		count := viper.GetInt("count")
		if count < 1 {
			return errors.Errorf("count must be positive")
		}

		bp, err := pool.OpenBoltPool(viper.GetString("db"))
		if err != nil {
			return err
		}
		defer closeWith(&err, bp.Close)

		primes := make([]*big.Int, 0, count)
		for i := 0; i < count; i++ {
			p, err := rsarng.RandomPrime(rand.Reader, bits)
			if err != nil {
				return err
			}
			primes = append(primes, p)
		}
		if err := bp.Store(bits, primes...); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{"bits": bits, "count": count}).Debug("stored primes")
		return printCount(cmd, bp, bits)
	},
}

var poolCountCmd = &cobra.Command{
	Use:     "count",
	Short:   "Print how many primes of a size are stored",
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		bp, err := pool.OpenBoltPool(viper.GetString("db"))
		if err != nil {
			return err
		}
		defer closeWith(&err, bp.Close)

		return printCount(cmd, bp, viper.GetUint("bits"))
	},
}

func printCount(cmd *cobra.Command, bp *pool.BoltPool, bits uint) error {
	n, err := bp.Count(bits)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
	return err
}

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolFillCmd, poolCountCmd)

	for _, c := range []*cobra.Command{poolFillCmd, poolCountCmd} {
		flags := c.Flags()
		flags.String("db", defaultDB(), "bolt file holding the primes")
		flags.Uint("bits", rsarng.DefaultHalfBits, "prime bit length")
	}
	poolFillCmd.Flags().Int("count", 8, "number of primes to generate")
}
