package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/privacybydesign/rsarng"
	"github.com/privacybydesign/rsarng/pool"
)

// readCmd writes generator output to stdout
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Write generated bytes to stdout",
	Long: `Build a fresh generator and write its output to stdout. For example:
  rsarng read --half-bits 1024 --bytes 32
  rsarng read --pool bolt --db primes.db --bytes 1024 --format raw > out.bin`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		halfBits := viper.GetUint("half-bits")
		n := viper.GetInt("bytes")
		if n < 0 {
			return errors.Errorf("byte count must not be negative")
		}

		r := pool.NewSyncReader(rand.Reader)
		src, release, err := openPool(cmd.Context(), r, halfBits)
		if err != nil {
			return err
		}
		defer closeWith(&err, release)

		g, err := rsarng.New(r, halfBits,
			rsarng.WithPrimePool(src),
			rsarng.WithMaxAttempts(viper.GetInt("max-attempts")),
		)
		if err != nil {
			return err
		}

		buf := make([]byte, n)
		g.FillBytes(buf)

		out := cmd.OutOrStdout()
		switch format := viper.GetString("format"); format {
		case "hex":
			_, err = fmt.Fprintln(out, hex.EncodeToString(buf))
		case "raw":
			_, err = out.Write(buf)
		default:
			err = errors.Errorf("unknown format %q (want hex or raw)", format)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	flags := readCmd.Flags()
	flags.Uint("half-bits", rsarng.DefaultHalfBits, "bit length of each prime factor")
	flags.Int("bytes", 32, "number of bytes to write")
	flags.String("format", "hex", "output format: hex or raw")
	flags.String("pool", "random", "prime source: random, memory or bolt")
	flags.Int("pool-size", 4, "primes buffered by the memory pool")
	flags.String("db", defaultDB(), "bolt file used by the bolt pool")
	flags.Int("max-attempts", rsarng.DefaultMaxAttempts, "prime pairs tried before giving up")
}
