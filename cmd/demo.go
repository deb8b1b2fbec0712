package cmd

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/privacybydesign/rsarng"
)

// demoCmd walks through one construction and prints every intermediate value
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print the primes, modulus, seed and output of a small generator",
	Long: `Generate two primes, print p, q, n, phi(n), the modulus fingerprint and the
seed x, then print the
requested number of output bits as one integer (bit i is the i-th bit produced).
Bit counts not given as flags are prompted for. For example:
  rsarng demo --prime-bits 64 --output-bits 128`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		primeBits, err := askUint(in, out, "prime bit count", viper.GetUint("prime-bits"))
		if err != nil {
			return err
		}
		p, err := rsarng.RandomPrime(rand.Reader, primeBits)
		if err != nil {
			return err
		}
		q, err := rsarng.RandomPrime(rand.Reader, primeBits)
		if err != nil {
			return err
		}

		m, err := rsarng.NewModulus(p, q)
		if err != nil {
			return err
		}
		phi := new(big.Int).Mul(new(big.Int).Sub(p, big.NewInt(1)), new(big.Int).Sub(q, big.NewInt(1)))

		x, err := rsarng.SampleSeed(rand.Reader, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "p=%v\nq=%v\nn=%v\nphi_n=%v\nfingerprint=%s\nx=%v\n\n", p, q, m.N(), phi, m.Fingerprint(), x)

		outputBits, err := askUint(in, out, "output bit count", viper.GetUint("output-bits"))
		if err != nil {
			return err
		}
		g, err := rsarng.NewFromSeed(m, x)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, g.Bits(outputBits))
		return err
	},
}

// askUint returns value when it is set and prompts for a number otherwise.
func askUint(in *bufio.Scanner, out io.Writer, prompt string, value uint) (uint, error) {
	if value != 0 {
		return value, nil
	}

	fmt.Fprintf(out, "%s: ", prompt)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return 0, errors.Wrap(err, 0)
		}
		return 0, errors.Errorf("%s: no input", prompt)
	}
	fmt.Fprintln(out)

	v, err := strconv.ParseUint(strings.TrimSpace(in.Text()), 10, 32)
	if err != nil {
		return 0, errors.WrapPrefix(err, prompt, 0)
	}
	return uint(v), nil
}

func init() {
	rootCmd.AddCommand(demoCmd)

	flags := demoCmd.Flags()
	flags.Uint("prime-bits", 0, "bit length of each prime (prompted when 0)")
	flags.Uint("output-bits", 0, "number of output bits (prompted when 0)")
}
