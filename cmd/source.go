package cmd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/go-errors/errors"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/privacybydesign/rsarng/pool"
)

// openPool returns the prime pool selected by the "pool" setting together
// with a function releasing it.
func openPool(ctx context.Context, r io.Reader, bits uint) (pool.PrimePool, func() error, error) {
	nop := func() error { return nil }

	switch kind := viper.GetString("pool"); kind {
	case "", "random":
		return pool.NewRandomPool(r), nop, nil
	case "memory":
		mp, err := pool.NewMemoryPool(ctx, r, viper.GetInt("pool-size"), bits)
		if err != nil {
			return nil, nil, err
		}
		return mp, mp.Close, nil
	case "bolt":
		bp, err := pool.OpenBoltPool(viper.GetString("db"))
		if err != nil {
			return nil, nil, err
		}
		return bp, bp.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown pool %q (want random, memory or bolt)", kind)
	}
}

// closeWith runs release and reports its error through err unless err already
// holds one.
func closeWith(err *error, release func() error) {
	if cerr := release(); cerr != nil && *err == nil {
		*err = errors.WrapPrefix(cerr, "close", 0)
	}
}

// bindFlags binds the flags of the command being run, so flags of the same
// name on other commands do not shadow them.
func bindFlags(cmd *cobra.Command, args []string) error {
	return viper.BindPFlags(cmd.Flags())
}

func defaultDB() string {
	home, err := homedir.Dir()
	if err != nil {
		return pool.DefaultBoltFile
	}
	return filepath.Join(home, ".rsarng-"+pool.DefaultBoltFile)
}
