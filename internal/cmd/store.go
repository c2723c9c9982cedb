package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
	"github.com/MeKo-Tech/hflab/internal/store"
)

func openStore() (*store.Store, error) {
	path := viper.GetString("db")
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster database %s: %w", path, err)
	}
	return s, nil
}

func openStoreReadOnly() (*store.Store, error) {
	path := viper.GetString("db")
	s, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster database %s: %w", path, err)
	}
	return s, nil
}

// targetName returns the output raster name: the optional second argument,
// or the source name when the edit replaces it.
func targetName(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return args[0]
}

// editFunc transforms a loaded raster and returns the raster to store.
type editFunc func(sess *session.Session, f *hfield.Field) (*hfield.Field, error)

// runEdit loads args[0], applies fn and stores the result under targetName.
func runEdit(args []string, what string, fn editFunc) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	src, err := db.Get(args[0])
	if err != nil {
		return err
	}
	out, err := fn(sess, src)
	if err != nil {
		src.Release()
		return fmt.Errorf("%s %s: %w", what, args[0], err)
	}
	if out != src {
		src.Release()
	}
	defer out.Release()

	dst := targetName(args)
	if err := db.Put(dst, out); err != nil {
		return err
	}
	if err := db.Flush(); err != nil {
		return err
	}
	logger.Info("Raster stored", "op", what, "source", args[0], "name", dst,
		"width", out.Width, "height", out.Height, "min", out.Min, "max", out.Max)
	return nil
}
