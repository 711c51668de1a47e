package source

import (
	"context"
	"os"

	"github.com/hashicorp/go-getter"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// Fetch downloads a catalog bundle into dst. src is any go-getter address:
// a local path, an http(s) archive, a git repository or an object store
// URL. Archives are unpacked.
func Fetch(ctx context.Context, src, dst string) error {
	if src == "" {
		return errors.Mark(errors.New("no catalog source configured"), errors.ErrNotConfigured)
	}
	pwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "get working directory")
	}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "fetch %s", src),
			"sources.remote accepts local paths, http(s) archives and git:: addresses",
		)
	}
	return nil
}
