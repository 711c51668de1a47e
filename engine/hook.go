package engine

import (
	"context"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/store"
)

// maxHookOutput bounds how much command output is attached to an error
const maxHookOutput = 2048

// CommandHook returns a store verify hook that runs command in dir after a
// batch is written. The command is split with shell quoting rules and run
// without a shell; a non-zero exit rolls the batch back. A zero timeout
// means no limit.
func CommandHook(dir, command string, timeout time.Duration, log *zap.SugaredLogger) (store.VerifyHook, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse validate command %q", command), errors.ErrInvalid)
	}
	if len(args) == 0 {
		return nil, errors.Mark(errors.New("validate command is empty"), errors.ErrInvalid)
	}
	log = logger.OrNop(log)

	return func(ctx context.Context, lib *store.Library) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		log.Debugw("validate command finished",
			"command", args[0],
			logger.FieldCount, len(lib.Records),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		if err != nil {
			err = errors.Wrapf(err, "validate command %s", args[0])
			if text := tail(string(out), maxHookOutput); text != "" {
				err = errors.WithDetail(err, text)
			}
			return err
		}
		return nil
	}, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return "..." + s[start:]
}
