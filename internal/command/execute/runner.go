package execute

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/models"

	"github.com/alessio/shellescape"
)

// Runner executes a single variant.
//
// Non-zero exits are reported through ExitCode; the error is reserved for failures
// to start the process or context expiry.
type Runner interface {
	Run(ctx context.Context, v models.CommandVariant) (models.ExecutionResult, error)
}

// ExecRunner runs variants as child processes.
type ExecRunner struct {
	// MaxOutput caps the captured stdout in bytes (0 uses the default).
	MaxOutput int
}

const defaultMaxOutput = 64 << 20

// Run starts the variant's binary in its own process group and waits for it.
func (r ExecRunner) Run(ctx context.Context, v models.CommandVariant) (models.ExecutionResult, error) {
	res := models.ExecutionResult{Variant: v.Name, ExitCode: -1}

	logger.Pl.D(1, "Executing %s variant %q: %s", v.Binary, v.Name,
		shellescape.QuoteCommand(append([]string{v.Binary}, v.Args...)))

	limit := r.MaxOutput
	if limit <= 0 {
		limit = defaultMaxOutput
	}
	stdout := &cappedBuffer{limit: limit}
	stderr := &tailBuffer{limit: 64 << 10}

	cmd := exec.CommandContext(ctx, v.Binary, v.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	setProcessGroup(cmd)
	cmd.WaitDelay = consts.KillGracePeriod

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return res, err
	}
	return res, nil
}

// cappedBuffer stops recording after limit bytes but keeps accepting writes.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
		} else {
			c.buf.Write(p)
		}
	}
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte { return c.buf.Bytes() }

// tailBuffer keeps the last limit bytes written.
type tailBuffer struct {
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
