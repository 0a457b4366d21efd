package supervisor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout applies when an invocation carries none.
const DefaultTimeout = 5 * time.Minute

const maxDiagnosticLine = 4 * 1024 * 1024

// pipeWaitDelay bounds how long a killed process's descendants may
// keep the output pipes open before Wait force-closes them.
const pipeWaitDelay = time.Second

// Runner is the supervised-execution contract the dispatch path
// depends on. Tests substitute a fake to assert zero spawns.
type Runner interface {
	Run(ctx context.Context, inv Invocation) *Result
}

// Supervisor executes external processes with a hard deadline and a
// concurrently drained diagnostic channel.
type Supervisor struct{}

func New() *Supervisor {
	return &Supervisor{}
}

var _ Runner = (*Supervisor)(nil)

// Run spawns the invocation and produces exactly one Result. The
// deadline is enforced by killing the process outright; there is no
// grace period. All goroutines started here are joined before Run
// returns.
func (s *Supervisor) Run(ctx context.Context, inv Invocation) *Result {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = pipeWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailure(err, time.Since(start))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnFailure(err, time.Since(start))
	}

	if err := cmd.Start(); err != nil {
		res := spawnFailure(err, time.Since(start))
		log.Warn().Str("command", inv.Command).Str("kind", string(res.Kind)).Msg("spawn failed")
		return res
	}

	// The diagnostic channel is drained on its own goroutine, started
	// before anything waits on the process. Diagnostic volume can
	// exceed the OS pipe buffer; a process that blocks writing stderr
	// would deadlock against a sequential wait-then-read.
	var progress []ProgressLine
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64*1024), maxDiagnosticLine)
		for sc.Scan() {
			progress = append(progress, tagLine(sc.Text()))
		}
		if err := sc.Err(); err != nil && !errors.Is(err, fs.ErrClosed) {
			// An oversized line aborts the scan; keep the pipe moving
			// so the process cannot block writing diagnostics.
			_, _ = io.Copy(io.Discard, stderr)
			progress = append(progress, tagLine(fmt.Sprintf("diagnostic stream truncated: %v", err)))
		}
	}()

	var out []byte
	var outErr error
	outDone := make(chan struct{})
	go func() {
		defer close(outDone)
		out, outErr = io.ReadAll(stdout)
	}()

	// Wait runs concurrently with the two readers but its result is
	// consumed only after both have finished: Wait closes the pipe
	// read ends once the process exits, and a join in the other order
	// loses buffered output on a fast exit. On deadline the context
	// kills the process and WaitDelay force-closes the pipes if
	// orphaned descendants still hold them, so both readers always
	// terminate and the joins below cannot hang.
	waited := make(chan error, 1)
	go func() {
		waited <- cmd.Wait()
	}()

	<-outDone
	<-drainDone
	waitErr := <-waited

	elapsed := time.Since(start)

	if runCtx.Err() != nil && waitErr != nil {
		msg := fmt.Sprintf("killed after exceeding the %s deadline", timeout)
		if ctx.Err() != nil {
			msg = fmt.Sprintf("canceled after %s: %v", elapsed.Round(time.Millisecond), ctx.Err())
		}
		log.Warn().
			Str("command", inv.Command).
			Dur("elapsed", elapsed).
			Int("progress_lines", len(progress)).
			Msg("deadline exceeded, process killed")
		return &Result{
			Kind:     KindTimeout,
			Progress: progress,
			Elapsed:  elapsed,
			ExitCode: -1,
			Message:  msg,
		}
	}

	exit := 0
	if cmd.ProcessState != nil {
		exit = cmd.ProcessState.ExitCode()
	}

	if outErr != nil {
		return &Result{
			Kind:     KindUnparsableOutput,
			Progress: progress,
			Elapsed:  elapsed,
			ExitCode: exit,
			Message:  fmt.Sprintf("reading primary output: %v", outErr),
		}
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return &Result{
			Kind:     KindUnparsableOutput,
			Progress: progress,
			Elapsed:  elapsed,
			ExitCode: exit,
			Message:  "executable produced no output on the primary channel",
		}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return &Result{
			Kind:     KindUnparsableOutput,
			RawText:  raw,
			Progress: progress,
			Elapsed:  elapsed,
			ExitCode: exit,
			Message:  "primary output is not valid JSON",
		}
	}

	success := exit == 0
	if v, ok := payload["success"].(bool); ok {
		success = v
	}

	res := &Result{
		Success:  success,
		Payload:  payload,
		RawText:  raw,
		Progress: progress,
		Elapsed:  elapsed,
		ExitCode: exit,
	}
	log.Debug().
		Str("command", inv.Command).
		Bool("success", success).
		Int("exit", exit).
		Dur("elapsed", elapsed).
		Int("progress_lines", len(progress)).
		Msg("process complete")
	return res
}

func spawnFailure(err error, elapsed time.Duration) *Result {
	kind := KindSpawn
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		kind = KindExecutableNotFound
	}
	return &Result{
		Kind:     kind,
		Elapsed:  elapsed,
		ExitCode: -1,
		Message:  err.Error(),
	}
}
