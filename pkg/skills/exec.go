package skills

import (
	"bytes"
	"context"
	"os/exec"
)

// runShell runs command through "sh -c" in the project root, used for a
// manifest's post_apply hooks and its test command. Both are free-form
// shell one-liners a skill author writes, the same way original_source
// shells them out with subprocess.run(..., shell=True).
func (e *Engine) runShell(op, command string) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.Config.SubprocessTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.Root
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return newErr(KindSubprocessTimeout, op).withPath(command)
	}
	if err != nil {
		return newErr(KindSubprocessFailure, op).withPath(command).withErr(err)
	}
	return nil
}
