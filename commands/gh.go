/*
Copyright 2025 The fgp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package commands

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"
)

const ghTimeout = time.Minute

// RunGH executes a gh invocation with the selected token, pinning the
// target repository with -R so gh never guesses from a local checkout.
func RunGH(ctx context.Context, args []string, repo, token string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, ghTimeout)
	defer cancel()

	ghArgs := append(append([]string{}, args...), "-R", repo)
	cmd := exec.CommandContext(ctx, "gh", ghArgs...)
	cmd.Env = append(os.Environ(),
		"GH_TOKEN="+token,
		"GH_HOST=github.com",
		"GH_FORCE_TTY=1",
		"NO_COLOR=1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}
