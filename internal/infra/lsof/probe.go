// Package lsof detects files that another process holds open.
package lsof

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"photein/internal/deps"
)

type Probe struct{}

func (Probe) Holder(ctx context.Context, path string) (string, int, bool, error) {
	bin, err := deps.Require("lsof", "checking for open files (--safe)")
	if err != nil {
		return "", 0, false, err
	}
	output, err := exec.CommandContext(ctx, bin, "-F", "pc", "--", path).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(output) == 0 {
			// lsof exits 1 when nothing has the file open
			return "", 0, false, nil
		}
		return "", 0, false, fmt.Errorf("lsof: %w", err)
	}
	command, pid, ok := ParseFields(string(output))
	return command, pid, ok, nil
}

// ParseFields reads the first process from `lsof -F pc` output.
func ParseFields(output string) (command string, pid int, ok bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			if ok {
				return command, pid, true
			}
			n, err := strconv.Atoi(line[1:])
			if err != nil {
				continue
			}
			pid, ok = n, true
		case 'c':
			if ok && command == "" {
				command = line[1:]
			}
		}
	}
	return command, pid, ok
}
