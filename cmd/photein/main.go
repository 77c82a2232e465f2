package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	_ "time/tzdata"

	appErrors "photein/internal/errors"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	msg := appErrors.UserMessage(err)
	if errors.Is(err, context.Canceled) {
		msg = "interrupted"
	}
	fmt.Fprintf(os.Stderr, "photein: %s\n", msg)
	os.Exit(1)
}
