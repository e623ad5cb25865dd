package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdidvp/harmonizer/internal/adapters/inbound/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		var exit *cli.ExitError
		if !errors.As(err, &exit) || !exit.Silent() {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.ExitCode(err))
}
