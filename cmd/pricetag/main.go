package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}
