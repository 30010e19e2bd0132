package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arthur-debert/plugs/cmd/plugs"
	"github.com/arthur-debert/plugs/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := plugs.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		verbosity, _ := rootCmd.PersistentFlags().GetCount("verbose")
		msg := errors.Format(err, verbosity >= 3)
		fmt.Fprintln(os.Stderr, plugs.ErrorStyle.Render("Error: "+msg))
		stop()
		os.Exit(1)
	}
}
