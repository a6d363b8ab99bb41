// Duotone - gradient map image recolouring
//
// Duotone recolours images with a two-stop gradient map driven by pixel
// luminance, with optional tone adjustment and size-targeted JPEG output.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/duotone/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
