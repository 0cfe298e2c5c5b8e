// Title: fbuild CLI Application Entry Point
// Purpose: Wires the fbuild command-line interface. Running fbuild without a
// command bumps the build number and builds the Flutter app.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/fbuild/internal/cli/build"
	"github.com/nightconcept/fbuild/internal/cli/self"
	"github.com/nightconcept/fbuild/internal/cli/show"
)

// version is the application version, set at build time.
var version = "dev" // Default to "dev" if not set by ldflags

func newApp() *cli.App {
	return &cli.App{
		Name:    "fbuild",
		Usage:   "Bump the build number from git history, tag it and build the Flutter app",
		Version: version,
		Flags:   build.Flags(),
		Action:  build.Action,
		Commands: []*cli.Command{
			build.BuildCmd(),
			show.ShowCmd(),
			self.SelfCmd(),
		},
	}
}

func main() {
	// Ctrl-C cancels the context, which kills the running git or flutter child.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
