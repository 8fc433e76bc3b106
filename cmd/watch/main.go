// Package main renders a simulation server's spectator stream in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/cory-johannsen/skirmish/internal/frontend/terminal"
	"github.com/cory-johannsen/skirmish/internal/spectator"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws", "spectator hub URL")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := spectator.Dial(ctx, *url)
	cancel()
	if err != nil {
		log.Fatalf("connecting: %v", err)
	}
	defer client.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("creating screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("initializing screen: %v", err)
	}

	quit := make(chan struct{})
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					close(quit)
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	frames := make(chan spectator.Frame, 1)
	errs := make(chan error, 1)
	go func() {
		for {
			f, err := client.Next()
			if err != nil {
				errs <- err
				return
			}
			frames <- f
		}
	}()

	r := terminal.NewRenderer(screen)
	for {
		select {
		case <-quit:
			screen.Fini()
			return
		case err := <-errs:
			screen.Fini()
			fmt.Fprintf(os.Stderr, "stream ended: %v (missed %d frames)\n", err, client.Missed())
			os.Exit(1)
		case f := <-frames:
			r.Draw(f)
		}
	}
}
