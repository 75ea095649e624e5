// Command koala renders an HTML file through the pipeline and prints its
// display list, a minimal demo harness in the spirit of example/main.go's
// bare net/http server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"koala/paint"
	"koala/pipeline"
)

func main() {
	var (
		viewportW = flag.Float64("width", 1280, "viewport width in CSS pixels")
		viewportH = flag.Float64("height", 720, "viewport height in CSS pixels")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() != 1 {
		logger.Error("usage: koala [-width N] [-height N] <file.html>")
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	p := &pipeline.Pipeline{Logger: logger}
	res := p.Render(string(src), *viewportW, *viewportH)

	if n := res.Diag.Count(); n > 0 {
		logger.Warn("parse diagnostics", "count", n)
	}

	if res.Root == nil {
		logger.Warn("document produced no visible content")
		return
	}

	fmt.Printf("root: %+v\n", res.Root.ContentRect)
	for i, cmd := range res.Display {
		fmt.Println(describeCommand(i, cmd))
	}
}

func describeCommand(i int, cmd paint.Command) string {
	switch cmd.Kind {
	case paint.FillRect:
		return fmt.Sprintf("%d: fill-rect %v %s", i, cmd.Rect, cmd.Color)
	case paint.FillRoundedRect:
		return fmt.Sprintf("%d: fill-rounded-rect %v r=%.1f %s", i, cmd.Rect, cmd.Radius, cmd.Color)
	case paint.DrawImage:
		return fmt.Sprintf("%d: draw-image %v src=%q", i, cmd.Rect, cmd.Src)
	case paint.DrawText:
		return fmt.Sprintf("%d: draw-text %v %q font=%s@%.0fpx decoration=%s", i, cmd.Rect, cmd.Text, cmd.FontFamily, cmd.FontSizePx, cmd.Decoration)
	case paint.StrokeBorder:
		return fmt.Sprintf("%d: stroke-border %v side=%d width=%.1f %s", i, cmd.Rect, cmd.Side, cmd.Thickness, cmd.Color)
	case paint.DrawBoxShadow:
		return fmt.Sprintf("%d: box-shadow %v blur=%.1f %s", i, cmd.Rect, cmd.BlurPx, cmd.Color)
	default:
		return fmt.Sprintf("%d: unknown command", i)
	}
}
