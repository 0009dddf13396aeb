package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"gridmap/internal/geo"
	"gridmap/internal/raster"
	"gridmap/internal/tui"
)

func main() {
	var (
		markers = flag.String("markers", "", "comma-separated GeoJSON/CSV point files drawn as markers")
		pngOut  = flag.String("png", "", "render to this PNG file instead of starting the viewer")
		width   = flag.Int("width", 1024, "PNG width in pixels")
		height  = flag.Int("height", 768, "PNG height in pixels")
		bounds  = flag.String("bounds", "", "PNG bounds as north,south,east,west (default: data extent)")
		proj    = flag.String("proj", "mercator", "projection: mercator or equirect")
		thumbs  = flag.String("thumbs", "", "comma-separated thumbnail sizes written next to the PNG")
		pad     = flag.Float64("pad", raster.DefaultPad, "PNG cell overlap in pixels")
		palette = flag.String("palette", "", "PNG palette: spectral, yellow-red or comma-separated hex colors")
		logPath = flag.String("log", "", "write debug logs to this file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [grid.json|grid.asc[.gz]|points.geojson|points.csv]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "gridmap")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		raster.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	kind, err := raster.ParseProjectionKind(*proj)
	if err != nil {
		log.Fatal(err)
	}

	path := flag.Arg(0)
	pointFiles := splitList(*markers)
	if path != "" && geo.IsPoints(path) {
		pointFiles = append([]string{path}, pointFiles...)
		path = ""
	}
	var pts []raster.Point
	if len(pointFiles) > 0 {
		pts, err = geo.LoadPointFiles(context.Background(), pointFiles)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *pngOut != "" {
		sizes, err := parseSizes(*thumbs)
		if err != nil {
			log.Fatal(err)
		}
		pal, err := parsePalette(*palette)
		if err != nil {
			log.Fatal(err)
		}
		opts := exportOptions{
			gridPath: path,
			points:   pts,
			out:      *pngOut,
			width:    *width,
			height:   *height,
			bounds:   *bounds,
			proj:     kind,
			thumbs:   sizes,
			pad:      *pad,
			palette:  pal,
		}
		if err := export(opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	var m tui.Model
	if path != "" {
		m = tui.NewWithPath(path)
	} else {
		m = tui.New()
	}
	m = m.WithProjection(kind)
	if len(pts) > 0 {
		m = m.WithPoints(pts)
	}
	cells, _ := m.Layers()
	cells.Clicked.Subscribe(func(ev raster.PointerEvent) {
		raster.Logger().Info("click", "lat", ev.Lat, "lon", ev.Lon, "value", ev.Value, "ok", ev.OK)
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Fatal(err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
