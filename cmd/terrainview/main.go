package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	levelName := flag.String("level", "cavern.yaml", "level descriptor in levels/")
	debug := flag.Bool("debug", false, "log terrain events and draw shape outlines")
	watch := flag.Bool("watch", true, "reload when prefabs/ or levels/ change on disk")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("terrainview")

	viewer, err := NewViewer(*levelName, *debug, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer viewer.Close()

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
