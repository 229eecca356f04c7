// Command atlasfetch downloads a texture atlas pack: an atlas image plus the
// atlas.yaml tile layout read by terraind's -atlas flag.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
)

func main() {
	var (
		src   = flag.String("src", "", "go-getter source of the atlas pack (git::, http(s)://, s3::, local dir)")
		out   = flag.String("o", "./atlas", "output dir path")
		image = flag.String("image", "atlas.png", "atlas image file name inside the pack")
	)
	flag.Parse()

	if *src == "" {
		panic("source url required")
	}

	if *out == "" {
		panic("output dir path required")
	}

	if err := os.RemoveAll(*out); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading atlas pack %s", *src)

	if err := get.Get(*out, *src); err != nil {
		panic(err)
	}

	atlas, err := block.LoadAtlas(filepath.Join(*out, "atlas.yaml"))
	if err != nil {
		panic(err)
	}

	w, h, err := imageSize(filepath.Join(*out, *image))
	if err != nil {
		panic(err)
	}

	tiles := int(1 / atlas.TileSize)
	if w != h || w%tiles != 0 {
		panic(fmt.Sprintf("atlas image is %dx%d, want a square divisible into %d tiles", w, h, tiles))
	}

	log.Default().Printf("done downloading atlas pack %s (%dx%d, %dpx tiles)", *out, w, h, w/tiles)
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
