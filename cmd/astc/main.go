package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/texel-tools/astc/astc"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:  "astc",
		Usage: "compress and decompress ASTC texture files",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "compress",
				Usage:     "compress raw interleaved RGBA8 pixels to a .astc file",
				ArgsUsage: "<input.rgba> <output.astc>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Required: true},
					&cli.IntFlag{Name: "height", Required: true},
					&cli.IntFlag{Name: "block-x", Value: 4},
					&cli.IntFlag{Name: "block-y", Value: 4},
					&cli.IntFlag{Name: "quality", Value: int(astc.EncodeMedium), Usage: "0=fastest .. 5=exhaustive"},
					&cli.BoolFlag{Name: "zstd", Usage: "write a zstd-compressed .astcz file"},
				},
				Action: cmdCompress,
			},
			{
				Name:      "decompress",
				Usage:     "decompress a .astc or .astcz file to raw RGBA8 pixels",
				ArgsUsage: "<input.astc> <output.rgba>",
				Action:    cmdDecompress,
			},
			{
				Name:      "info",
				Usage:     "print the header of a .astc or .astcz file",
				ArgsUsage: "<input.astc>",
				Action:    cmdInfo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func cmdCompress(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("compress needs an input and an output path", 1)
	}

	width := c.Int("width")
	height := c.Int("height")

	pix, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	if len(pix) < width*height*4 {
		return fmt.Errorf("input too short: want %d bytes, got %d", width*height*4, len(pix))
	}

	start := time.Now()
	out, err := astc.EncodeRGBA8(pix, width, height, c.Int("block-x"), c.Int("block-y"), astc.EncodeQuality(c.Int("quality")))
	if err != nil {
		return err
	}

	if c.Bool("zstd") {
		hdr, blocks, err := astc.ParseFile(out)
		if err != nil {
			return err
		}
		out, err = astc.MarshalFileZstd(hdr, blocks)
		if err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"input":   c.Args().Get(0),
		"size":    len(out),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("compressed")

	return os.WriteFile(c.Args().Get(1), out, 0o644)
}

func cmdDecompress(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("decompress needs an input and an output path", 1)
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}

	pix, width, height, err := astc.DecodeRGBA8(data)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
	}).Info("decompressed")

	return os.WriteFile(c.Args().Get(1), pix, 0o644)
}

func cmdInfo(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("info needs an input path", 1)
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}

	hdr, blocks, err := astc.ParseFile(data)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %d block bytes\n", hdr, len(blocks))
	return nil
}
