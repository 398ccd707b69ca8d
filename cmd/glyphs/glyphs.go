package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/internal/logx"
)

func main() {
	inputFont := flag.String("font", "", "Path to the input font file (required)")
	fallbackFont := flag.String("fallback", "", "Font used for glyphs missing from -font")
	alphabetFlag := flag.String("alphabet", img2ascii.DefaultAlphabet.String(),
		"Luminance glyphs from darkest to brightest")
	outputFile := flag.String("output", "",
		"Path to save pre-rendered glyph data (.glyphs) for asciify -font")
	show := flag.Bool("show", true, "Print every glyph bitmap")
	flag.Parse()

	if *inputFont == "" {
		fmt.Println("Please provide a font using the -font flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logx.NewLogToX(logx.NewFileLogger(os.Stderr, logx.INFO, logx.ColorAuto), "glyphs")

	alphabet, err := img2ascii.ParseAlphabet(*alphabetFlag)
	if err != nil {
		log.LogPrintf(logx.ERROR, "%v", err)
		os.Exit(1)
	}
	runes := img2ascii.GlyphRunes(alphabet)

	fb, err := img2ascii.LoadFontBitmaps(*inputFont, *fallbackFont, runes)
	if err != nil {
		log.LogPrintf(logx.ERROR, "failed to compute glyphs: %v", err)
		os.Exit(1)
	}

	if *show {
		for _, r := range runes {
			g, ok := fb.GetGlyph(r)
			if !ok {
				continue
			}
			fmt.Printf("%q %U\n%s\n\n", r, r, g)
		}
	}

	missing := fb.Missing(runes)
	if len(missing) > 0 {
		log.LogPrintf(logx.WARN, "%s has no glyph for %q; those blocks will be blank",
			fb.Name(), string(missing))
	} else {
		log.LogPrintf(logx.INFO, "%s covers all %d glyphs", fb.Name(), len(runes))
	}

	if *outputFile == "" {
		return
	}
	f, err := os.Create(*outputFile)
	if err != nil {
		log.LogPrintf(logx.ERROR, "%v", err)
		os.Exit(1)
	}
	if err := fb.WriteGlyphData(f); err != nil {
		f.Close()
		log.LogPrintf(logx.ERROR, "failed to save glyph data: %v", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		log.LogPrintf(logx.ERROR, "%v", err)
		os.Exit(1)
	}

	if info, err := os.Stat(*outputFile); err == nil {
		log.LogPrintf(logx.INFO, "saved glyph data to %s (%.2f KB)",
			*outputFile, float64(info.Size())/1024)
	}
	if !strings.HasSuffix(*outputFile, ".glyphs") {
		base := strings.TrimSuffix(filepath.Base(*outputFile), filepath.Ext(*outputFile))
		log.LogPrintf(logx.NOTICE, "asciify -font expects a .glyphs extension, e.g. %s.glyphs", base)
	}
}
