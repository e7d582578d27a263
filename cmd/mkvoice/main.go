package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ieee0824/yomiage-go/internal/fixture"
)

func main() {
	outDir := flag.String("out", "", "output directory; dict/ and voice/ are created inside")
	dictName := flag.String("dict-name", "demo", "dictionary name written to the manifest")
	flag.Parse()

	if *outDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: mkvoice -out DIR")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dictDir := filepath.Join(*outDir, "dict")
	voiceDir := filepath.Join(*outDir, "voice")
	if err := fixture.WriteDictionary(dictDir, *dictName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write dictionary: %v\n", err)
		os.Exit(1)
	}
	if err := fixture.WriteVoice(voiceDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write voice: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Wrote dictionary to %s and voice to %s\n", dictDir, voiceDir)
}
