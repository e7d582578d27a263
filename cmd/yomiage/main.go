package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	yomiage "github.com/ieee0824/yomiage-go"
	"github.com/ieee0824/yomiage-go/cache"
	"github.com/ieee0824/yomiage-go/internal/config"
	"github.com/ieee0824/yomiage-go/internal/logger"
	"github.com/ieee0824/yomiage-go/normalize"
	"github.com/ieee0824/yomiage-go/observe"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dictDir := flag.String("dict", "", "dictionary bundle directory")
	voiceDir := flag.String("voice", "", "voice bundle directory")
	text := flag.String("text", "", "text to synthesize (default: one text per stdin line)")
	outPath := flag.String("o", "out.wav", "output WAV file for a single text")
	outDir := flag.String("outdir", "", "output directory for batch mode (one WAV per line)")
	g2p := flag.Bool("g2p", false, "print phonemes instead of synthesizing")
	kana := flag.Bool("kana", false, "with -g2p, print katakana pronunciation")
	fullContext := flag.Bool("fullcontext", false, "print full-context labels instead of synthesizing")
	strict := flag.Bool("strict", false, "fail on unsupported symbols instead of dropping them")
	rate := flag.Int("rate", 0, "output sample rate (0 = voice rate)")
	speed := flag.Float64("speed", 1.0, "speaking rate multiplier")
	pitch := flag.Float64("pitch", 0, "pitch shift in semitones")
	cachePath := flag.String("cache", "", "SQLite synthesis cache file")
	workers := flag.Int("workers", 0, "concurrent requests in batch mode")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}
	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dict":
			cfg.Dictionary = *dictDir
		case "voice":
			cfg.Voice = *voiceDir
		case "strict":
			if *strict {
				cfg.Synthesis.SymbolHandling = normalize.Strict.String()
			} else {
				cfg.Synthesis.SymbolHandling = normalize.Lenient.String()
			}
		case "rate":
			cfg.Synthesis.SampleRate = *rate
		case "speed":
			cfg.Synthesis.Speed = *speed
		case "pitch":
			cfg.Synthesis.PitchShift = *pitch
		case "cache":
			cfg.Cache.Path = *cachePath
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		fatal(err)
	}
	if cfg.Dictionary == "" || cfg.Voice == "" {
		fmt.Fprintln(os.Stderr, "Usage: yomiage -dict DICT -voice VOICE [-text TEXT] [-o OUT.wav]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fatal(err)
	}
	defer logger.Sync()

	policy, _ := normalize.ParsePolicy(cfg.Synthesis.SymbolHandling)
	opts := yomiage.Options{
		SymbolHandling: policy,
		SampleRate:     cfg.Synthesis.SampleRate,
		Speed:          cfg.Synthesis.Speed,
		PitchShift:     cfg.Synthesis.PitchShift,
	}

	synthOpts := []yomiage.Option{
		yomiage.WithMaxInputRunes(cfg.MaxInputRunes),
		yomiage.WithMetrics(observe.DefaultMetrics()),
	}
	if cfg.Cache.Path != "" {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
		logger.Infof("[main] synthesis cache: %s", store.Path())
		synthOpts = append(synthOpts, yomiage.WithCache(store))
	}

	synth, err := yomiage.New(cfg.Dictionary, cfg.Voice, synthOpts...)
	if err != nil {
		fatal(err)
	}
	defer synth.Close()

	texts := []string{*text}
	if *text == "" {
		if texts, err = readLines(os.Stdin); err != nil {
			fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *g2p:
		for _, t := range texts {
			out, err := synth.G2P(ctx, t, *kana)
			if err != nil {
				fatal(err)
			}
			fmt.Println(out)
		}
	case *fullContext:
		for _, t := range texts {
			lines, err := synth.ExtractFullContext(ctx, t, opts)
			if err != nil {
				fatal(err)
			}
			fmt.Println(strings.Join(lines, "\n"))
		}
	case len(texts) == 1 && *outDir == "":
		buf, err := synth.Synthesize(ctx, texts[0], opts)
		if err != nil {
			fatal(err)
		}
		if err := buf.WriteWAVFile(*outPath); err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%v, %d Hz)\n", *outPath, buf.Duration(), buf.SampleRate())
	default:
		dir := *outDir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal(err)
		}
		bufs, err := synth.SynthesizeBatch(ctx, texts, opts, cfg.Workers)
		if err != nil {
			fatal(err)
		}
		for i, buf := range bufs {
			path := filepath.Join(dir, fmt.Sprintf("%04d.wav", i+1))
			if err := buf.WriteWAVFile(path); err != nil {
				fatal(err)
			}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d files to %s\n", len(bufs), dir)
	}
}

// readLines returns the non-empty lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func fatal(err error) {
	if stage := yomiage.StageOf(err); stage != "" {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", stage, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logger.Sync()
	os.Exit(1)
}
