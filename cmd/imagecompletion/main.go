package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	ic "github.com/setanarut/imagecompletion"
	"github.com/setanarut/imagecompletion/utils"
)

const version = "v0.1.0"

func main() {
	in := flag.String("in", "", "Input image path (required)")
	outDir := flag.String("out", "output", "Output directory")
	configPath := flag.String("config", "", "YAML options file (optional)")
	p := flag.Float64("p", -1, "Sampling probability in [0,1] (overrides config)")
	eta := flag.Float64("eta", 0, "Gradient step size (overrides config)")
	steps := flag.Int("steps", -1, "Number of gradient steps (overrides config)")
	seed := flag.Uint64("seed", 0, "Random seed, 0 = unseeded (overrides config)")
	maxSide := flag.Int("max-side", -1, "Longest side after downscaling, 0 = keep (overrides config)")
	gray := flag.String("gray", "", "Grayscale method: luminosity, luminance (overrides config)")
	paletteSize := flag.Int("palette", -1, "Palette size for colorized output, 0 = off (overrides config)")
	paletteMethod := flag.String("palette-method", "", "Palette method: dominantcolor, kmeans (overrides config)")
	framesEvery := flag.Int("frames-every", 0, "Save a reconstruction frame every N steps, 0 = off")
	logEvery := flag.Int("log-every", 25, "Log progress every N steps")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("imagecompletion %s\n", version)
		os.Exit(0)
	}
	if *in == "" {
		fmt.Fprintf(os.Stderr, "Error: -in flag is required\n\n")
		fmt.Fprintf(os.Stderr, "Usage example:\n")
		fmt.Fprintf(os.Stderr, "  imagecompletion -in parrot.png -p 0.4 -steps 200 -out ./output\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	img, err := utils.ReadImage(*in)
	if err != nil {
		fatal("read input", err)
	}

	opt := ic.OptionsFromSize(img.Bounds().Size())
	if *configPath != "" {
		if opt, err = ic.LoadOptions(*configPath); err != nil {
			fatal("load options", err)
		}
	}
	if *p >= 0 {
		opt.Probability = *p
	}
	if *eta != 0 {
		opt.Eta = *eta
	}
	if *steps >= 0 {
		opt.Steps = *steps
	}
	if *seed != 0 {
		opt.Seed = *seed
	}
	if *maxSide >= 0 {
		opt.MaxSide = *maxSide
	}
	if *gray != "" {
		opt.Grayscale = *gray
	}
	if *paletteSize >= 0 {
		opt.PaletteSize = *paletteSize
	}
	if *paletteMethod != "" {
		opt.PaletteMethod = *paletteMethod
	}
	if err := opt.Validate(); err != nil {
		fatal("options", err)
	}
	grayMethod, _ := utils.ParseGrayMethod(opt.Grayscale)
	palMethod, _ := utils.ParsePaletteMethod(opt.PaletteMethod)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal("create output dir", err)
	}

	src := img.Bounds().Size()
	img = utils.Fit(img, opt.MaxSide)
	slog.Info("input loaded",
		"path", *in,
		"size", fmt.Sprintf("%dx%d", src.X, src.Y),
		"work_size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"grayscale", grayMethod)

	start := time.Now()
	engine, err := ic.NewEngine(utils.Grayscale(img, grayMethod), opt.Probability, ic.NewRand(opt.Seed))
	if err != nil {
		fatal("create engine", err)
	}
	rows, cols := engine.Dims()
	slog.Info("engine ready",
		"observed", len(engine.Observations()),
		"cells", rows*cols,
		"p", opt.Probability,
		"nuclear_budget", engine.Budget(),
		"elapsed", time.Since(start))

	save := func(name string, err error) {
		if err != nil {
			slog.Error("save failed", "file", name, "error", err)
			return
		}
		slog.Debug("saved", "file", name)
	}
	save("grayscale.png", utils.SaveImage(utils.MatrixToGray(engine.Original()), filepath.Join(*outDir, "grayscale.png")))
	save("corrupted.png", utils.SaveImage(utils.CorruptedImage(rows, cols, engine.Observations()), filepath.Join(*outDir, "corrupted.png")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start = time.Now()
	err = engine.Run(ctx, opt.Eta, opt.Steps, func(pr ic.Progress) {
		if pr.Step == 1 || pr.Step == opt.Steps || (*logEvery > 0 && pr.Step%*logEvery == 0) {
			slog.Info("step",
				"n", fmt.Sprintf("%d/%d", pr.Step, opt.Steps),
				"residual", pr.Residual,
				"distance", pr.Distance)
		} else {
			slog.Debug("step", "n", pr.Step, "residual", pr.Residual, "distance", pr.Distance)
		}
		if *framesEvery > 0 && pr.Step%*framesEvery == 0 {
			save(fmt.Sprintf("frame_%05d.png", pr.Step), utils.SaveFrame(*outDir, pr.Step, utils.MatrixToGray(engine.Estimate())))
		}
	})
	switch {
	case err == nil:
	case ctx.Err() != nil:
		slog.Warn("interrupted, saving current estimate", "steps", engine.Steps())
	default:
		// The estimate still holds the last successful step.
		slog.Error("step failed", "error", err, "steps", engine.Steps())
	}
	slog.Info("reconstruction finished", "steps", engine.Steps(), "elapsed", time.Since(start))

	estimate := engine.Estimate()
	save("reconstructed.png", utils.SaveImage(utils.MatrixToGray(estimate), filepath.Join(*outDir, "reconstructed.png")))

	if opt.PaletteSize > 0 {
		palette, perr := utils.ExtractPalette(img, opt.PaletteSize, palMethod)
		if perr != nil {
			slog.Warn("palette extraction failed", "method", palMethod, "error", perr)
		} else {
			utils.SortPaletteByBrightness(palette)
			save("palette.png", utils.SavePalette(palette, 64, filepath.Join(*outDir, "palette.png")))
			save("colorized.png", utils.SaveImage(utils.Colorize(estimate, utils.NewGradient(palette)), filepath.Join(*outDir, "colorized.png")))
		}
	}

	if err != nil && ctx.Err() == nil {
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
