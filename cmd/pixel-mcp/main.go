package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/ironsheep/pixel-tools-mcp/internal/config"
	"github.com/ironsheep/pixel-tools-mcp/internal/engine"
	"github.com/ironsheep/pixel-tools-mcp/internal/imaging"
	"github.com/ironsheep/pixel-tools-mcp/internal/logging"
	"github.com/ironsheep/pixel-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pixel-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		case "process":
			os.Exit(runProcess(os.Args[2:], os.Stdout, os.Stderr))
		case "serve":
		default:
			color.New(color.FgRed).Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}

	os.Exit(runServe())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "pixel-mcp - MCP server for pixel-level image processing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pixel-mcp [serve]                 Serve MCP over stdin/stdout")
	fmt.Fprintln(w, "  pixel-mcp process -op NAME -in FILE [-overlay FILE] [-out FILE] [params]")
	fmt.Fprintln(w, "  pixel-mcp --version, -v           Print version information")
	fmt.Fprintln(w, "  pixel-mcp --help, -h              Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Operations:")
	fmt.Fprintf(w, "  %s\n", strings.Join(engine.Operations(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  PIXEL_MCP_CONFIG=path.yaml     YAML configuration file")
	fmt.Fprintln(w, "  PIXEL_MCP_LOG_LEVEL=debug      debug, info, warn or error")
	fmt.Fprintln(w, "  PIXEL_MCP_LOG_FILE=path        Also write JSON logs to a rotated file")
	fmt.Fprintln(w, "  PIXEL_MCP_CACHE_ENTRIES=16     Decoded images kept in memory (0 disables)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The server communicates via MCP protocol over stdin/stdout.")
	fmt.Fprintln(w, "Configure it in your MCP client (e.g., Claude Desktop).")
}

// setup loads the configuration and builds the logger and engine from it.
func setup() (*zap.Logger, *engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logger, newEngine(cfg, logger), nil
}

func newEngine(cfg *config.Config, logger *zap.Logger) *engine.Engine {
	codecOpts := cfg.CodecOptions()
	opts := []engine.Option{
		engine.WithCodecOptions(codecOpts),
		engine.WithResampleFilter(cfg.Filter()),
		engine.WithSquareTolerance(cfg.SquareTolerance),
		engine.WithLogger(logger.Named("engine")),
	}
	if cfg.CacheEntries > 0 {
		cache := imaging.NewRasterCache(imaging.NewCodec(codecOpts), cfg.CacheEntries)
		opts = append(opts, engine.WithDecoder(cache))
	}
	return engine.New(opts...)
}

func runServe() int {
	logger, eng, err := setup()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	srv := server.New(eng, logger.Named("server"))
	if err := srv.Run(); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

// runProcess implements the process subcommand and returns the exit code.
func runProcess(args []string, stdout, stderr io.Writer) int {
	fail := color.New(color.FgRed)
	ok := color.New(color.FgGreen)

	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		op      = fs.String("op", "", "operation name")
		in      = fs.String("in", "", "input image file")
		overlay = fs.String("overlay", "", "overlay image file (compositing operations)")
		out     = fs.String("out", "", "output PNG file (image operations)")
		params  engine.Params
	)
	fs.IntVar(&params.Delta, "delta", 0, "brightness delta (-255..255)")
	fs.Float64Var(&params.Factor, "factor", 0, "contrast factor (-1..100)")
	fs.Float64Var(&params.Sigma, "sigma", 0, "blur sigma")
	fs.Float64Var(&params.Opacity, "opacity", 1, "overlay opacity (0..1)")
	fs.IntVar(&params.X, "x", 0, "square left edge")
	fs.IntVar(&params.Y, "y", 0, "square top edge")
	fs.IntVar(&params.Size, "size", 0, "square side length")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *op == "" || *in == "" {
		fail.Fprintln(stderr, "process: -op and -in are required")
		fs.Usage()
		return 2
	}

	logger, eng, err := setup()
	if err != nil {
		fail.Fprintf(stderr, "configuration error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	req := engine.Request{Op: *op, Params: params}
	if req.Image, err = os.ReadFile(*in); err != nil {
		fail.Fprintf(stderr, "failed to read input: %v\n", err)
		return 1
	}
	if *overlay != "" {
		if req.Overlay, err = os.ReadFile(*overlay); err != nil {
			fail.Fprintf(stderr, "failed to read overlay: %v\n", err)
			return 1
		}
	}

	res, err := eng.Process(req)
	if err != nil {
		fail.Fprintf(stderr, "%s failed: %v\n", *op, err)
		return 1
	}

	switch {
	case res.Image != nil:
		if *out == "" {
			fail.Fprintf(stderr, "%s produces an image: -out is required\n", *op)
			return 2
		}
		if err := os.WriteFile(*out, res.Image, 0o644); err != nil {
			fail.Fprintf(stderr, "failed to write output: %v\n", err)
			return 1
		}
		ok.Fprintf(stdout, "wrote %s (%d bytes)\n", *out, len(res.Image))
	case res.Info != nil:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Info); err != nil {
			fail.Fprintf(stderr, "failed to print result: %v\n", err)
			return 1
		}
	case *op == "is_square_ish":
		fmt.Fprintln(stdout, res.SquareIsh)
	default:
		fmt.Fprintf(stdout, "%dx%d\n", res.Width, res.Height)
	}
	return 0
}
