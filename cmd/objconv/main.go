package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/objconv/config"
	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/scene"
	"go.uber.org/zap"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".glb"
}

func defaultConfigFile(input string) string {
	base := input[0 : len(input)-len(filepath.Ext(input))]
	for _, ext := range []string{".objconv.yaml", ".objconv.yml", ".objconv.toml"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, opt *cliOptions) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "single":
			if opt.single {
				cfg.Import.IndexMode = config.IndexModeSingle
			}
		case "multi":
			if opt.multi {
				cfg.Import.IndexMode = config.IndexModeMulti
			}
		case "index16":
			if opt.index16 {
				cfg.Import.IndexWidth = 16
			} else {
				cfg.Import.IndexWidth = 32
			}
		case "gennormals":
			cfg.Import.GenerateNormals = opt.genNormals
		case "encoding":
			cfg.Import.Encoding = opt.encoding
		case "gltfunlit":
			cfg.Export.ForceUnlit = opt.forceUnlit
		case "texscale":
			cfg.Export.TextureScale = float32(opt.texScale)
		case "texlimit":
			cfg.Export.TextureResolutionLimit = opt.texLimit
		case "webp":
			cfg.Export.WebPTextures = opt.webp
		case "loglevel":
			cfg.Logging.Level = opt.logLevel
		case "logfile":
			cfg.Logging.File = opt.logFile
		}
	})
}

type cliOptions struct {
	configFile string
	single     bool
	multi      bool
	index16    bool
	genNormals bool
	encoding   string
	forceUnlit bool
	texScale   float64
	texLimit   int
	webp       bool
	scale      float64
	hides      string
	dump       bool
	logLevel   string
	logFile    string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.obj [output.glb]\n", os.Args[0])
		flag.PrintDefaults()
	}
	var opt cliOptions
	flag.StringVar(&opt.configFile, "config", "", "config file (.yaml or .toml)")
	flag.BoolVar(&opt.single, "single", false, "share vertices between faces (single index mode)")
	flag.BoolVar(&opt.multi, "multi", false, "one vertex per face corner (multi index mode)")
	flag.BoolVar(&opt.index16, "index16", false, "16-bit index buffers")
	flag.BoolVar(&opt.genNormals, "gennormals", false, "generate smooth normals if missing")
	flag.StringVar(&opt.encoding, "encoding", "", "text encoding of .obj/.mtl (e.g. shift_jis)")
	flag.BoolVar(&opt.forceUnlit, "gltfunlit", false, "unlit all materials")
	flag.Float64Var(&opt.texScale, "texscale", 1, "texture scale")
	flag.IntVar(&opt.texLimit, "texlimit", 0, "texture resolution limit (0: unlimited)")
	flag.BoolVar(&opt.webp, "webp", false, "encode textures as WebP (EXT_texture_webp)")
	flag.Float64Var(&opt.scale, "scale", 1, "scale positions")
	flag.StringVar(&opt.hides, "hide", "", "hide objects")
	flag.BoolVar(&opt.dump, "dump", false, "print scene summary instead of writing output")
	flag.StringVar(&opt.logLevel, "loglevel", "", "debug, info, warn or error")
	flag.StringVar(&opt.logFile, "logfile", "", "log file path")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	input := flag.Arg(0)
	output := defaultOutputFile(input)
	if flag.NArg() > 1 {
		output = flag.Arg(1)
	}

	if opt.configFile == "" {
		opt.configFile = defaultConfigFile(input)
	}
	cfg := config.Default()
	if opt.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(opt.configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	applyFlags(cfg, flag.CommandLine, &opt)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	s, err := loadScene(input, cfg)
	if err != nil {
		logger.Log.Fatal("import failed", zap.String("input", input), zap.Error(err))
	}

	if opt.scale != 1.0 {
		sc := float32(opt.scale)
		s.Transform(func(v *geom.Vector3) {
			*v = *v.Scale(sc)
		})
	}
	if opt.hides != "" {
		n := s.RemoveNodes(strings.Split(opt.hides, ",")...)
		logger.Info("hidden objects", zap.Int("count", n))
	}

	if opt.dump {
		if err := scene.Dump(os.Stdout, s); err != nil {
			logger.Log.Fatal("dump failed", zap.Error(err))
		}
		return
	}

	logger.Info("out", zap.String("output", output))
	if err := saveScene(s, output, cfg); err != nil {
		logger.Log.Fatal("export failed", zap.String("output", output), zap.Error(err))
	}
}
