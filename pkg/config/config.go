package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is the name of the optional config file in the project root
const FileName = "uibuild.toml"

// Config describes all configuration options
type Config struct {
	Log struct {
		Level string `default:"info"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
	}
	Output struct {
		Dir string `default:"dist" usage:"Output directory; removed by the clean step"`
		CSS string `default:"css" usage:"Stylesheet directory inside the output directory"`
		JS  string `default:"js" usage:"Script directory inside the output directory"`
	}
	Stylesheet struct {
		Entry    string `default:"src/ui.sass" usage:"Stylesheet entry file"`
		Compiler string `default:"sass --no-source-map --stop-on-error" usage:"Preprocessor command; the entry path is appended and the CSS is read from stdout"`
		// The two most recent releases of each browser, expressed as the oldest one we still support.
		// Nothing recomputes this list, so bump it with every release.
		Browsers []string `default:"chrome140,edge140,firefox142,safari18.6,ios18.6,opera121" usage:"Vendor prefix targets (esbuild engine syntax)"`
	}
	Public struct {
		Dir     string `default:"public" usage:"Static assets copied verbatim into the output directory"`
		Pattern string `default:"**/*" usage:"Glob selecting the assets inside the public directory"`
	}
	Elm struct {
		Manifest string `default:"elm-package.json" usage:"Elm project manifest"`
		Entry    string `default:"src/Main.elm" usage:"Elm entry module"`
		Compiler string `default:"elm make" usage:"Compiler command; the entry and --output are appended"`
		Bundle   string `default:"elm.js" usage:"Name of the generated bundle inside the script directory"`
	}
}

var logLevels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

var targetPattern = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+){0,2})$`)

// Loader initializes an empty config object and returns a new Loader for this object.
// uibuild.toml is only read if it exists in projectRoot.
func Loader(projectRoot string) (*Config, *aconfig.Loader) {
	files := []string{}
	cfgPath := filepath.Join(projectRoot, FileName)
	if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
		files = append(files, cfgPath)
	}

	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "UIBUILD",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Read reads the defaults, uibuild.toml and the environment without validating the result.
// Callers that apply further overrides must call Validate themselves.
func Read(projectRoot string) (*Config, error) {
	cfg, loader := Loader(projectRoot)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	return cfg, nil
}

// Load is Read followed by Validate
func Load(projectRoot string) (*Config, error) {
	cfg, err := Read(projectRoot)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[strings.ToLower(cfg.Log.Level)]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	required := map[string]string{
		"output.dir":          cfg.Output.Dir,
		"output.css":          cfg.Output.CSS,
		"output.js":           cfg.Output.JS,
		"stylesheet.entry":    cfg.Stylesheet.Entry,
		"stylesheet.compiler": cfg.Stylesheet.Compiler,
		"public.dir":          cfg.Public.Dir,
		"public.pattern":      cfg.Public.Pattern,
		"elm.manifest":        cfg.Elm.Manifest,
		"elm.entry":           cfg.Elm.Entry,
		"elm.compiler":        cfg.Elm.Compiler,
		"elm.bundle":          cfg.Elm.Bundle,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return eris.Errorf(`%s must not be empty`, name)
		}
	}

	if _, err := cfg.Engines(); err != nil {
		return err
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[strings.ToLower(cfg.Log.Level)]
}

// Engines converts the browser list to esbuild engine targets
func (cfg *Config) Engines() ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(cfg.Stylesheet.Browsers))
	for _, raw := range cfg.Stylesheet.Browsers {
		target := strings.ToLower(strings.TrimSpace(raw))
		if target == "" {
			continue
		}

		parts := targetPattern.FindStringSubmatch(target)
		if parts == nil {
			return nil, eris.Errorf(`Invalid browser target %q (expected something like "chrome120")`, raw)
		}

		name, ok := engineNames[parts[1]]
		if !ok {
			return nil, eris.Errorf(`Unknown browser %q in target %q`, parts[1], raw)
		}

		engines = append(engines, api.Engine{Name: name, Version: parts[2]})
	}

	return engines, nil
}

// Default returns a config populated with the default values only
func Default() *Config {
	cfg := Config{}
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFiles: true,
		SkipEnv:   true,
		SkipFlags: true,
	})
	// struct tag defaults can't fail to load
	_ = loader.Load()
	return &cfg
}
