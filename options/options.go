// Package options holds the viewer's settings: built-in defaults, an
// optional YAML config file and the command line.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFilename = "imdrip.yml"
	// ConfigEnv overrides the config file location.
	ConfigEnv = "IMDRIP_CONFIG"

	maxConfigSize = 1024 * 1024
)

type Options struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Title        string  `yaml:"title"`
	ResizeOnLoad bool    `yaml:"resize_on_load"`
	TextureScale float32 `yaml:"texture_scale"`
	// FetchTimeout bounds URL downloads; zero waits forever.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Cache        bool          `yaml:"cache"`
	// Watch reloads the displayed file when it changes on disk.
	Watch bool `yaml:"watch"`
}

func Default() Options {
	return Options{
		Width:        512,
		Height:       512,
		Title:        "imdrip",
		ResizeOnLoad: true,
		TextureScale: 1,
		Cache:        true,
		Watch:        true,
	}
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.TextureScale <= 0 {
		return fmt.Errorf("texture scale must be positive, got %g", o.TextureScale)
	}
	if o.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative, got %s", o.FetchTimeout)
	}
	return nil
}

// ConfigPath returns $IMDRIP_CONFIG if set, or imdrip.yml in the user
// config directory.
func ConfigPath() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return homedir.Expand(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "imdrip", ConfigFilename), nil
}

// Load returns the defaults overridden by the YAML file at path. A missing
// file is not an error.
func Load(path string) (Options, error) {
	opts := Default()

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return opts, nil
	} else if err != nil {
		return opts, err
	}
	if info.Size() > maxConfigSize {
		return opts, fmt.Errorf("config file %s too large (%d bytes)", path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Printf("Loaded config from %s", path)
	return opts, nil
}

// LoadDefault loads the config at ConfigPath, falling back to the defaults
// with a warning when it cannot be used.
func LoadDefault() Options {
	path, err := ConfigPath()
	if err != nil {
		log.Printf("Warning: no config location: %v", err)
		return Default()
	}
	opts, err := Load(path)
	if err != nil {
		log.Printf("Warning: %v", err)
		return Default()
	}
	return opts
}

var (
	// ErrHelp is returned by Parse when usage was asked for.
	ErrHelp = errors.New("help requested")
	// ErrUsage is returned by Parse for a malformed command line.
	ErrUsage = errors.New("invalid usage")
)

// Usage writes the command line help to w.
func Usage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: %s [flags] [path or URL]\n", name)
	fmt.Fprintf(w, "       %s help\n\n", name)
	fmt.Fprintln(w, "Shows an image in a window. Drop files on the window to open them.")
	fmt.Fprintln(w, "Keys: Esc quits, R toggles resize on load, F fits the window to the image.")
	fmt.Fprintln(w)
	defaults := Default()
	fs := newFlagSet(name, &defaults)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func newFlagSet(name string, o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&o.Width, "width", o.Width, "Initial window width")
	fs.IntVar(&o.Height, "height", o.Height, "Initial window height")
	fs.BoolVar(&o.ResizeOnLoad, "resize", o.ResizeOnLoad, "Resize the window to each loaded image")
	fs.DurationVar(&o.FetchTimeout, "timeout", o.FetchTimeout, "Timeout for URL downloads (0 = none)")
	fs.BoolVar(&o.Cache, "cache", o.Cache, "Cache downloaded images")
	fs.BoolVar(&o.Watch, "watch", o.Watch, "Reload the displayed file when it changes")
	return fs
}

// Parse applies command line flags to o and returns the optional image
// argument. It returns ErrHelp for "help" and ErrUsage for anything other
// than zero or one positional argument.
func (o *Options) Parse(name string, args []string) (string, error) {
	fs := newFlagSet(name, o)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", ErrHelp
		}
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
		return "", o.Validate()
	case 1:
		if rest[0] == "help" {
			return "", ErrHelp
		}
		return rest[0], o.Validate()
	default:
		return "", fmt.Errorf("%w: expected at most one image, got %d", ErrUsage, len(rest))
	}
}
