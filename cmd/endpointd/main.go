// Command endpointd serves endpoint discovery documents declared in a
// config file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/broady/endpoint"
	"github.com/broady/endpoint/config"
)

type CLI struct {
	LogLevel  string `help:"Minimum log level." enum:"debug,info,warn,error" default:"info" name:"log-level"`
	LogFormat string `help:"Log output format." enum:"text,json" default:"text" name:"log-format"`

	Version   VersionCmd   `cmd:"" help:"Print version information."`
	Normalize NormalizeCmd `cmd:"" help:"Print the canonical routing path of each argument."`
	Check     CheckCmd     `cmd:"" help:"Load a config file and validate its endpoints."`
	Serve     ServeCmd     `cmd:"" help:"Serve endpoint discovery over HTTP."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintln(out, Version())
	return err
}

type NormalizeCmd struct {
	Paths []string `arg:"" help:"URLs or paths to normalize."`
}

func (c *NormalizeCmd) Run(out io.Writer) error {
	for _, p := range c.Paths {
		if _, err := fmt.Fprintln(out, endpoint.NormalizePath(p)); err != nil {
			return err
		}
	}
	return nil
}

type CheckCmd struct {
	Config string `help:"Config file (.yaml, .yml, .json or .toml)." required:"" short:"c" type:"existingfile"`
}

func (c *CheckCmd) Run(out io.Writer) error {
	_, eps, err := loadEndpoints(c.Config)
	if err != nil {
		return err
	}
	table := tablewriter.NewTable(out, tablewriter.WithRendition(tw.Rendition{
		Borders: tw.BorderNone,
		Settings: tw.Settings{
			Separators: tw.Separators{BetweenColumns: tw.Off, BetweenRows: tw.Off},
			Lines:      tw.Lines{ShowHeaderLine: tw.Off},
		},
	}))
	table.Header("NAME", "PATH")
	for _, ep := range eps {
		if err := table.Append(ep.Name(), ep.Path()); err != nil {
			return err
		}
	}
	return table.Render()
}

// loadEndpoints loads, validates and builds every endpoint in the file.
func loadEndpoints(path string) (*config.File, []*endpoint.Endpoint, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	eps, err := f.Descriptors()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid endpoints in %q:\n%w", path, err)
	}
	return f, eps, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("endpointd"),
		kong.Description("Serve and check RPC endpoint descriptors."),
		kong.UsageOnError(),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	logger := newLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	slog.SetDefault(logger)

	err := ctx.Run(logger)
	ctx.FatalIfErrorf(err)
}
