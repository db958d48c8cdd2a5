// cmd/main.go

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/invoicing-microservice/pkg/assembler"
	"github.com/invoicing-microservice/pkg/config"
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
	"github.com/invoicing-microservice/pkg/items"
	"github.com/invoicing-microservice/pkg/logger"
	"github.com/invoicing-microservice/pkg/qr"
	"github.com/invoicing-microservice/pkg/server"
	"github.com/invoicing-microservice/pkg/spayd"
	"github.com/urfave/cli/v2"
)

const dateLayout = "2006-01-02"

func main() {
	app := &cli.App{
		Name:  "invoice",
		Usage: "generate invoices with a QR payment code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"INVOICE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before reading the environment",
			},
		},
		DefaultCommand: "generate",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "render the invoice PDF into the output directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "items", Usage: "CSV file with line items"},
					&cli.StringFlag{Name: "date", Usage: "issue date (YYYY-MM-DD), defaults to today"},
					&cli.StringFlag{Name: "out-dir", Usage: "directory for the PDF"},
				},
				Action: withConfig(generate),
			},
			{
				Name:  "serve",
				Usage: "serve the invoice generator over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address"},
				},
				Action: withConfig(serve),
			},
			{
				Name:   "config",
				Usage:  "print the effective configuration",
				Action: withConfig(printConfig),
			},
			{
				Name:      "inspect",
				Usage:     "decode a payment descriptor",
				ArgsUsage: "<SPD*1.0*...>",
				Action:    inspect,
			},
			{
				Name:  "layout",
				Usage: "print the drawing operations instead of writing a PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "items", Usage: "CSV file with line items"},
					&cli.StringFlag{Name: "date", Usage: "issue date (YYYY-MM-DD), defaults to today"},
				},
				Action: withConfig(dryRun),
			},
		},
	}

	// errors that reach here happened before a logger existed
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		for _, hint := range ierr.Hints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func load(c *cli.Context) (*config.Configuration, *logger.Logger, error) {
	cfg, err := config.NewConfig(config.LoadOptions{
		ConfigFile: c.String("config"),
		EnvFile:    c.String("env-file"),
	})
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

type action func(c *cli.Context, cfg *config.Configuration, log *logger.Logger) error

// withConfig loads the configuration and the logger before running fn.
// Failures of fn are logged once and end the process with exit code 1.
func withConfig(fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, log, err := load(c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		return logFailure(log, c.Command.Name, fn(c, cfg, log))
	}
}

func logFailure(log *logger.Logger, command string, err error) error {
	if err == nil {
		return nil
	}
	log.Errorw("command failed", "command", command, "error", err, "hints", ierr.Hints(err))
	return cli.Exit("", 1)
}

func issueDate(c *cli.Context) (time.Time, error) {
	value := c.String("date")
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("--date must be in %s format", dateLayout).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}

func generate(c *cli.Context, cfg *config.Configuration, log *logger.Logger) error {
	if c.IsSet("items") {
		cfg.Invoice.ItemsPath = c.String("items")
	}
	if c.IsSet("out-dir") {
		cfg.Render.OutputDir = c.String("out-dir")
	}
	issued, err := issueDate(c)
	if err != nil {
		return err
	}

	path, err := assembler.New(*cfg, log, qr.NewGenerator(cfg.Render.QRSize)).Generate(issued)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

func serve(c *cli.Context, cfg *config.Configuration, log *logger.Logger) error {
	if c.IsSet("addr") {
		cfg.Server.Address = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	asm := assembler.New(*cfg, log, qr.NewGenerator(cfg.Render.QRSize))
	return server.New(cfg.Server, asm, log).Run(ctx)
}

func printConfig(c *cli.Context, cfg *config.Configuration, _ *logger.Logger) error {
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(out)
	return err
}

func inspect(c *cli.Context) error {
	if c.NArg() != 1 {
		return ierr.NewError("expected exactly one payment descriptor").
			WithHint("usage: invoice inspect 'SPD*1.0*ACC:...'").
			Mark(ierr.ErrValidation)
	}
	p, err := spayd.Parse(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "IBAN:            %s\n", p.IBAN)
	if p.BIC != "" {
		fmt.Fprintf(w, "BIC:             %s\n", p.BIC)
	}
	fmt.Fprintf(w, "Amount:          %s %s\n", invoice.FormatAmount(p.Amount), p.Currency)
	fmt.Fprintf(w, "Variable symbol: %s\n", p.VariableSymbol)
	fmt.Fprintf(w, "Message:         %s\n", p.Message)
	return nil
}

func dryRun(c *cli.Context, cfg *config.Configuration, log *logger.Logger) error {
	path := cfg.Invoice.ItemsPath
	if c.IsSet("items") {
		path = c.String("items")
	}
	lineItems, err := items.Load(path)
	if err != nil {
		return err
	}
	issued, err := issueDate(c)
	if err != nil {
		return err
	}

	rec, _, err := assembler.New(*cfg, log, qr.NewGenerator(cfg.Render.QRSize)).Layout(lineItems, issued)
	if err != nil {
		return err
	}
	return rec.Dump(c.App.Writer)
}
