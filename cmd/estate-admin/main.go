package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-estate"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = buildModule

type globalOptions struct {
	configPath string
	envFile    string
	email      string
	password   string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("estate-admin: %v", err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: estate-admin [flags] <command> [args]

commands:
  status                      show backend, session and collection counts
  list                        list listings in display order
  reorder <id> <up|down>      move a listing one slot
  normalize                   rewrite display orders as 0..n-1
  upload <file>...            upload files to the media library
  register-url <url> [name]   add an external media URL
  delete-media <id>           delete a media asset
  content dump                print the site content document as JSON
  content load <file>         replace the site content document
  create-admin <email> <pw>   create or reset a staff account (sql drivers)

flags:`)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("estate-admin", flag.ContinueOnError)
	fs.SetOutput(stdout)
	opts := globalOptions{}
	fs.StringVar(&opts.configPath, "config", os.Getenv("ESTATE_CONFIG"), "Path to a YAML config file")
	fs.StringVar(&opts.envFile, "env", ".env", "Env file loaded before the config")
	fs.StringVar(&opts.email, "email", os.Getenv("ESTATE_ADMIN_EMAIL"), "Staff email used for write commands")
	fs.StringVar(&opts.password, "password", os.Getenv("ESTATE_ADMIN_PASSWORD"), "Staff password used for write commands")
	fs.Usage = func() {
		usage(stdout)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	cli := newCLI(module, opts, stdout)
	name, cmdArgs := rest[0], rest[1:]

	if name == "create-admin" {
		return cli.createAdmin(ctx, cmdArgs)
	}

	if err := module.Start(ctx); err != nil {
		return fmt.Errorf("start provider: %w", err)
	}

	switch name {
	case "status":
		return cli.status()
	case "list":
		return cli.list()
	case "reorder":
		return cli.reorder(ctx, cmdArgs)
	case "normalize":
		return cli.normalize(ctx)
	case "upload":
		return cli.upload(ctx, cmdArgs)
	case "register-url":
		return cli.registerURL(ctx, cmdArgs)
	case "delete-media":
		return cli.deleteMedia(ctx, cmdArgs)
	case "content":
		return cli.content(ctx, cmdArgs)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
}

func buildModule(opts globalOptions) (*estate.Module, error) {
	var envFiles []string
	if strings.TrimSpace(opts.envFile) != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := estate.LoadConfig(opts.configPath, envFiles...)
	if err != nil {
		return nil, err
	}
	return estate.New(cfg)
}
