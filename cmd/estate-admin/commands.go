package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/goliatone/go-estate"
	admincmd "github.com/goliatone/go-estate/internal/commands/admin"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

type cli struct {
	module *estate.Module
	opts   globalOptions
	out    io.Writer
	logger interfaces.Logger
}

func newCLI(module *estate.Module, opts globalOptions, out io.Writer) *cli {
	return &cli{
		module: module,
		opts:   opts,
		out:    out,
		logger: logging.CommandsLogger(module.Container().LoggerProvider()),
	}
}

func (c *cli) provider() estate.Provider {
	return c.module.Provider()
}

// signIn runs before every write. Writes fail fast with a clear message when
// no credentials were supplied.
func (c *cli) signIn(ctx context.Context) error {
	if c.provider().IsAdmin() {
		return nil
	}
	if c.opts.email == "" || c.opts.password == "" {
		return errors.New("write commands need -email and -password (or ESTATE_ADMIN_EMAIL / ESTATE_ADMIN_PASSWORD)")
	}
	handler := admincmd.NewSignInHandler(c.provider(), c.logger)
	return handler.Execute(ctx, admincmd.SignInCommand{Email: c.opts.email, Password: c.opts.password})
}

func (c *cli) status() error {
	cfg := c.module.Container().Config
	p := c.provider()
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "backend\t%s\n", cfg.Backend.Driver)
	fmt.Fprintf(w, "storage\t%s\n", cfg.Storage.Provider)
	fmt.Fprintf(w, "admin\t%t\n", p.IsAdmin())
	fmt.Fprintf(w, "listings\t%d (%d published)\n", len(p.Projects()), len(p.PublishedProjects()))
	fmt.Fprintf(w, "media\t%d\n", len(p.Media()))
	fmt.Fprintf(w, "site\t%s\n", p.SiteContent().Global.SiteName)
	return w.Flush()
}

func (c *cli) list() error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tID\tNAME\tTYPE\tSTATUS")
	for _, l := range c.provider().Projects() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.DisplayOrder, l.ID, l.Name, l.Category, l.Status)
	}
	return w.Flush()
}

func (c *cli) reorder(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: reorder <id> <up|down>")
	}
	if err := c.signIn(ctx); err != nil {
		return err
	}
	handler := admincmd.NewReorderListingHandler(c.provider(), c.logger)
	if err := handler.Execute(ctx, admincmd.ReorderListingCommand{ID: args[0], Direction: estate.Direction(args[1])}); err != nil {
		return err
	}
	return c.list()
}

func (c *cli) normalize(ctx context.Context) error {
	if err := c.signIn(ctx); err != nil {
		return err
	}
	handler := admincmd.NewNormalizeListingOrderHandler(c.provider(), c.logger)
	if err := handler.Execute(ctx, admincmd.NormalizeListingOrderCommand{}); err != nil {
		return err
	}
	return c.list()
}

func (c *cli) upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return errors.New("usage: upload <file>...")
	}
	if err := c.signIn(ctx); err != nil {
		return err
	}

	files := make([]media.UploadFile, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		files = append(files, media.UploadFile{Name: filepath.Base(path), Size: info.Size(), Body: f})
	}

	handler := admincmd.NewUploadBatchHandler(c.provider(), c.logger)
	err := handler.Execute(ctx, admincmd.UploadBatchCommand{
		Files: files,
		Progress: func(done, total int) {
			fmt.Fprintf(c.out, "uploaded %d/%d\n", done, total)
		},
		Results: func(results []media.UploadResult) {
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(c.out, "FAIL\t%s\t%v\n", r.Name, r.Err)
					continue
				}
				fmt.Fprintf(c.out, "OK\t%s\t%s\n", r.Name, r.Asset.URL)
			}
		},
	})
	return err
}

func (c *cli) registerURL(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: register-url <url> [name]")
	}
	if err := c.signIn(ctx); err != nil {
		return err
	}
	cmd := admincmd.RegisterURLCommand{URL: args[0]}
	if len(args) == 2 {
		cmd.Name = args[1]
	}
	cmd.Result = func(asset *media.Asset) {
		fmt.Fprintf(c.out, "registered %s\n", asset.ID)
	}
	return admincmd.NewRegisterURLHandler(c.provider(), c.logger).Execute(ctx, cmd)
}

func (c *cli) deleteMedia(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete-media <id>")
	}
	if err := c.signIn(ctx); err != nil {
		return err
	}
	cmd := admincmd.DeleteMediaCommand{ID: args[0]}
	for _, asset := range c.provider().Media() {
		if asset.ID == cmd.ID {
			cmd.URL = asset.URL
			break
		}
	}
	if err := admincmd.NewDeleteMediaHandler(c.provider(), c.logger).Execute(ctx, cmd); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted %s\n", cmd.ID)
	return nil
}

func (c *cli) content(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: content <dump|load <file>>")
	}
	switch args[0] {
	case "dump":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(c.provider().SiteContent())
	case "load":
		if len(args) != 2 {
			return errors.New("usage: content load <file>")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var doc estate.SiteContent
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode %s: %w", args[1], err)
		}
		if err := c.signIn(ctx); err != nil {
			return err
		}
		if err := admincmd.NewSaveContentHandler(c.provider(), c.logger).Execute(ctx, admincmd.SaveContentCommand{Content: doc}); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "site content saved")
		return nil
	default:
		return fmt.Errorf("unknown content subcommand %q", args[0])
	}
}

func (c *cli) createAdmin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: create-admin <email> <password>")
	}
	if err := c.module.Container().UpsertAdmin(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "staff account %s saved\n", args[0])
	return nil
}
