package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/sanity-io/litter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/monk/bridge"
	"github.com/eringen/monk/pageagent"
	"github.com/eringen/monk/popup"
	"github.com/eringen/monk/protocol"
)

type captureOptions struct {
	timeout time.Duration
	dryRun  bool
	verbose bool
}

// runCapture plays the extension flow for every URL: the page is loaded
// into a tab, the popup asks its agent for the page info, then uploads it.
func runCapture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	newClient := clientFlags(fs)
	jobs := fs.Int("j", 4, "pages captured in parallel")
	var opts captureOptions
	fs.DurationVar(&opts.timeout, "timeout", 15*time.Second, "per page timeout")
	fs.BoolVar(&opts.dryRun, "n", false, "capture only, do not upload")
	fs.BoolVar(&opts.verbose, "v", false, "dump captured page info and log protocol traffic")
	fs.Parse(args)

	urls := fs.Args()
	if len(urls) == 0 {
		return errors.New("capture: at least one URL is required")
	}

	ctx := context.Background()
	shutdownTracing, err := initTracing(ctx)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	logger := log.New("capture")
	logger.SetLevel(log.WARN)
	if opts.verbose {
		logger.SetLevel(log.DEBUG)
	}

	up := newClient()
	client := &http.Client{Timeout: opts.timeout}

	var mu sync.Mutex
	failed := 0
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			info, err := capturePage(ctx, client, up, u, opts, logger)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", u, err)
				return nil
			}
			if opts.verbose {
				litter.Dump(info)
			}
			fmt.Printf("%s\t%s\n", info.Title, info.URL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("capture: %d of %d pages failed", failed, len(urls))
	}
	return nil
}

// capturePage runs one popup session against one freshly loaded tab.
func capturePage(ctx context.Context, client *http.Client, up popup.Uploader, rawURL string, opts captureOptions, logger *log.Logger) (protocol.PageInfo, error) {
	ctx, span := tracer.Start(ctx, "monk.capture")
	defer span.End()
	span.SetAttributes(attribute.String("page.url", rawURL))

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	info, err := func() (protocol.PageInfo, error) {
		doc, err := pageagent.FetchDocument(ctx, client, rawURL)
		if err != nil {
			return protocol.PageInfo{}, err
		}

		rt := bridge.NewRuntime(bridge.WithLogger(logger))
		defer rt.Wait()
		tab := rt.OpenTab(doc.URL())
		if err := pageagent.New(doc, rt, pageagent.WithLogger(logger)).Attach(rt, tab.ID); err != nil {
			return protocol.PageInfo{}, err
		}

		p := popup.Open(rt, up, popup.WithLogger(logger))
		defer p.Close()
		reqToken, err := p.Activate()
		if err != nil {
			return protocol.PageInfo{}, err
		}
		info, err := p.Wait(ctx, reqToken)
		if err != nil {
			return protocol.PageInfo{}, err
		}
		if opts.dryRun {
			return info, nil
		}
		return info, p.Upload(ctx)
	}()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return info, err
}
