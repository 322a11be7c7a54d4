package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sanity-io/litter"

	"github.com/eringen/monk"
	"github.com/eringen/monk/collection"
)

const requestTimeout = 30 * time.Second

// clientFlags registers -server and -token on fs and returns a constructor
// for the client they describe.
func clientFlags(fs *flag.FlagSet) func() *collection.Client {
	server := fs.String("server", monk.EnvOr("MONK_URL", "http://localhost:3000"), "collection base URL")
	token := fs.String("token", os.Getenv("MONK_API_TOKEN"), "API token for the collection")
	return func() *collection.Client {
		return collection.NewClient(*server, collection.WithToken(*token))
	}
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	client := clientFlags(fs)
	tag := fs.String("tag", "", "only articles with this tag")
	dump := fs.Bool("dump", false, "print full records")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	articles, err := client().List(ctx, *tag)
	if err != nil {
		return err
	}
	return printArticles(out, articles, *dump)
}

func runSearch(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	client := clientFlags(fs)
	tag := fs.String("tag", "", "only articles with this tag")
	dump := fs.Bool("dump", false, "print full records")
	fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("search: a query is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	articles, err := client().Search(ctx, query, *tag)
	if err != nil {
		return err
	}
	return printArticles(out, articles, *dump)
}

func runGet(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	client := clientFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("get: exactly one article id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	a, err := client().Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "id:      %s\nname:    %s\nurl:     %s\nsaved:   %s\ntags:    %s\n",
		a.ID, a.Name, a.URL, a.CreatedAt.Format(time.RFC3339), strings.Join(a.Tags, ", "))
	if a.Description != "" {
		fmt.Fprintf(out, "\n%s\n", a.Description)
	}
	return nil
}

// runAdd saves a URL directly, without loading the page. The server falls
// back to the URL when no name is given.
func runAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	client := clientFlags(fs)
	name := fs.String("name", "", "article name")
	tags := fs.String("tags", "", "comma separated tags")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("add: exactly one URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	a, err := client().Add(ctx, collection.UploadRecord{
		Name: *name,
		URL:  fs.Arg(0),
		Tags: monk.SplitTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\t%s\n", a.ID, a.Name)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	client := clientFlags(fs)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("delete: at least one article id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	c := client()
	for _, id := range fs.Args() {
		if err := c.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", id)
	}
	return nil
}

func printArticles(out io.Writer, articles []collection.Article, dump bool) error {
	if dump {
		fmt.Fprintln(out, litter.Sdump(articles))
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tNAME\tURL\tTAGS")
	for _, a := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.CreatedAt.Format("2006-01-02"), a.Name, a.URL, strings.Join(a.Tags, ","))
	}
	return w.Flush()
}
