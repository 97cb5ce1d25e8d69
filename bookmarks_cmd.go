package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/readalong/internal/bookmark"
)

var (
	forgetBookmarks bool

	bookmarksCmd = &cobra.Command{
		Use:     "bookmarks [QUERY]",
		Short:   "List saved reading positions",
		Long:    paragraph(fmt.Sprintf("\n%s saved reading positions, most recent first. A query fuzzy-matches document paths.", keyword("List"))),
		Example: paragraph("readalong bookmarks\nreadalong bookmarks notes\nreadalong bookmarks --forget notes"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := openBookmarks()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("bookmarks are disabled in the configuration")
			}

			var query string
			if len(args) == 1 {
				query = args[0]
			}
			if forgetBookmarks {
				if query == "" {
					return errors.New("--forget needs a query")
				}
				return forget(store, query, os.Stdout)
			}
			return listBookmarks(store, query, os.Stdout)
		},
	}
)

func init() {
	bookmarksCmd.Flags().BoolVar(&forgetBookmarks, "forget", false, "delete the bookmarks matching the query")
}

// filterDocuments keeps the documents matching query, best match first.
// An empty query keeps everything in its original order.
func filterDocuments(docs []string, query string) []string {
	if query == "" {
		return docs
	}
	matches := fuzzy.Find(query, docs)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

func listBookmarks(store *bookmark.Store, query string, w io.Writer) error {
	docs := filterDocuments(store.Documents(), query)
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No bookmarks.")
		return err //nolint:wrapcheck
	}
	for _, doc := range docs {
		b, err := store.Get(doc)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n  sentence %s, %s\n  %s\n\n",
			doc, humanize.Comma(int64(b.Sentence+1)), humanize.Time(b.Updated), b.Preview); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}

func forget(store *bookmark.Store, query string, w io.Writer) error {
	docs := filterDocuments(store.Documents(), query)
	for _, doc := range docs {
		store.Delete(doc)
		fmt.Fprintln(w, "Forgot", doc) //nolint:errcheck
	}
	if len(docs) == 0 {
		return fmt.Errorf("no bookmark matches %q", query)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("unable to save bookmarks: %w", err)
	}
	return nil
}
