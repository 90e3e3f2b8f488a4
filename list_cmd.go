package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	intconfig "dashboard/internal/config"
	"dashboard/internal/liststate"
	"dashboard/internal/services"
	"dashboard/internal/store"

	"github.com/spf13/cobra"
)

type listOptions struct {
	page    int
	limit   int
	search  string
	sortBy  string
	order   string
	filters []string
}

func newListCmd() *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Fetch one page of a view and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := intconfig.LoadEnv()
			viewStore, err := intconfig.NewViewStore(env.ViewsFile)
			if err != nil {
				return err
			}
			client := store.NewClient(env.StoreAPIURL, env.StoreAPIToken, env.StoreAPITimeout)
			views := services.NewViewService(client, viewStore.Current, nil, 0)
			defer views.CloseAll()
			return runList(cmd.Context(), views, args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&opts.page, "page", 1, "page to show")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "rows per page (view default when 0)")
	cmd.Flags().StringVar(&opts.search, "search", "", "search text")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "sort field")
	cmd.Flags().StringVar(&opts.order, "order", "", "sort order (asc|desc)")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "filter as key=value, repeatable")
	return cmd
}

// changes turns the flags into engine updates, in the order they must be
// applied: page goes last because every other change resets it.
func (o listOptions) changes() ([][2]any, error) {
	var out [][2]any
	if o.limit > 0 {
		out = append(out, [2]any{liststate.KeyLimit, o.limit})
	}
	if o.search != "" {
		out = append(out, [2]any{"search", o.search})
	}
	if o.sortBy != "" {
		out = append(out, [2]any{liststate.KeySortBy, o.sortBy})
	}
	if o.order != "" {
		if _, ok := liststate.ParseSortOrder(o.order); !ok {
			return nil, fmt.Errorf("--order must be asc or desc, got %q", o.order)
		}
		out = append(out, [2]any{liststate.KeySortOrder, o.order})
	}
	for _, f := range o.filters {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--filter %q is not key=value", f)
		}
		out = append(out, [2]any{k, strings.TrimSpace(v)})
	}
	if o.page > 1 {
		out = append(out, [2]any{liststate.KeyPage, o.page})
	}
	return out, nil
}

func runList(ctx context.Context, views *services.ViewService, entity string, opts listOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	changes, err := opts.changes()
	if err != nil {
		return err
	}
	v, err := views.MountWith(ctx, entity, func(fs liststate.FilterState) liststate.FilterState {
		for _, ch := range changes {
			fs = fs.Update(ch[0].(string), ch[1])
		}
		return fs
	})
	if err != nil {
		return err
	}

	st := v.Status()
	if st.Error != "" {
		return fmt.Errorf("%s: %s", entity, st.Error)
	}
	return printPage(out, st, v.Records())
}

func printPage(out io.Writer, st liststate.Status, records []liststate.Record) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", r.RecordID(), r.RecordLabel())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	window := make([]string, 0, len(st.Window))
	for _, p := range st.Window {
		if p == st.Meta.CurrentPage {
			window = append(window, fmt.Sprintf("[%d]", p))
			continue
		}
		window = append(window, fmt.Sprintf("%d", p))
	}
	_, err := fmt.Fprintf(out, "\npage %d of %d, %d items  %s\n",
		st.Meta.CurrentPage, st.Meta.TotalPages, st.Meta.TotalItems, strings.Join(window, " "))
	return err
}
