package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
	"github.com/oarkflow/mebel/internal/render"
	"github.com/oarkflow/mebel/internal/result"
)

// listFlags are the flags shared by the list commands.
type listFlags struct {
	search  string
	sort    string
	order   string
	page    int
	limit   int
	// filters holds the flag value per filter name.
	filters map[string]*string
}

// filterFlag exposes one list filter as a flag.
type filterFlag struct {
	flag   string
	filter string
	usage  string
}

func (f *listFlags) register(cmd *cobra.Command, filters ...filterFlag) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search text")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort field")
	cmd.Flags().StringVar(&f.order, "order", "", "sort order (asc|desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size (default from config)")
	f.filters = make(map[string]*string, len(filters))
	for _, ff := range filters {
		f.filters[ff.filter] = cmd.Flags().String(ff.flag, "", ff.usage)
	}
}

// query applies the flags to the view's initial query.
func (f *listFlags) query(view listquery.View) (listquery.Query, error) {
	q := view.Initial()
	q.Search = strings.TrimSpace(f.search)
	if f.page > 1 {
		q.Page = f.page
	}
	if f.limit != 0 {
		if f.limit < 1 || f.limit > 100 {
			return q, fmt.Errorf("--limit must be between 1 and 100")
		}
		q.PageSize = f.limit
	}
	if f.sort != "" {
		if !slices.Contains(view.SortFields, f.sort) {
			return q, fmt.Errorf("cannot sort by %q (choose from %s)", f.sort, strings.Join(sortedFields(view), ", "))
		}
		q.SortField = f.sort
	}
	if f.order != "" {
		order, ok := listquery.ParseSortOrder(f.order)
		if !ok {
			return q, fmt.Errorf("invalid sort order %q", f.order)
		}
		q.SortOrder = order
	}
	for _, filter := range view.Filters {
		v, ok := f.filters[filter.Name]
		if !ok || *v == "" || *v == filter.Sentinel {
			continue
		}
		q.Filters[filter.Name] = *v
	}
	return q, nil
}

func sortedFields(view listquery.View) []string {
	fields := slices.Clone(view.SortFields)
	slices.Sort(fields)
	return fields
}

// browser drives a list controller from line commands.
type browser[R any] struct {
	ctl    *listquery.Controller[R]
	render func(io.Writer, result.Page[R])
	// filters maps a command word onto a filter name.
	filters map[string]string
	// toggle flips the status of one record.
	toggle func(ctx context.Context, id int64) result.Result[R]
}

const browseHelp = `Commands:
  n | p            next / previous page
  g N              go to page N
  s [TEXT]         search (empty clears)
  sort FIELD       sort by FIELD
  o                flip sort order
  t ID             toggle status of record ID
  r                reload
  q                quit`

func (b *browser[R]) run(ctx context.Context, in io.Reader, out io.Writer) error {
	b.ctl.Load(ctx)
	b.show(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		word, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		quit, err := b.exec(ctx, out, word, arg)
		if quit {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "✗ %s\n", err)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (b *browser[R]) exec(ctx context.Context, out io.Writer, word, arg string) (bool, error) {
	page := b.ctl.State().Query.Page
	switch word {
	case "":
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		fmt.Fprintln(out, browseHelp)
		for w, name := range b.filters {
			fmt.Fprintf(out, "  %-16s filter by %s\n", w+" [VALUE]", name)
		}
		return false, nil
	case "n":
		return false, b.move(out, b.ctl.SetPage(ctx, page+1))
	case "p":
		return false, b.move(out, b.ctl.SetPage(ctx, page-1))
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("page must be a number")
		}
		return false, b.move(out, b.ctl.SetPage(ctx, n))
	case "s":
		b.ctl.SetSearchText(ctx, arg)
	case "sort":
		if err := b.ctl.SetSortField(ctx, arg); err != nil {
			return false, err
		}
	case "o":
		b.ctl.ToggleSortOrder(ctx)
	case "r":
		b.ctl.Refresh(ctx)
	case "t":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return false, fmt.Errorf("usage: t ID")
		}
		res := listquery.Mutate(ctx, b.ctl, func(ctx context.Context) result.Result[R] {
			return b.toggle(ctx, id)
		})
		if _, err := outcome(out, res); err != nil {
			return false, err
		}
	default:
		name, ok := b.filters[word]
		if !ok {
			return false, fmt.Errorf("unknown command %q, type h for help", word)
		}
		if err := b.ctl.SetFilter(ctx, name, arg); err != nil {
			return false, err
		}
	}
	b.show(out)
	return false, nil
}

func (b *browser[R]) move(out io.Writer, fetched bool) error {
	if !fetched {
		return fmt.Errorf("no other page there")
	}
	b.show(out)
	return nil
}

func (b *browser[R]) show(out io.Writer) {
	b.ctl.Wait()
	s := b.ctl.State()
	if s.Err != "" {
		fmt.Fprintf(out, "✗ %s\n", s.Err)
		return
	}
	b.render(out, result.Page[R]{Records: s.Records, Pagination: s.Pagination})
	fmt.Fprintln(out, render.QueryLine(s.Query))
}

// toggleStatus flips a record between active and inactive; a low-stock
// product counts as active.
func toggleStatus(current gateway.Status) (gateway.Status, error) {
	switch current {
	case gateway.StatusActive, gateway.StatusLowStock:
		return gateway.StatusInactive, nil
	case gateway.StatusInactive:
		return gateway.StatusActive, nil
	}
	return "", fmt.Errorf("status %q cannot be toggled", current)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
