// Command reviewctl is a terminal review queue for PartsFlip moderators.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/features/moderation/workflow"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
)

const helpText = `commands:
  open [page]              open queue (open + under review)
  past [page]              resolved and dismissed reports
  next | prev              page through the current view
  type <itemType|all>      filter by content type
  tag <tag|all>            filter by one of your tags
  sort <newest|resolved|most_reported>
  show <n>                 details of report n on the page
  dismiss <n>              dismiss report n
  delete <n>               delete the reported item
  mute <n>                 delete the item and mute its author
  status <n> <status>      move report n to another status
  muted [expiry|name] [page]
  help | quit`

type cli struct {
	session *workflow.Session
	backend *workflow.HTTPBackend
	in      *bufio.Scanner
	out     io.Writer
	limit   int
	minDays int
	maxDays int
}

func newCLI(backend *workflow.HTTPBackend, in io.Reader, out io.Writer, limit, minDays, maxDays int) *cli {
	return &cli{
		session: workflow.NewSession(backend, minDays, maxDays),
		backend: backend,
		in:      bufio.NewScanner(in),
		out:     out,
		limit:   limit,
		minDays: minDays,
		maxDays: maxDays,
	}
}

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("REVIEWCTL_API_URL", "http://localhost:8080/api/v1"), "moderation API base URL")
	token := flag.String("token", os.Getenv("REVIEWCTL_TOKEN"), "admin bearer token")
	limit := flag.Int("limit", 10, "reports per page")
	minDays := flag.Int("min-mute-days", 1, "shortest mute duration")
	maxDays := flag.Int("max-mute-days", 30, "longest mute duration")
	flag.Parse()

	logger.Setup(envOr("LOG_LEVEL", "warn"), "console", os.Stderr)

	if *token == "" {
		logger.Fatal("an admin token is required (-token or REVIEWCTL_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newCLI(workflow.NewHTTPBackend(*apiURL, *token), os.Stdin, os.Stdout, *limit, *minDays, *maxDays)
	c.load(ctx, c.query())
	c.run(ctx)
}

func (c *cli) run(ctx context.Context) {
	for {
		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			return
		}
		args := strings.Fields(c.in.Text())
		if len(args) == 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		switch args[0] {
		case "quit", "exit":
			return
		case "help":
			fmt.Fprintln(c.out, helpText)
		case "open", "past":
			q := c.query()
			q.Scope = moderation.Scope(args[0])
			q.Status = ""
			q.Sort = ""
			q.Page = pageArg(args, 1)
			c.load(ctx, q)
		case "next":
			if !c.session.Pagination().HasNext {
				fmt.Fprintln(c.out, "already on the last page")
				continue
			}
			q := c.query()
			q.Page++
			c.load(ctx, q)
		case "prev":
			q := c.query()
			if q.Page <= 1 {
				fmt.Fprintln(c.out, "already on the first page")
				continue
			}
			q.Page--
			c.load(ctx, q)
		case "type":
			q := c.query()
			q.ContentType = moderation.ItemType(allOrValue(args))
			q.Page = 1
			c.load(ctx, q)
		case "tag":
			q := c.query()
			q.Tag = allOrValue(args)
			q.Page = 1
			c.load(ctx, q)
		case "sort":
			q := c.query()
			q.Sort = moderation.ReportSort(allOrValue(args))
			q.Page = 1
			c.load(ctx, q)
		case "show":
			if r, ok := c.pick(args); ok {
				c.show(r)
			}
		case "dismiss":
			c.act(ctx, args, moderation.ActionDismiss, "")
		case "delete":
			c.act(ctx, args, moderation.ActionDeleteItem, "")
		case "mute":
			c.act(ctx, args, moderation.ActionDeleteItemMuteUser, "")
		case "status":
			if len(args) < 3 {
				fmt.Fprintln(c.out, "usage: status <n> <status>")
				continue
			}
			c.act(ctx, args, moderation.ActionChangeStatus, moderation.Status(args[2]))
		case "muted":
			c.muted(ctx, args)
		default:
			fmt.Fprintf(c.out, "unknown command %q, try help\n", args[0])
		}
	}
}

// query is the view on screen; a failed load leaves it unchanged
func (c *cli) query() workflow.Query {
	q := c.session.Query()
	if q.Scope == "" {
		q.Scope = moderation.ScopeOpen
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = c.limit
	}
	return q
}

func (c *cli) load(ctx context.Context, q workflow.Query) {
	if err := c.session.Load(ctx, q); err != nil {
		c.fail(err)
		return
	}
	c.list()
}

func (c *cli) list() {
	reports := c.session.Reports()
	p := c.session.Pagination()
	fmt.Fprintf(c.out, "%s reports, page %d/%d (%d total)\n", c.query().Scope, p.Page, p.TotalPages, p.Total)
	if len(reports) == 0 {
		fmt.Fprintln(c.out, "  nothing to review")
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tSTATUS\tCOUNT\tTITLE\tREPORTED")
	for i := range reports {
		r := &reports[i]
		title := r.DisplayTitle()
		if !r.Live() {
			title += " (deleted)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1, r.ReportedItemType, r.StatusLabel, r.ReportCount, truncate(title, 48), r.CreatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func (c *cli) show(r moderation.ReportView) {
	fmt.Fprintf(c.out, "report %s\n", r.ID.Hex())
	fmt.Fprintf(c.out, "  %s %s  status=%s  reports=%d\n", r.ReportedItemType, r.ReportedItemID.Hex(), r.StatusLabel, r.ReportCount)
	fmt.Fprintf(c.out, "  reason: %s\n", r.Reason)
	if len(r.AssociatedTags) > 0 {
		fmt.Fprintf(c.out, "  tags: %s\n", strings.Join(r.AssociatedTags, ", "))
	}
	snap := r.ReportedItemSnapshot
	fmt.Fprintf(c.out, "  snapshot: %s\n", truncate(strings.TrimSpace(snap.Title+" "+snap.Body), 200))
	if snap.AuthorName != "" {
		fmt.Fprintf(c.out, "  author: %s\n", snap.AuthorName)
	}
	if snap.Price > 0 {
		fmt.Fprintf(c.out, "  price: %.2f\n", snap.Price)
	}
	if !r.Live() {
		fmt.Fprintln(c.out, "  live item: deleted")
	}
	if r.AdminActionReason != "" {
		fmt.Fprintf(c.out, "  admin reason: %s\n", r.AdminActionReason)
	}
	if r.MuteDurationDays > 0 {
		fmt.Fprintf(c.out, "  muted for %d days\n", r.MuteDurationDays)
	}
}

// act runs the select / confirm loop for one report
func (c *cli) act(ctx context.Context, args []string, action moderation.ActionType, target moderation.Status) {
	r, ok := c.pick(args)
	if !ok {
		return
	}
	if err := c.session.Select(r.ID, action, target); err != nil {
		c.fail(err)
		return
	}

	for {
		sel, _ := c.session.Selected()
		reason := c.prompt("reason", sel.Reason)
		days := 0
		if action == moderation.ActionDeleteItemMuteUser {
			def := ""
			if sel.MuteDurationDays > 0 {
				def = strconv.Itoa(sel.MuteDurationDays)
			}
			days, _ = strconv.Atoi(c.prompt(fmt.Sprintf("mute days (%d-%d)", c.minDays, c.maxDays), def))
		}

		report, err := c.session.Confirm(ctx, reason, days)
		if err == nil {
			fmt.Fprintf(c.out, "report %s is now %s\n", report.ID.Hex(), report.Label())
			c.list()
			return
		}

		c.fail(err)
		if !strings.EqualFold(c.prompt("try again? [y/N]", ""), "y") {
			_ = c.session.Cancel()
			return
		}
	}
}

func (c *cli) muted(ctx context.Context, args []string) {
	sort := moderation.MutedSortExpiry
	page := 1
	for _, a := range args[1:] {
		if n, err := strconv.Atoi(a); err == nil {
			page = n
			continue
		}
		sort = moderation.MutedSort(a)
	}

	res, err := c.backend.ListMutedUsers(ctx, sort, page, c.limit)
	if err != nil {
		c.fail(err)
		return
	}

	fmt.Fprintf(c.out, "muted users, page %d/%d (%d total)\n", res.Pagination.Page, res.Pagination.TotalPages, res.Pagination.Total)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tEXPIRES\tREASON")
	for _, u := range res.MutedUsers {
		name := u.Username
		if u.DisplayName != "" {
			name += " (" + u.DisplayName + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, u.MuteExpiresAt.Local().Format(time.DateTime), truncate(u.MutedReason, 60))
	}
	tw.Flush()
}

func (c *cli) pick(args []string) (moderation.ReportView, bool) {
	reports := c.session.Reports()
	if len(args) < 2 {
		fmt.Fprintln(c.out, "which report? give its # from the list")
		return moderation.ReportView{}, false
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 || n > len(reports) {
		fmt.Fprintf(c.out, "no report #%s on this page\n", args[1])
		return moderation.ReportView{}, false
	}
	return reports[n-1], true
}

func (c *cli) prompt(label, def string) string {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	if !c.in.Scan() {
		return def
	}
	if v := strings.TrimSpace(c.in.Text()); v != "" {
		return v
	}
	return def
}

func (c *cli) fail(err error) {
	switch {
	case errors.Is(err, workflow.ErrBusy), errors.Is(err, workflow.ErrInvalidTransition):
		fmt.Fprintf(c.out, "not now: %v\n", err)
	case apperrors.KindOf(err) == apperrors.ErrConflict:
		fmt.Fprintf(c.out, "conflict: %s (refresh with 'open')\n", apperrors.Message(err))
	case apperrors.KindOf(err) == apperrors.ErrDependency:
		fmt.Fprintf(c.out, "partial failure: %s\n", apperrors.Message(err))
	default:
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			fmt.Fprintf(c.out, "error: %s\n", apperrors.Message(err))
			return
		}
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
}

func pageArg(args []string, def int) int {
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func allOrValue(args []string) string {
	if len(args) < 2 || args[1] == "all" {
		return ""
	}
	return args[1]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
