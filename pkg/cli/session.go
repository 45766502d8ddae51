package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/pantry-lab/sousschef/pkg/cli/config"
	"github.com/pantry-lab/sousschef/pkg/controller/listing"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/usecase"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
	"github.com/urfave/cli/v3"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	faintColor   = color.New(color.Faint)
)

// session bundles the pieces every client command needs: the API client,
// the message hub with a console subscriber, and the use cases on top.
type session struct {
	transport interfaces.Transport
	uc        *usecase.UseCases
	hub       *msghub.Hub

	unsubscribe func()
}

func newSession(c *cli.Command, clientCfg *config.Client) (*session, error) {
	client, err := clientCfg.Configure(c)
	if err != nil {
		return nil, err
	}

	hub := msghub.New()
	unsubscribe := hub.Subscribe(func(msg msghub.Message) {
		switch msg.Level {
		case types.MessageSuccess:
			_, _ = successColor.Fprintln(os.Stdout, msg.Text)
		case types.MessageError:
			_, _ = errorColor.Fprintln(os.Stderr, msg.Text)
		}
	})

	return &session{
		transport:   client,
		uc:          usecase.New(client, hub),
		hub:         hub,
		unsubscribe: unsubscribe,
	}, nil
}

func (s *session) Close() {
	s.unsubscribe()
}

// fetchList builds a listing controller, applies the query flags and runs
// one synchronous fetch. The filter field is inferred from the text's shape
// unless an explicit field was given.
func fetchList[T any](ctx context.Context, s *session, collection, noun string, pageSize int, ident func(T) int64, filterText, filterField string, page int) (*listing.Controller[T], error) {
	ctrl := listing.New(s.transport, collection, ident,
		listing.WithHub[T](s.hub),
		listing.WithNoun[T](noun),
		listing.WithPageSize[T](pageSize),
	)

	if filterText != "" {
		if filterField != "" {
			field, err := types.ParseFilterField(filterField)
			if err != nil {
				return nil, err
			}
			ctrl.SetFilterWithField(ctx, filterText, field)
		} else {
			ctrl.SetFilter(ctx, filterText)
		}
	}
	if page > 1 {
		ctrl.TurnPage(ctx, page-1)
	}
	if err := ctrl.Refresh(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// table writes aligned rows to stdout with a faint header line
func table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	line := ""
	for i, h := range header {
		if i > 0 {
			line += "\t"
		}
		line += h
	}
	_, _ = fmt.Fprintln(w, faintColor.Sprint(line))
	for _, row := range rows {
		out := ""
		for i, cell := range row {
			if i > 0 {
				out += "\t"
			}
			out += cell
		}
		_, _ = fmt.Fprintln(w, out)
	}
	_ = w.Flush()
}

// pageFooter prints the pagination line below a listing table
func pageFooter(state listing.QueryState) {
	faintColor.Printf("Page %d of %d\n", state.CurrentPage, state.TotalPages)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// printFieldErrors reports per-field validation failures on stderr
func printFieldErrors(errs []model.FieldError) {
	for _, fe := range errs {
		_, _ = errorColor.Fprintf(os.Stderr, "%s: %s\n", fe.Field, fe.Message)
	}
}
