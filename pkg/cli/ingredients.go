package cli

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/cli/config"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
)

func ingredientIdent(ing model.Ingredient) int64 { return ing.ID }

func cmdIngredients() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "ingredients",
		Usage: "Manage ingredients",
		Commands: []*cli.Command{
			cmdIngredientsList(&clientCfg),
			cmdIngredientsCreate(&clientCfg),
		},
	}
}

func cmdIngredientsList(clientCfg *config.Client) *cli.Command {
	var filter string
	var page int64

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "Filter by ingredient name",
			Destination: &filter,
		},
		&cli.IntFlag{
			Name:        "page",
			Usage:       "Page to fetch",
			Value:       1,
			Destination: &page,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "list",
		Usage: "List ingredients",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			ctrl, err := fetchList(ctx, s, "ingredients", "ingredient", clientCfg.PageSize(), ingredientIdent,
				filter, types.FilterByName.String(), int(page))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(ctrl.Items()))
			for _, ing := range ctrl.Items() {
				rows = append(rows, []string{formatID(ing.ID), ing.Name})
			}
			table([]string{"ID", "NAME"}, rows)
			pageFooter(ctrl.State())
			return nil
		},
	}
}

func cmdIngredientsCreate(clientCfg *config.Client) *cli.Command {
	var name string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Ingredient name",
			Destination: &name,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "create",
		Usage: "Create an ingredient",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if name == "" {
				name, err = askRequired("Ingredient name:")
				if err != nil {
					return err
				}
			}

			if _, err := s.uc.Ingredient.Create(ctx, form.IngredientInput{Name: name}); err != nil {
				if errors.Is(err, types.ErrValidationFailed) {
					printFieldErrors(s.uc.Ingredient.Form().FieldErrors())
				}
				return err
			}
			return nil
		},
	}
}
