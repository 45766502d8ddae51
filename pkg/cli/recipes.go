package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/cli/config"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/controller/listing"
	"github.com/pantry-lab/sousschef/pkg/controller/reference"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
)

func recipeIdent(r model.Recipe) int64 { return r.ID }

func cmdRecipes() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "recipes",
		Usage: "Manage recipes",
		Commands: []*cli.Command{
			cmdRecipesList(&clientCfg),
			cmdRecipesCreate(&clientCfg),
			cmdRecipesDelete(&clientCfg),
		},
	}
}

func cmdRecipesList(clientCfg *config.Client) *cli.Command {
	var filter string
	var page int64

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "Filter by recipe name",
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
		Usage: "List recipes",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			ctrl, err := fetchList(ctx, s, "recipes", "recipe", clientCfg.PageSize(), recipeIdent,
				filter, types.FilterByName.String(), int(page))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(ctrl.Items()))
			for _, r := range ctrl.Items() {
				rating := ""
				if r.Rating > 0 {
					rating = strconv.FormatInt(r.Rating, 10)
				}
				rows = append(rows, []string{formatID(r.ID), r.Name, rating})
			}
			table([]string{"ID", "NAME", "RATING"}, rows)
			pageFooter(ctrl.State())
			return nil
		},
	}
}

// askRecipeRows interactively builds the variable-length ingredient rows
func askRecipeRows(ctx context.Context, s *session) ([]form.RecipeRow, error) {
	var rows []form.RecipeRow
	for {
		more, err := askConfirm("Add an ingredient row?")
		if err != nil {
			return nil, err
		}
		if !more {
			return rows, nil
		}

		term, err := askRequired("Ingredient:")
		if err != nil {
			return nil, err
		}
		res := reference.New(s.transport, "ingredients",
			reference.WithHub(s.hub),
			reference.WithField(model.Indexed("ingredients", len(rows), "ingredient")),
		)
		option, err := resolveReference(ctx, res, "ingredient", term)
		if err != nil {
			return nil, err
		}

		amount, err := askInt("Amount:", true)
		if err != nil {
			return nil, err
		}
		unit, err := askOptional("Unit (optional):")
		if err != nil {
			return nil, err
		}

		rows = append(rows, form.RecipeRow{Ingredient: option, Amount: amount, Unit: unit})
	}
}

// askRecipeTags lets the user pick tags from the backend's tag collection
func askRecipeTags(ctx context.Context, s *session) ([]model.ReferenceOption, error) {
	resp, err := s.transport.Get(ctx, "tags/", nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch tags")
	}
	var tags []model.Tag
	if err := json.Unmarshal(resp.Body, &tags); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tags")
	}
	if len(tags) == 0 {
		return nil, nil
	}

	labels := make([]string, 0, len(tags))
	for _, t := range tags {
		labels = append(labels, t.Name)
	}

	var picked []string
	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Tags:",
		Options: labels,
	}, &picked); err != nil {
		return nil, goerr.Wrap(err, "prompt aborted")
	}

	var options []model.ReferenceOption
	for _, name := range picked {
		for _, t := range tags {
			if t.Name == name {
				options = append(options, model.ReferenceOption{Value: t.ID, Label: t.Name})
				break
			}
		}
	}
	return options, nil
}

func cmdRecipesCreate(clientCfg *config.Client) *cli.Command {
	var input form.RecipeInput

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Recipe name",
			Destination: &input.Name,
		},
		&cli.StringFlag{
			Name:        "steps",
			Usage:       "Preparation steps",
			Destination: &input.Steps,
		},
		&cli.StringFlag{
			Name:        "notes",
			Usage:       "Free-form notes",
			Destination: &input.Notes,
		},
		&cli.IntFlag{
			Name:        "rating",
			Usage:       "Rating from 1 to 5",
			Destination: &input.Rating,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "create",
		Usage: "Create a recipe",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if input.Name == "" {
				input.Name, err = askRequired("Recipe name:")
				if err != nil {
					return err
				}
			}
			if input.Steps == "" {
				input.Steps, err = askRequired("Steps:")
				if err != nil {
					return err
				}
			}

			input.Ingredients, err = askRecipeRows(ctx, s)
			if err != nil {
				return err
			}
			input.Tags, err = askRecipeTags(ctx, s)
			if err != nil {
				return err
			}

			if _, err := s.uc.Recipe.Create(ctx, input); err != nil {
				if errors.Is(err, types.ErrValidationFailed) {
					printFieldErrors(s.uc.Recipe.Form().FieldErrors())
				}
				return err
			}
			return nil
		},
	}
}

func cmdRecipesDelete(clientCfg *config.Client) *cli.Command {
	var id int64
	var yes bool

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "id",
			Usage:       "Recipe ID",
			Required:    true,
			Destination: &id,
		},
		&cli.BoolFlag{
			Name:        "yes",
			Usage:       "Skip the confirmation prompt",
			Destination: &yes,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a recipe",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if !yes {
				ok, err := askConfirm("Delete recipe " + formatID(id) + "?")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			ctrl := listing.New(s.transport, "recipes", recipeIdent,
				listing.WithHub[model.Recipe](s.hub),
				listing.WithNoun[model.Recipe]("recipe"),
			)
			return ctrl.Delete(ctx, model.Recipe{ID: id})
		},
	}
}
