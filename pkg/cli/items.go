package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/cli/config"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/controller/listing"
	"github.com/pantry-lab/sousschef/pkg/controller/reference"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
)

func itemIdent(it model.Item) int64 { return it.ID }

func cmdItems() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "items",
		Usage: "Manage inventory items",
		Commands: []*cli.Command{
			cmdItemsList(&clientCfg),
			cmdItemsCreate(&clientCfg),
			cmdItemsEdit(&clientCfg),
			cmdItemsDelete(&clientCfg),
		},
	}
}

func cmdItemsList(clientCfg *config.Client) *cli.Command {
	var filter, filterField string
	var page int64

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "Filter text; digit-only input matches product IDs",
			Destination: &filter,
		},
		&cli.StringFlag{
			Name:        "filter-field",
			Usage:       "Filter field (name or productId); overrides the inference",
			Destination: &filterField,
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
		Usage: "List inventory items",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			ctrl, err := fetchList(ctx, s, "items", "item", clientCfg.PageSize(), itemIdent, filter, filterField, int(page))
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(ctrl.Items()))
			for _, it := range ctrl.Items() {
				product := ""
				if it.ProductID != nil {
					product = strconv.FormatInt(*it.ProductID, 10)
				}
				ingredient := ""
				if it.Ingredient != nil {
					ingredient = it.Ingredient.Name
				}
				rows = append(rows, []string{
					formatID(it.ID), it.Name, strconv.FormatInt(it.Amount, 10), product, ingredient,
				})
			}
			table([]string{"ID", "NAME", "AMOUNT", "PRODUCT ID", "INGREDIENT"}, rows)
			pageFooter(ctrl.State())
			return nil
		},
	}
}

// askItemInput fills in the parts of the item form the flags left empty
func askItemInput(ctx context.Context, s *session, c *cli.Command, input *form.ItemInput, ingredientTerm string) error {
	if input.Name == "" {
		name, err := askRequired("Item name:")
		if err != nil {
			return err
		}
		input.Name = name
	}
	if !c.IsSet("amount") {
		amount, err := askInt("Amount:", true)
		if err != nil {
			return err
		}
		input.Amount = amount
	}
	if !c.IsSet("product-id") && input.ProductID == 0 {
		pid, err := askInt("Product ID (optional):", false)
		if err != nil {
			return err
		}
		input.ProductID = pid
	}

	if ingredientTerm == "" && input.Ingredient.IsZero() {
		term, err := askOptional("Ingredient (optional):")
		if err != nil {
			return err
		}
		ingredientTerm = term
	}
	if ingredientTerm != "" {
		res := reference.New(s.transport, "ingredients",
			reference.WithHub(s.hub),
			reference.WithField(model.Field("ingredientId")),
		)
		option, err := resolveReference(ctx, res, "ingredient", ingredientTerm)
		if err != nil {
			return err
		}
		input.Ingredient = option
	}
	return nil
}

func cmdItemsCreate(clientCfg *config.Client) *cli.Command {
	var input form.ItemInput
	var ingredientTerm string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Item name",
			Destination: &input.Name,
		},
		&cli.IntFlag{
			Name:        "amount",
			Usage:       "Stocked amount",
			Destination: &input.Amount,
		},
		&cli.IntFlag{
			Name:        "product-id",
			Usage:       "Scannable product ID",
			Destination: &input.ProductID,
		},
		&cli.StringFlag{
			Name:        "ingredient",
			Usage:       "Linked ingredient name; resolved against the backend",
			Destination: &ingredientTerm,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "create",
		Usage: "Create an inventory item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := askItemInput(ctx, s, c, &input, ingredientTerm); err != nil {
				return err
			}

			if _, err := s.uc.Item.Create(ctx, input); err != nil {
				if errors.Is(err, types.ErrValidationFailed) {
					printFieldErrors(s.uc.Item.Form().FieldErrors())
				}
				return err
			}
			return nil
		},
	}
}

func cmdItemsEdit(clientCfg *config.Client) *cli.Command {
	var id int64

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "id",
			Usage:       "Item ID",
			Required:    true,
			Destination: &id,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "edit",
		Usage: "Edit an inventory item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			input, etag, err := s.uc.Item.Load(ctx, id)
			if err != nil {
				return err
			}

			name, err := askWithDefault("Item name:", input.Name)
			if err != nil {
				return err
			}
			input.Name = name

			amount, err := askIntWithDefault("Amount:", input.Amount)
			if err != nil {
				return err
			}
			input.Amount = amount

			if _, err := s.uc.Item.Update(ctx, id, etag, input); err != nil {
				if errors.Is(err, types.ErrValidationFailed) {
					printFieldErrors(s.uc.Item.Form().FieldErrors())
				}
				return err
			}
			return nil
		},
	}
}

func cmdItemsDelete(clientCfg *config.Client) *cli.Command {
	var id int64
	var yes bool

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "id",
			Usage:       "Item ID",
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
		Usage: "Delete an inventory item",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if !yes {
				ok, err := askConfirm("Delete item " + formatID(id) + "?")
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			ctrl := listing.New(s.transport, "items", itemIdent,
				listing.WithHub[model.Item](s.hub),
				listing.WithNoun[model.Item]("item"),
			)
			return ctrl.Delete(ctx, model.Item{ID: id})
		},
	}
}
