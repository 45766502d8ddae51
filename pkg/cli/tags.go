package cli

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/pantry-lab/sousschef/pkg/cli/config"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

func cmdTags() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "tags",
		Usage: "Manage recipe tags",
		Commands: []*cli.Command{
			cmdTagsList(&clientCfg),
			cmdTagsCreate(&clientCfg),
		},
	}
}

func cmdTagsList(clientCfg *config.Client) *cli.Command {
	var filter string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "Filter by tag name",
			Destination: &filter,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "list",
		Usage: "List recipe tags",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			query := url.Values{}
			if filter != "" {
				query.Set("name", filter)
			}
			resp, err := s.transport.Get(ctx, "tags/", query)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch tags")
			}
			var tags []model.Tag
			if err := json.Unmarshal(resp.Body, &tags); err != nil {
				return goerr.Wrap(err, "failed to decode tags")
			}

			rows := make([][]string, 0, len(tags))
			for _, t := range tags {
				rows = append(rows, []string{formatID(t.ID), t.Name})
			}
			table([]string{"ID", "NAME"}, rows)
			return nil
		},
	}
}

func cmdTagsCreate(clientCfg *config.Client) *cli.Command {
	var name string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Tag name",
			Destination: &name,
		},
	}
	flags = append(flags, clientCfg.Flags()...)

	return &cli.Command{
		Name:  "create",
		Usage: "Create a recipe tag",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := newSession(c, clientCfg)
			if err != nil {
				return err
			}
			defer s.Close()

			if name == "" {
				name, err = askRequired("Tag name:")
				if err != nil {
					return err
				}
			}

			resp, err := s.transport.Post(ctx, "tags/", map[string]any{"name": name})
			if err != nil {
				return goerr.Wrap(err, "failed to create tag", goerr.V("name", name))
			}
			var created model.Tag
			if err := json.Unmarshal(resp.Body, &created); err != nil {
				return goerr.Wrap(err, "failed to decode created tag")
			}

			s.hub.Success("Tag successfully created")
			return nil
		},
	}
}
