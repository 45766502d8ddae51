package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/m-mizutani/goerr/v2"

	"github.com/pantry-lab/sousschef/pkg/controller/reference"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

func askRequired(message string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", goerr.Wrap(err, "prompt aborted")
	}
	return answer, nil
}

func askOptional(message string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer); err != nil {
		return "", goerr.Wrap(err, "prompt aborted")
	}
	return answer, nil
}

func askInt(message string, required bool) (int64, error) {
	validator := func(ans interface{}) error {
		s, _ := ans.(string)
		if s == "" {
			if required {
				return fmt.Errorf("a value is required")
			}
			return nil
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return fmt.Errorf("must be a number")
		}
		return nil
	}

	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer, survey.WithValidator(validator)); err != nil {
		return 0, goerr.Wrap(err, "prompt aborted")
	}
	if answer == "" {
		return 0, nil
	}
	return strconv.ParseInt(answer, 10, 64)
}

func askWithDefault(message, current string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message, Default: current}, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", goerr.Wrap(err, "prompt aborted")
	}
	return answer, nil
}

func askIntWithDefault(message string, current int64) (int64, error) {
	var answer string
	prompt := &survey.Input{Message: message, Default: strconv.FormatInt(current, 10)}
	validator := func(ans interface{}) error {
		s, _ := ans.(string)
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return fmt.Errorf("must be a number")
		}
		return nil
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(validator)); err != nil {
		return 0, goerr.Wrap(err, "prompt aborted")
	}
	return strconv.ParseInt(answer, 10, 64)
}

func askConfirm(message string) (bool, error) {
	var answer bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &answer); err != nil {
		return false, goerr.Wrap(err, "prompt aborted")
	}
	return answer, nil
}

// resolveReference turns a typed name into a reference option: it searches
// the collection, lets the user pick among matches, and offers to create the
// entity when nothing (or nothing right) matches.
func resolveReference(ctx context.Context, res *reference.Resolver, noun, term string) (model.ReferenceOption, error) {
	options, err := res.Search(ctx, term)
	if err != nil {
		return model.ReferenceOption{}, err
	}

	if len(options) == 0 {
		create, err := askConfirm(fmt.Sprintf("No %s named %q found. Create it?", noun, term))
		if err != nil {
			return model.ReferenceOption{}, err
		}
		if !create {
			return model.ReferenceOption{}, goerr.New("no "+noun+" selected", goerr.V("term", term))
		}
		return res.CreateAndResolve(ctx, term)
	}

	if len(options) == 1 {
		res.SetValue(options[0])
		return options[0], nil
	}

	createLabel := fmt.Sprintf("(create %q)", term)
	labels := make([]string, 0, len(options)+1)
	for _, opt := range options {
		labels = append(labels, opt.Label)
	}
	labels = append(labels, createLabel)

	var picked string
	if err := survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("Select %s:", noun),
		Options: labels,
	}, &picked); err != nil {
		return model.ReferenceOption{}, goerr.Wrap(err, "prompt aborted")
	}

	if picked == createLabel {
		return res.CreateAndResolve(ctx, term)
	}
	for _, opt := range options {
		if opt.Label == picked {
			res.SetValue(opt)
			return opt, nil
		}
	}
	return model.ReferenceOption{}, goerr.New("selection did not match any option")
}
