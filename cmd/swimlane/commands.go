package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dukex/swimlane/pkg/builder"
	"github.com/dukex/swimlane/pkg/config"
	"github.com/dukex/swimlane/pkg/log"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/passport"
	"github.com/dukex/swimlane/pkg/quality"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// errFailedChecks makes the process exit non-zero after a report with errors was printed.
var errFailedChecks = errors.New("process graph has failed error-severity checks")

func newCommand(stdin io.Reader, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:                  "swimlane",
		Usage:                 "Build, validate and describe swimlane process graphs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:    "build",
				Aliases: []string{"b"},
				Usage:   "Build a process graph from interview answers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "answers",
						Aliases:  []string{"a"},
						Usage:    "Path to a JSON object of answers, - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "company",
						Aliases: []string{"c"},
						Usage:   "Company name used in the default process name",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					raw, err := readInput(stdin, command.String("answers"))
					if err != nil {
						return err
					}

					answers, err := decodeAnswers(raw)
					if err != nil {
						return err
					}

					log.WithModule("cli").DebugContext(ctx, "Building process", "answers", len(answers))

					return render(stdout, "json", builder.Build(answers, command.String("company")))
				},
			},
			{
				Name:      "validate",
				Aliases:   []string{"v"},
				Usage:     "Score a process graph against the quality rules",
				ArgsUsage: "<graph.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "quality-config",
						Usage:   "Path to a YAML file with quality thresholds",
						Sources: cli.EnvVars("QUALITY_CONFIG"),
					},
					formatFlag("json"),
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					data, err := readGraph(stdin, command.Args().First())
					if err != nil {
						return err
					}

					thresholds, err := config.LoadQualityThresholds(command.String("quality-config"))
					if err != nil {
						return err
					}

					result, err := quality.New(thresholds).Validate(data)
					if err != nil {
						return err
					}

					if err := render(stdout, command.String("format"), result); err != nil {
						return err
					}

					if result.HasErrors() {
						log.WithModule("cli").WarnContext(ctx, "Process graph failed quality checks",
							"score", result.Score, "errors", len(result.Failed(models.SeverityError)))

						return errFailedChecks
					}

					return nil
				},
			},
			{
				Name:      "passport",
				Aliases:   []string{"p"},
				Usage:     "Print the passport of a process graph",
				ArgsUsage: "<graph.json>",
				Flags: []cli.Flag{
					formatFlag("yaml", "markdown"),
				},
				Action: func(_ context.Context, command *cli.Command) error {
					data, err := readGraph(stdin, command.Args().First())
					if err != nil {
						return err
					}

					pass := passport.Project(data)

					if command.String("format") == "markdown" {
						doc, err := passport.RenderMarkdown(pass)
						if err != nil {
							return err
						}

						_, err = stdout.Write(doc)

						return err
					}

					return render(stdout, command.String("format"), pass)
				},
			},
		},
	}
}

// formatFlag accepts json, yaml and any extra formats the command supports.
func formatFlag(defaultFormat string, extra ...string) *cli.StringFlag {
	formats := append([]string{"json", "yaml"}, extra...)

	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (" + strings.Join(formats, ", ") + ")",
		Value:   defaultFormat,
		Validator: func(format string) error {
			if !slices.Contains(formats, format) {
				return fmt.Errorf("unsupported format '%s'", format)
			}

			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("input path is required")
	}

	if path == "-" {
		return io.ReadAll(stdin)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return raw, nil
}

func readGraph(stdin io.Reader, path string) (*models.ProcessData, error) {
	raw, err := readInput(stdin, path)
	if err != nil {
		return nil, err
	}

	var data models.ProcessData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode process graph: %w", err)
	}

	return &data, nil
}

// decodeAnswers keeps string answers only. Interview metadata such as the uploaded
// files list may hold arbitrary JSON and is skipped.
func decodeAnswers(raw []byte) (models.Answers, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	answers := make(models.Answers, len(fields))

	for key, value := range fields {
		if key == models.FilesKey {
			continue
		}

		var answer string
		if err := json.Unmarshal(value, &answer); err != nil {
			continue
		}

		answers[key] = answer
	}

	return answers, nil
}

func render(w io.Writer, format string, value any) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return encoder.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)

		return encoder.Encode(value)
	}
}
