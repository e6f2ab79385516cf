package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"storefront-theme/internal/variants"
	"storefront-theme/pkg/money"
)

type resolveOptions struct {
	options    []string
	jsonOutput bool
}

func newResolveCmd(root *rootFlags) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <product.json>",
		Short: "Resolve the variant matching a set of option values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.options, "option", "o", nil, "Selected option as <index>=<value>, e.g. 1=Red or option2=Large")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the variant as JSON")

	return cmd
}

func runResolve(cmd *cobra.Command, root *rootFlags, opts *resolveOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read product: %w", err)
	}
	product, err := variants.ParseProduct(data)
	if err != nil {
		return err
	}

	selected, err := parseOptionFlags(opts.options)
	if err != nil {
		return err
	}
	th, err := loadTheme(root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	variant := variants.Resolve(selected, product.Variants)
	if variant == nil {
		fmt.Fprintln(out, "no variant matches")
		return nil
	}

	if opts.jsonOutput {
		encoded, err := json.MarshalIndent(variant, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}

	state := "available"
	if !variant.Available {
		state = "sold out"
	}
	fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", variant.ID, variant.Title, money.Format(variant.Price, th.MoneyFormat), state)
	return nil
}

func parseOptionFlags(values []string) ([]variants.Option, error) {
	selected := make([]variants.Option, 0, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("option %q must look like <index>=<value>", raw)
		}
		index := variants.ParseOptionIndex(key)
		if index == 0 {
			return nil, fmt.Errorf("option %q has an invalid index", raw)
		}
		selected = append(selected, variants.Option{Index: index, Value: value})
	}
	return selected, nil
}

type moneyOptions struct {
	format string
}

func newMoneyCmd(root *rootFlags) *cobra.Command {
	opts := &moneyOptions{}

	cmd := &cobra.Command{
		Use:   "money <amount>",
		Short: "Format an amount in cents (or with a decimal point) with the shop money format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := opts.format
			if format == "" {
				th, err := loadTheme(root)
				if err != nil {
					return err
				}
				format = th.MoneyFormat
			}
			formatted, err := money.FormatString(args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatted)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Money format, defaults to the theme's")

	return cmd
}

func newTemplatesCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the theme's page templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := loadTheme(root)
			if err != nil {
				return err
			}
			names, err := th.TemplateNames()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", th.Metadata.Name, th.Slug)
			for _, name := range names {
				fmt.Fprintf(out, "  %s\n", strings.TrimSuffix(name, ".html"))
			}
			return nil
		},
	}
}

