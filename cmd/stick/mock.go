package main

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eghojansu/stick"
	"github.com/eghojansu/stick/pkg/logger"
)

func newMockCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `mock "VERB /path [ajax|cli|sync]"`,
		Short: "Dispatch a simulated request and print the response",
		Example: `  stick mock "GET /hello/world"
  stick mock "POST /echo" --body 'ping' -H 'X-Trace: 1'
  stick mock "GET hello(name=bob) ajax" --include`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(v, logger.NewNope())
			if err != nil {
				return err
			}

			opts, err := mockOptions(cmd)
			if err != nil {
				return err
			}

			res, err := app.Mock(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if include, _ := cmd.Flags().GetBool("include"); include {
				fmt.Fprintf(out, "%d %s\n", res.Status(), http.StatusText(res.Status()))
				names := make([]string, 0, len(res.Header()))
				for name := range res.Header() {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "%s: %s\n", name, strings.Join(res.Header()[name], ", "))
				}
				fmt.Fprintln(out)
			}
			_, err = out.Write(res.Body())
			return err
		},
	}

	cmd.Flags().StringArrayP("header", "H", nil, `request header ("Name: value")`)
	cmd.Flags().StringArrayP("form", "f", nil, `form field ("name=value")`)
	cmd.Flags().String("body", "", "raw request body")
	cmd.Flags().BoolP("include", "i", false, "print status and headers")

	return cmd
}

func mockOptions(cmd *cobra.Command) ([]stick.MockOption, error) {
	var opts []stick.MockOption

	headers, _ := cmd.Flags().GetStringArray("header")
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header %q", h)
		}
		opts = append(opts, stick.WithMockHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}

	fields, _ := cmd.Flags().GetStringArray("form")
	if len(fields) > 0 {
		form := url.Values{}
		for _, f := range fields {
			name, value, _ := strings.Cut(f, "=")
			form.Add(name, value)
		}
		opts = append(opts, stick.WithMockForm(form))
	}

	if body, _ := cmd.Flags().GetString("body"); body != "" {
		opts = append(opts, stick.WithMockBody([]byte(body)))
	}
	return opts, nil
}
