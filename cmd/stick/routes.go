package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eghojansu/stick"
	"github.com/eghojansu/stick/pkg/logger"
	"github.com/eghojansu/stick/pkg/route"
)

func newRoutesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(v, logger.NewNope())
			if err != nil {
				return err
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			printRoutes(cmd.OutOrStdout(), app.Routes(), noColor)
			return nil
		},
	}
	cmd.Flags().Bool("no-color", false, "disable colored output")
	return cmd
}

var verbColors = map[string]color.Attribute{
	"GET":    color.FgGreen,
	"HEAD":   color.FgGreen,
	"POST":   color.FgYellow,
	"PUT":    color.FgBlue,
	"PATCH":  color.FgBlue,
	"DELETE": color.FgRed,
}

// printRoutes renders one aligned line per binding.
func printRoutes(w io.Writer, routes []stick.RouteInfo, noColor bool) {
	widths := [4]int{len("VERB"), len("PATTERN"), len("MODE"), len("ALIAS")}
	for _, r := range routes {
		widths[0] = max(widths[0], len(r.Verb))
		widths[1] = max(widths[1], len(r.Pattern))
		widths[2] = max(widths[2], len(r.Mode))
		widths[3] = max(widths[3], len(r.Alias))
	}

	header := color.New(color.Bold)
	dim := color.New(color.Faint)
	if noColor {
		header.DisableColor()
		dim.DisableColor()
	}

	header.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
		widths[0], "VERB", widths[1], "PATTERN", widths[2], "MODE", widths[3], "ALIAS", "HANDLER")

	for _, r := range routes {
		verb := color.New(verbColors[r.Verb])
		if noColor {
			verb.DisableColor()
		}

		handler := r.Handler
		if r.TTL > 0 {
			handler += " (ttl " + strconv.Itoa(r.TTL) + "s)"
		}
		mode := string(r.Mode)
		if r.Mode == route.ModeAll {
			mode = "-"
		}

		verb.Fprintf(w, "%-*s", widths[0], r.Verb)
		fmt.Fprintf(w, "  %-*s  ", widths[1], r.Pattern)
		dim.Fprintf(w, "%-*s", widths[2], mode)
		fmt.Fprintf(w, "  %-*s  %s\n", widths[3], r.Alias, handler)
	}
}
