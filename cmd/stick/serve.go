package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eghojansu/stick"
	"github.com/eghojansu/stick/pkg/redis"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(v)

			checks := []stick.HealthOption{}
			runOpts := []stick.RunOption{
				stick.WithContext(cmd.Context()),
				stick.ShutdownTimeout(v.GetDuration("shutdown-timeout")),
			}

			client, err := openCacheClient(cmd.Context(), v.GetString("cache"))
			if err != nil {
				return err
			}
			if client != nil {
				checks = append(checks, stick.WithReadinessCheck("cache", redis.Healthcheck(client)))
				runOpts = append(runOpts, stick.ShutdownHook(redis.Shutdown(client)))
			}

			extra := []stick.Option{
				stick.WithHealthChecks(checks...),
				stick.WithMetrics(v.GetString("metrics")),
			}
			if dir := v.GetString("static"); dir != "" {
				extra = append(extra, stick.WithStaticFiles("/static/", os.DirFS(dir), "."))
			}
			if spec := v.GetString("purge"); spec != "" && v.GetString("cache") != "" {
				extra = append(extra, stick.WithCachePurge(spec))
			}

			app, err := newApp(v, log, extra...)
			if err != nil {
				return err
			}

			return app.Run(v.GetString("addr"), runOpts...)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("metrics", "/metrics", "metrics endpoint path")
	cmd.Flags().String("static", "", "directory served under /static/")
	cmd.Flags().String("purge", "@every 10m", "cron schedule for page cache purges")
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "graceful shutdown timeout")

	return cmd
}
