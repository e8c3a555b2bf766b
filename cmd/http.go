package cmd

import (
	"context"
	"errors"

	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/foomo/navserver/pkg/handler"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func NewHTTPCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:               "http <url>",
		Short:             "Start http server",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: urlArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := newServer(v)
			l := svr.Logger()

			r, history, err := newRepo(cmd.Context(), v, l, args[0])
			if err != nil {
				return err
			}
			linter, closeLinter, err := newLinter(cmd.Context(), v, l.Named("inst.lint"))
			if err != nil {
				return err
			}

			addRepoHealthzers(svr, r)
			svr.AddClosers(func(ctx context.Context) error {
				return history.Close()
			}, func(ctx context.Context) error {
				return closeLinter()
			})

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.repo"), "repo", func(ctx context.Context, l *zap.Logger) error {
					return r.Start(ctx)
				}),
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), r,
						handler.WithBasePath(basePathFlag(v)),
						handler.WithLinter(linter),
					),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v, ":8080")
	addBasePathFlag(flags, v)
	addGzipLevelFlag(flags, v)
	addPagesFlag(flags, v)
	addRepoFlags(flags, v)
	addServerFlags(flags, v)

	return cmd
}

func newServer(v *viper.Viper) *keel.Server {
	return keel.NewServer(
		keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
		keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
		keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
		keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
		keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
		keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
	)
}

// addRepoHealthzers reports ready once a snapshot is loaded or restored
func addRepoHealthzers(svr *keel.Server, r *repo.Repo) {
	isLoadedHealtherFn := healthz.NewHealthzerFn(func(ctx context.Context) error {
		if !r.Loaded() {
			return errors.New("repo not loaded yet")
		}
		return nil
	})
	svr.AddStartupHealthzers(isLoadedHealtherFn)
	svr.AddReadinessHealthzers(isLoadedHealtherFn)
}

func addRepoFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addSourceFormatFlag(flags, v)
	addMaxDepthFlag(flags, v)
	addUniqueTargetsFlag(flags, v)
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addHistoryDirFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)
}

func addServerFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
}

func urlArgCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var comps []string
	if len(args) == 0 {
		comps = cobra.AppendActiveHelp(comps, "You must specify the URL of the navigation source")
	} else {
		comps = cobra.AppendActiveHelp(comps, "This command does not take any more arguments")
	}
	return comps, cobra.ShellCompDirectiveNoFileComp
}
