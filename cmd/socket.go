package cmd

import (
	"context"
	"fmt"
	"net"

	"github.com/foomo/keel/service"
	"github.com/foomo/navserver/pkg/handler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewSocketCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:               "socket <url>",
		Short:             "Start socket server",
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

			// listen on socket
			ln, err := net.Listen("tcp", addressFlag(v))
			if err != nil {
				return fmt.Errorf("failed to listen on %q: %w", addressFlag(v), err)
			}

			handle := handler.NewSocket(l.Named("inst.handler"), r,
				handler.SocketWithReadTimeout(socketReadTimeoutFlag(v)),
				handler.SocketWithLinter(linter),
			)

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
				service.NewGoRoutine(l.Named("go.socket"), "socket", func(ctx context.Context, l *zap.Logger) error {
					l.Info("started listening", zap.String("address", ln.Addr().String()))
					return handle.Accept(ctx, ln)
				}),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v, ":8081")
	addSocketReadTimeoutFlag(flags, v)
	addPagesFlag(flags, v)
	addRepoFlags(flags, v)
	addServerFlags(flags, v)

	return cmd
}
