package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/questiontype"
	"github.com/abhisek/questgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		skills, closeSkills := skillStore(ctx, cfg.Cache, logger)
		defer closeSkills()

		p, err := provider(ctx, s.EventRepo(), logger)
		if err != nil {
			return err
		}

		handler := server.NewRouter(&server.Container{
			Pipeline:   coordinator(p, skills, s.RunRepo(), logger),
			Classifier: questiontype.NewClassifier(questiontype.NewSubjectRotator()),
			Skills:     skills,
			Logger:     logger,
		})

		logger.Info("serving", zap.String("addr", cfg.Server.Addr), zap.String("provider", p.ModelID()))
		return server.Serve(ctx, handler, server.Options{
			Addr:         cfg.Server.Addr,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
