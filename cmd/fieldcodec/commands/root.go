// Package commands implements the fieldcodec command-line client.
package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/listenupapp/fieldcodec/internal/config"
	"github.com/listenupapp/fieldcodec/internal/di/providers"
	"github.com/listenupapp/fieldcodec/internal/logger"
	"github.com/listenupapp/fieldcodec/internal/service"
	"github.com/listenupapp/fieldcodec/internal/store"
)

// app holds what a command needs once configuration is loaded.
type app struct {
	store    store.Store
	fields   *service.FieldService
	contacts *service.ContactService
	out      io.Writer
}

var (
	values config.Values
	cur    *app
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fieldcodec",
		Short:        "Inspect field codecs and manage contacts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd.Context(), values, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cur = a
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cur == nil {
				return nil
			}
			err := cur.store.Close()
			cur = nil
			return err
		},
	}

	fs := flag.NewFlagSet("fieldcodec", flag.ContinueOnError)
	values.Bind(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	root.AddCommand(fieldsCmd(), parseCmd(), normalizeCmd(), serializeCmd(), contactsCmd())
	return root
}

// open loads configuration and wires the store, schema and services.
// Logs go to stderr so command output stays machine-readable.
func open(ctx context.Context, v config.Values, out io.Writer) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	st, err := providers.OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}
	live, err := providers.BuildSchema(cfg.Schema, st, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &app{
		store:    st,
		fields:   service.NewFieldService(live, log.Logger),
		contacts: service.NewContactService(st, live, log.Logger),
		out:      out,
	}, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
