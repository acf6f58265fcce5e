package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robalobadob/scratcher/internal/codec"
	"github.com/robalobadob/scratcher/internal/httpserver"
	"github.com/robalobadob/scratcher/internal/share"
	"github.com/robalobadob/scratcher/internal/store"
	"github.com/robalobadob/scratcher/internal/words"
)

var errInvalidToken = errors.New("token does not decode to a message")

func newCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "scratcher",
		Short:         "Scratch cards that unlock a secret message one word at a time.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(cfg.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q", cfg.logLevel)
			}
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error (env: SCRATCHER_LOG_LEVEL)")
	bindEnv(v, cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(cfg, v), newEncodeCmd(), newDecodeCmd(), newQRCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("scratcher v{{.Version}}\n")

	return cmd
}

func newServeCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}
	registerServeFlags(cmd.Flags(), cfg)
	bindEnv(v, cmd.Flags())
	return cmd
}

func serve(cmd *cobra.Command, cfg *Config) error {
	ctx := cmd.Context()
	opts := cfg.storeOptions()
	st, err := store.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open %s store: %w", opts.Engine, err)
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}
	log.Info().Str("engine", opts.Engine).Msg("progress store ready")

	srv, err := httpserver.New(cfg.serverOptions(st))
	if err != nil {
		return err
	}
	log.Info().Str("version", releaseVersion).Msg("starting scratcher")
	return srv.Serve(ctx, cfg.addr())
}

func newEncodeCmd() *cobra.Command {
	var (
		base  string
		rules words.Rules
	)
	cmd := &cobra.Command{
		Use:   "encode <message...>",
		Short: "Print the link token for a message.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			if err := words.ValidateLink(msg, rules); err != nil {
				return err
			}
			token, err := codec.Encode(msg)
			if err != nil {
				return err
			}
			if base != "" {
				token = share.URL(base, token)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base-url", "", "print a full link under this origin")
	cmd.Flags().IntVar(&rules.MinWords, "min-words", words.DefaultMinWords, "minimum words in a message")
	cmd.Flags().IntVar(&rules.MaxLength, "max-length", words.DefaultMaxLength, "maximum message length in characters")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token>",
		Short: "Print the message behind a link token.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			if i := strings.LastIndex(token, "/"); i >= 0 {
				token = token[i+1:]
			}
			msg, ok := codec.Decode(token)
			if !ok || strings.TrimSpace(msg) == "" {
				return errInvalidToken
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
}

func newQRCmd() *cobra.Command {
	var (
		base string
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr <token>",
		Short: "Write a PNG QR code for a link.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			if !codec.IsValid(token) {
				return errInvalidToken
			}
			url := share.URL(base, token)
			if err := share.WriteQR(url, size, out); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s for %s\n", out, url)
			return err
		},
	}
	cmd.Flags().StringVar(&base, "base-url", "http://localhost:5175", "origin the link points at")
	cmd.Flags().StringVarP(&out, "out", "o", "scratcher-qr.png", "output PNG file")
	cmd.Flags().IntVar(&size, "size", share.QRSize, "image edge length in pixels")
	return cmd
}
