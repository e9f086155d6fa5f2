package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/pkg/config"
	"github.com/goliatone/go-formguard/pkg/page"
)

var errInvalidForms = errors.New("formguard: one or more forms failed validation")

type cli struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "formguard",
		Short:         "Enhance server-rendered forms with word counters and submission gating",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")
	root.PersistentFlags().String("path", "", "current page path used to highlight navigation")
	root.PersistentFlags().Int("width", 1200, "viewport width in pixels")
	root.PersistentFlags().Bool("touch", false, "treat the viewport as a touch device")

	c.v.SetEnvPrefix("FORMGUARD")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(root.PersistentFlags())

	root.AddCommand(c.newRenderCommand())
	root.AddCommand(c.newCheckCommand())
	return root
}

func (c *cli) newRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print the enhanced document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}
			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			out, err := formguard.EnhanceHTML(cmd.Context(), in, cfg, c.pageOptions(logger)...)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("formguard: write output: %w", err)
				}
				logger.Info("document written", slog.String("path", output))
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file (stdout if empty)")
	return cmd
}

func (c *cli) newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate every gated form of a document",
		Long: "Enhances the document, applies --set id=value edits as typed input, " +
			"then reports the validity of every gated form.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}
			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			p, err := formguard.Enhance(cmd.Context(), in, cfg, c.pageOptions(logger)...)
			if err != nil {
				return err
			}
			defer p.CancelTimers()

			edits, _ := cmd.Flags().GetStringArray("set")
			if err := applyEdits(p, edits); err != nil {
				return err
			}
			return reportForms(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringArray("set", nil, "field edit as id=value (repeatable)")
	return cmd
}

func (c *cli) setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if path := c.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}
	if level := c.v.GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger := newLogger(cfg.LogLevel, c.v.GetString("log-format"), cmd.ErrOrStderr())
	logger.Debug("configuration loaded",
		slog.Int("word_limit_rules", len(cfg.WordLimits)),
		slog.Int("form_rules", len(cfg.Forms)),
	)
	return cfg, logger, nil
}

func (c *cli) pageOptions(logger *slog.Logger) []page.Option {
	return []page.Option{
		page.WithLogger(logger),
		page.WithCurrentPath(c.v.GetString("path")),
		page.WithViewport(page.Viewport{
			Width: c.v.GetInt("width"),
			Touch: c.v.GetBool("touch"),
		}),
	}
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("formguard: open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func applyEdits(p *formguard.Page, edits []string) error {
	for _, edit := range edits {
		id, value, ok := strings.Cut(edit, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return fmt.Errorf("formguard: invalid --set %q, want id=value", edit)
		}
		field := p.Document().ByID(strings.TrimSpace(id))
		if field == nil {
			return fmt.Errorf("formguard: no element with id %q", id)
		}
		p.Input(field, value)
	}
	return nil
}

func reportForms(w io.Writer, p *formguard.Page) error {
	forms := p.Forms()
	if len(forms) == 0 {
		_, err := fmt.Fprintln(w, "no gated forms")
		return err
	}
	failed := false
	for i, form := range forms {
		label := form.ID()
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		report := p.Check(form)
		if !report.Valid {
			failed = true
		}
		if _, err := fmt.Fprintf(w, "form %s: %s\n", label, report); err != nil {
			return err
		}
	}
	if failed {
		return errInvalidForms
	}
	return nil
}
