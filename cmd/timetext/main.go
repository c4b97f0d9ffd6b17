package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/timetext/internal/observability"
	"github.com/hrygo/timetext/internal/profile"
	"github.com/hrygo/timetext/internal/version"
	"github.com/hrygo/timetext/plugin/timetext"
	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/value"
	"github.com/hrygo/timetext/server"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	v       *viper.Viper
	profile *profile.Profile
	engine  *timetext.Engine
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "timetext",
		Short:         "Render instants as human-readable text and parse English time expressions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	defaults := &profile.Profile{}
	defaults.FromEnv()
	setDefaults(a.v, defaults)
	a.v.SetEnvPrefix("timetext")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a YAML, JSON or TOML config file")
	flags.String("mode", defaults.Mode, `mode of server, can be "prod" or "dev"`)
	flags.String("locale", defaults.Locale, "output locale, e.g. en or zh")
	flags.String("fallback-locale", defaults.FallbackLocale, "locale used when the requested one has no table")
	flags.String("timezone", defaults.Timezone, "default IANA timezone for calendar-sensitive calls")
	flags.Bool("strict-timezone", defaults.StrictTimezone, "fail calendar-sensitive calls that have no timezone")
	flags.String("week-start", defaults.WeekStart, "first day of the week")
	flags.Int("max-input-length", defaults.MaxInputLength, "natural parse input limit in characters (0 keeps the default)")
	flags.Int("max-depth", defaults.MaxDepth, "natural parse clause limit (0 keeps the default)")
	flags.String("log-level", defaults.LogLevel, "debug, info, warn or error")
	flags.String("log-format", defaults.LogFormat, "text or json")
	for _, name := range []string{
		"config", "mode", "locale", "fallback-locale", "timezone", "strict-timezone", "week-start",
		"max-input-length", "max-depth", "log-level", "log-format",
	} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		a.formatCmd(),
		a.relativeCmd(),
		a.smartCmd(),
		a.parseCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

func setDefaults(v *viper.Viper, p *profile.Profile) {
	v.SetDefault("mode", p.Mode)
	v.SetDefault("addr", p.Addr)
	v.SetDefault("port", p.Port)
	v.SetDefault("locale", p.Locale)
	v.SetDefault("fallback-locale", p.FallbackLocale)
	v.SetDefault("timezone", p.Timezone)
	v.SetDefault("strict-timezone", p.StrictTimezone)
	v.SetDefault("week-start", p.WeekStart)
	v.SetDefault("cache-size", p.CacheSize)
	v.SetDefault("max-input-length", p.MaxInputLength)
	v.SetDefault("max-depth", p.MaxDepth)
	v.SetDefault("log-level", p.LogLevel)
	v.SetDefault("log-format", p.LogFormat)
	v.SetDefault("rate-limit", p.RateLimit)
	v.SetDefault("rate-burst", p.RateBurst)
}

// load reads the config file, validates the merged profile and builds the engine.
func (a *app) load(logOut io.Writer) error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", path)
		}
	}

	p := &profile.Profile{}
	if err := a.v.Unmarshal(p); err != nil {
		return errors.Wrap(err, "decode config")
	}
	p.Version = version.GetCurrentVersion(p.Mode)
	if err := p.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(logOut, p.LogLevel, p.LogFormat)
	if err != nil {
		return err
	}
	cfg, err := p.Config()
	if err != nil {
		return err
	}

	a.profile = p
	a.logger = logger
	a.engine = timetext.New(cfg, timetext.WithLogger(logger))
	return nil
}

// reference reads the optional --reference flag.
func reference(cmd *cobra.Command) (*value.TimeValue, error) {
	raw, _ := cmd.Flags().GetString("reference")
	if raw == "" {
		return nil, nil
	}
	v, err := value.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --reference")
	}
	return &v, nil
}

func parseValue(raw string) (value.TimeValue, error) {
	v, err := value.Parse(raw)
	if err != nil {
		return value.TimeValue{}, errors.Wrap(err, "invalid value")
	}
	return v, nil
}

func (a *app) formatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format VALUE [PATTERN]",
		Short: "Render VALUE (epoch ms or RFC 3339) with a pattern or --preset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[0])
			if err != nil {
				return err
			}
			preset, _ := cmd.Flags().GetString("preset")
			var text string
			switch {
			case preset != "":
				text, err = a.engine.FormatPreset(v, preset)
			case len(args) == 2:
				text, err = a.engine.Format(v, args[1])
			default:
				return errors.New("a pattern or --preset is required")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().String("preset", "", "named preset: iso, date, time, datetime, rfc2822 or a configured one")
	return cmd
}

func (a *app) relativeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relative VALUE",
		Short: "Phrase VALUE relative to now or --reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[0])
			if err != nil {
				return err
			}
			ref, err := reference(cmd)
			if err != nil {
				return err
			}
			text, err := a.engine.Relative(v, ref)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().String("reference", "", "reference instant (default now)")
	return cmd
}

func (a *app) smartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smart VALUE",
		Short: "Render VALUE by calendar proximity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[0])
			if err != nil {
				return err
			}
			ref, err := reference(cmd)
			if err != nil {
				return err
			}
			zone, _ := cmd.Flags().GetString("zone")
			text, err := a.engine.Smart(v, timetext.SmartOptions{Zone: zone, Reference: ref})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().String("zone", "", "IANA zone whose calendar days are compared")
	cmd.Flags().String("reference", "", "reference instant (default now)")
	return cmd
}

func (a *app) parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse TEXT...",
		Short: `Parse an expression such as "tomorrow at 3pm"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			ref, err := reference(cmd)
			if err != nil {
				return err
			}
			zone, _ := cmd.Flags().GetString("zone")
			opts := timetext.ParseOptions{Reference: ref, Zone: zone}
			out := cmd.OutOrStdout()

			if asRange, _ := cmd.Flags().GetBool("range"); asRange {
				r, err := a.engine.ParseRange(text, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n%s\n", r.Start, r.End)
				return nil
			}
			v, err := a.engine.MustParseNatural(text, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, v)
			return nil
		},
	}
	cmd.Flags().String("zone", "", "IANA zone used for calendar arithmetic")
	cmd.Flags().String("reference", "", "reference instant (default now)")
	cmd.Flags().Bool("range", false, "print the [start, end) range the expression covers")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.NewServer(a.profile, a.engine, a.logger)
			return s.Start(ctx)
		},
	}
	flags := cmd.Flags()
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.Float64("rate-limit", 0, "requests per second per client, 0 disables limiting")
	flags.Int("rate-burst", 20, "burst size per client")
	for _, name := range []string{"addr", "port", "rate-limit", "rate-burst"} {
		if err := a.v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		},
	}
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if e, ok := terrors.As(err); ok && e.Hint != "" {
			fmt.Fprintf(os.Stderr, "error: %v\nhint: %s\n", err, e.Hint)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
