package main

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind        string
	clientURL   string
	corsOrigins []string
	eventBurst  int
	eventRate   float64
	port        int
	prefix      string
	profile     bool
	sendBuffer  int
	tlsCert     string
	tlsKey      string
	verbose     bool
	version     bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.eventRate <= 0 {
		return fmt.Errorf("invalid event rate (must be greater than 0): %v", c.eventRate)
	}
	if c.eventBurst < 1 {
		return fmt.Errorf("invalid event burst (must be at least 1): %d", c.eventBurst)
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid send buffer (must be at least 1): %d", c.sendBuffer)
	}

	u, err := url.Parse(c.clientURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid client url (must be absolute, e.g. https://example.com): %q", c.clientURL)
	}
	c.clientURL = strings.TrimSuffix(c.clientURL, "/")

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// allowedOrigins is the client URL's origin plus any extra --cors-origin values.
func (c *Config) allowedOrigins() []string {
	origins := make([]string, 0, len(c.corsOrigins)+1)
	if u, err := url.Parse(c.clientURL); err == nil && u.Host != "" {
		origins = append(origins, u.Scheme+"://"+u.Host)
	}
	for _, o := range c.corsOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" && !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	return origins
}

// roomURL is the page on the web client that joins room code.
func (c *Config) roomURL(code string) string {
	return c.clientURL + "/room/" + code
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordswap",
		Short:         "Real-time server for a pass-the-word guessing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return Serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDSWAP_BIND)")
	fs.StringVar(&cfg.clientURL, "client-url", "http://localhost:5173", "base url of the web client, used for cors and share links (env: WORDSWAP_CLIENT_URL)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origin", nil, "additional origin allowed to connect, may be repeated (env: WORDSWAP_CORS_ORIGIN)")
	fs.IntVar(&cfg.eventBurst, "event-burst", 20, "events a connection may send in a burst (env: WORDSWAP_EVENT_BURST)")
	fs.Float64Var(&cfg.eventRate, "event-rate", 10, "sustained events per second allowed per connection (env: WORDSWAP_EVENT_RATE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WORDSWAP_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WORDSWAP_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WORDSWAP_PROFILE)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 32, "outbound messages buffered per connection before it is dropped (env: WORDSWAP_SEND_BUFFER)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WORDSWAP_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WORDSWAP_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WORDSWAP_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WORDSWAP_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordswap v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
