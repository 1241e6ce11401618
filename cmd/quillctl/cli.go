package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/richochetclementine1315/Quill/core/interfaces"
	"github.com/richochetclementine1315/Quill/infrastructure/credentials"
	"github.com/richochetclementine1315/Quill/infrastructure/logger/structured"
	"github.com/richochetclementine1315/Quill/pkg/config"
	"github.com/richochetclementine1315/Quill/pkg/featureflags"
	"github.com/richochetclementine1315/Quill/quill"
)

// Options are the global flags shared by every command
type Options struct {
	BaseURL string        `long:"base-url" env:"QUILL_API_BASE_URL" description:"Backend API base URL"`
	Token   string        `long:"token" env:"QUILL_TOKEN" description:"Session cookie value from a previous login"`
	Timeout time.Duration `long:"timeout" description:"Per-attempt timeout (default from QUILL_REQUEST_TIMEOUT)"`
	Retries int           `long:"retries" default:"-1" description:"Retries for idempotent calls (default from QUILL_MAX_RETRIES)"`
	JSON    bool          `long:"json" description:"Print raw JSON"`
	Verbose bool          `short:"v" long:"verbose" description:"Log every attempt to stderr"`

	Probe  ProbeCommand  `command:"probe" description:"Wake the backend and report whether it answered"`
	Login  LoginCommand  `command:"login" description:"Sign in and print the session token"`
	Posts  PostsCommand  `command:"posts" description:"Read and write posts"`
	Upload UploadCommand `command:"upload" description:"Upload an image and print its URL"`

	out   io.Writer
	creds *credentials.Static
}

// newCLI builds the parser; command output goes to out
func newCLI(out io.Writer) (*flags.Parser, *Options) {
	opts := &Options{out: out}
	opts.Probe.root = opts
	opts.Login.root = opts
	opts.Upload.root = opts
	opts.Posts.List.root = opts
	opts.Posts.Get.root = opts
	opts.Posts.Mine.root = opts
	opts.Posts.Create.root = opts
	opts.Posts.Delete.root = opts

	parser := flags.NewParser(opts, flags.Default)
	parser.Name = "quillctl"
	return parser, opts
}

// settings merges the flags over the environment configuration
func (o *Options) settings() (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if o.BaseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(o.BaseURL, "/")
		if os.Getenv("QUILL_HEALTH_URL") == "" {
			cfg.API.HealthURL = cfg.API.BaseURL + "/health"
		}
	}
	if o.Timeout > 0 {
		cfg.API.RequestTimeout = o.Timeout
		cfg.API.ProbeTimeout = o.Timeout
	}
	if o.Retries >= 0 {
		cfg.API.MaxRetries = o.Retries
	}
	return cfg, nil
}

func (o *Options) logger() interfaces.Logger {
	if !o.Verbose {
		return structured.Quiet()
	}
	return structured.New(structured.Options{Level: "debug", Format: "text", Output: os.Stderr})
}

// client creates a client carrying the --token session
func (o *Options) client() (*quill.Client, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, err
	}
	o.creds = credentials.NewStatic(o.Token)
	return quill.NewClient(
		quill.WithConfig(cfg),
		quill.WithLogger(o.logger()),
		quill.WithCredentials(o.creds),
		quill.WithFlags(featureflags.NewStaticManager(map[featureflags.FeatureFlag]bool{
			featureflags.ProbeBeforeFirstCall: true,
		})),
	)
}

// withClient runs fn with a fresh client and closes it afterwards
func (o *Options) withClient(fn func(ctx context.Context, c *quill.Client) error) error {
	c, err := o.client()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(context.Background(), c)
}

// print writes v as JSON when --json is set, otherwise the text lines
func (o *Options) print(v interface{}, lines ...string) error {
	if o.JSON {
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(o.out, line); err != nil {
			return err
		}
	}
	return nil
}
