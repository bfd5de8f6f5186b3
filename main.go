/*
Copyright 2025 The hookpost authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v3"

	"github.com/KongZ/hookpost/config"
	"github.com/KongZ/hookpost/webhook"
)

const (
	flagVerbose  = "verbose"
	flagURL      = "url"
	flagID       = "id"
	flagToken    = "token"
	flagConfig   = "config"
	flagProfile  = "profile"
	flagWait     = "wait"
	flagTimeout  = "timeout"
	flagInsecure = "insecure-skip-tls-verify"

	flagContent     = "content"
	flagUsername    = "username"
	flagAvatarURL   = "avatar-url"
	flagTTS         = "tts"
	flagFile        = "file"
	flagEmbedTitle  = "embed-title"
	flagEmbedText   = "embed-text"
	flagEmbedColor  = "embed-color"
	flagName        = "name"
	flagAvatar      = "avatar"
	flagText        = "text"
	flagGitHubEvent = "event"
)

// maxFileSize guards against accidentally attaching huge files from disk.
// Discord rejects anything over its upload limit anyway.
const maxFileSize = 8 << 20

// main is the entry point of the application.
func main() {
	// Setup structured, human-friendly logging.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// A .env file is optional; flags and real environment win.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env")
	}

	app := createCliApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// createCliApp creates the CLI application using urfave/cli.
func createCliApp() *cli.Command {
	return &cli.Command{
		Name:        "hookpost",
		Usage:       "A CLI tool to manage and post to Discord webhooks",
		Description: `hookpost posts messages, Slack payloads and GitHub events to a Discord webhook, and can fetch, rename or delete the webhook itself.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "Print debugging messages. Multiple -v options increase the verbosity. The maximum is 2.",
				Value:   false,
				Sources: cli.EnvVars("VERBOSE"),
			},
			&cli.StringFlag{
				Name:    flagURL,
				Usage:   "Full webhook URL (https://discord.com/api/webhooks/{id}/{token})",
				Sources: cli.EnvVars("WEBHOOK_URL"),
			},
			&cli.StringFlag{
				Name:    flagID,
				Usage:   "Webhook id. Used together with --token as an alternative to --url",
				Sources: cli.EnvVars("WEBHOOK_ID"),
			},
			&cli.StringFlag{
				Name:    flagToken,
				Usage:   "Webhook token",
				Sources: cli.EnvVars("WEBHOOK_TOKEN"),
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Usage:   "Path to a YAML profile file",
				Sources: cli.EnvVars("HOOKPOST_CONFIG"),
			},
			&cli.StringFlag{
				Name:    flagProfile,
				Usage:   "Name of the profile to use from the config file",
				Sources: cli.EnvVars("HOOKPOST_PROFILE"),
			},
			&cli.BoolFlag{
				Name:  flagWait,
				Usage: "Block until the server confirms message delivery",
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "Per-request timeout, e.g. 10s",
			},
			&cli.BoolFlag{
				Name:  flagInsecure,
				Usage: "Skip TLS certificate verification",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				UsageText: "Fetch the webhook metadata.",
				Action:    runGet,
			},
			{
				Name:      "modify",
				UsageText: "Change the webhook name and/or avatar.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagName, Usage: "New webhook name"},
					&cli.StringFlag{Name: flagAvatar, Usage: "Path to a png/jpeg/gif avatar image"},
				},
				Action: runModify,
			},
			{
				Name:      "delete",
				UsageText: "Delete the webhook on the server.",
				Action:    runDelete,
			},
			{
				Name:      "send",
				UsageText: "hookpost send [options] [message text]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagContent, Usage: "Message text. Positional arguments are joined as an alternative"},
					&cli.StringFlag{Name: flagUsername, Usage: "Override the webhook display name"},
					&cli.StringFlag{Name: flagAvatarURL, Usage: "Override the webhook avatar URL"},
					&cli.BoolFlag{Name: flagTTS, Usage: "Send as a text-to-speech message"},
					&cli.StringSliceFlag{Name: flagFile, Usage: "Attach a file from disk. Repeatable, up to 10 files"},
					&cli.StringFlag{Name: flagEmbedTitle, Usage: "Embed title"},
					&cli.StringFlag{Name: flagEmbedText, Usage: "Embed description"},
					&cli.IntFlag{Name: flagEmbedColor, Usage: "Embed color as a decimal RGB value"},
				},
				Action: runSend,
			},
			{
				Name:      "slack",
				UsageText: "hookpost slack [--text message | raw JSON payload]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagText, Usage: "Slack message text. A positional raw JSON payload is the alternative"},
				},
				Action: runSlack,
			},
			{
				Name:      "github",
				UsageText: "hookpost github --event push '<raw JSON payload>'",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagGitHubEvent, Usage: "GitHub event name, e.g. push", Required: true},
				},
				Action: runGitHub,
			},
		},
	}
}

// newClient builds a webhook client from the global flags, optionally
// resolving a named profile first. Flags override profile values.
func newClient(cmd *cli.Command) (*webhook.Client, error) {
	setLogLevel(cmd)

	var opts webhook.Options
	if path := cmd.String(flagConfig); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		name := cmd.String(flagProfile)
		if name == "" {
			return nil, fmt.Errorf("--%s requires --%s", flagConfig, flagProfile)
		}
		profile, err := cfg.Profile(name)
		if err != nil {
			return nil, err
		}
		opts = profile.Options()
	}
	if url := cmd.String(flagURL); url != "" {
		opts.URL = url
	}
	if id := cmd.String(flagID); id != "" {
		opts.ID = id
	}
	if token := cmd.String(flagToken); token != "" {
		opts.Token = token
	}
	if cmd.Bool(flagWait) {
		opts.Wait = true
	}
	if timeout := cmd.Duration(flagTimeout); timeout > 0 {
		opts.Timeout = timeout
	}
	if cmd.Bool(flagInsecure) {
		opts.InsecureSkipTLSVerify = true
	}
	return webhook.New(opts)
}

// setLogLevel maps the repeatable verbose flag to zerolog global levels.
func setLogLevel(cmd *cli.Command) {
	switch cmd.Count(flagVerbose) {
	case 0:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 1:
		log.Info().Str("level", "debug").Msg("Set log level to [debug]")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		log.Info().Str("level", "trace").Msg("Set log level to [trace]")
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runGet(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	hook, err := client.Get(ctx)
	if err != nil {
		return err
	}
	return printJSON(hook)
}

func runModify(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	params := webhook.ModifyParams{Name: cmd.String(flagName)}
	if path := cmd.String(flagAvatar); path != "" {
		data, err := readAttachment(path)
		if err != nil {
			return err
		}
		params.Avatar = data
	}
	hook, err := client.Modify(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(hook)
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	if err := client.Delete(ctx); err != nil {
		return err
	}
	log.Info().Str("id", client.ID()).Msg("Webhook deleted")
	return nil
}

func runSend(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	msg := webhook.Message{
		Content:   cmd.String(flagContent),
		Username:  cmd.String(flagUsername),
		AvatarURL: cmd.String(flagAvatarURL),
		TTS:       cmd.Bool(flagTTS),
	}
	if msg.Content == "" {
		msg.Content = strings.Join(cmd.Args().Slice(), " ")
	}
	if cmd.String(flagEmbedTitle) != "" || cmd.String(flagEmbedText) != "" {
		embed := webhook.NewEmbed().
			SetTitle(cmd.String(flagEmbedTitle)).
			SetDescription(cmd.String(flagEmbedText)).
			SetColor(int(cmd.Int(flagEmbedColor)))
		msg.Embeds = []webhook.Embed{*embed}
	}
	for _, path := range cmd.StringSlice(flagFile) {
		data, err := readAttachment(path)
		if err != nil {
			return err
		}
		msg.Files = append(msg.Files, webhook.File{Name: filepath.Base(path), Data: data})
	}

	resp, err := client.Execute(ctx, msg)
	if err != nil {
		return err
	}
	if resp == nil {
		log.Info().Msg("Message posted")
		return nil
	}
	return printJSON(resp)
}

func runSlack(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	if text := cmd.String(flagText); text != "" {
		return client.ExecuteSlack(ctx, &slack.WebhookMessage{Text: text})
	}
	payload := strings.Join(cmd.Args().Slice(), " ")
	if payload == "" {
		return fmt.Errorf("either --%s or a raw JSON payload is required", flagText)
	}
	return client.ExecuteSlackRaw(ctx, payload)
}

func runGitHub(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	payload := strings.Join(cmd.Args().Slice(), " ")
	return client.ExecuteGitHub(ctx, webhook.GitHubParams{
		JSON:  payload,
		Event: cmd.String(flagGitHubEvent),
	})
}

// readAttachment loads a file from disk, refusing anything larger than the
// upload limit.
func readAttachment(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, above the %d byte upload limit", path, info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		return nil, err
	}
	return data, nil
}
