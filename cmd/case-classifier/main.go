package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nhle/case-classifier/internal/app"
	"github.com/nhle/case-classifier/internal/controller"
	"github.com/nhle/case-classifier/internal/credential"
	"github.com/nhle/case-classifier/internal/di"
	"github.com/nhle/case-classifier/internal/mailsource"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/store"
	"github.com/nhle/case-classifier/internal/ui/results"
)

// flags holds the command line options that are not config keys.
type flags struct {
	configPath     string
	file           string
	print          bool
	noHistory      bool
	setMailboxPass bool
	writeConfig    bool
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"base-url":  "service.base_url",
	"path":      "service.path",
	"timeout":   "service.timeout_sec",
	"log-file":  "logging.file",
	"log-level": "logging.level",
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("case-classifier", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVar(&f.configPath, "config", model.DefaultConfigPath(), "Path to config file")
	fs.String("base-url", "", "Classification service base URL")
	fs.String("path", "", "Classification endpoint path")
	fs.Int("timeout", 0, "Request timeout in seconds")
	fs.StringVar(&f.file, "file", "", "Prefill the email body from a text or .eml file")
	fs.BoolVar(&f.print, "print", false, "Classify once and print the result instead of starting the UI")
	fs.BoolVar(&f.noHistory, "no-history", false, "Do not record attempts in the local history")
	fs.String("log-file", "", "Log file path, or \"stderr\"")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&f.writeConfig, "write-config", false, "Write the effective configuration to the config path and exit")
	fs.BoolVar(&f.setMailboxPass, "set-mailbox-password", false, "Read the IMAP password from stdin and store it in the keyring")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.setMailboxPass {
		return setMailboxPassword(stdin, stdout, stderr)
	}

	cfg, err := loadConfig(fs, f)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if f.writeConfig {
		if err := model.SaveConfig(f.configPath, cfg); err != nil {
			fmt.Fprintf(stderr, "Failed to write configuration: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Configuration written to %s\n", f.configPath)
		return 0
	}

	body := ""
	switch {
	case f.file != "":
		body, err = mailsource.ReadFile(f.file)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read email: %v\n", err)
			return 1
		}
	case f.print:
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to read email from stdin: %v\n", err)
			return 1
		}
		body = string(data)
	}

	components, err := di.Build(cfg, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer components.Close()

	components.Controller.UpdateBody(body)

	if f.print {
		return printOnce(components.Controller, stdout, stderr)
	}

	var history store.Store
	if components.Store != nil {
		history = components.Store
	}

	root := app.New(app.Options{
		Config:     cfg,
		Controller: components.Controller,
		Store:      history,
		Mailbox:    app.MailboxOpener(cfg.Mailbox, components.Vault, components.Logger),
	})

	components.Logger.Info("starting UI", zap.String("endpoint", components.Client.Endpoint()))
	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		components.Logger.Error("UI exited with error", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file with env overrides, then applies any
// flags the user set.
func loadConfig(fs *pflag.FlagSet, f flags) (*model.AppConfig, error) {
	v := model.NewViper(f.configPath)
	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}
	if f.noHistory {
		v.Set("history.enabled", false)
	}
	return model.LoadConfig(v)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, cfgKey := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(cfgKey, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// printOnce submits the prefilled body and waits for the outcome.
func printOnce(ctrl *controller.Controller, stdout, stderr io.Writer) int {
	if cmd := ctrl.Submit(); cmd != nil {
		if msg, ok := cmd().(controller.ClassifiedMsg); ok {
			ctrl.Apply(msg)
		}
	}

	status := ctrl.Status()
	if _, message, ok := status.Failure(); ok {
		fmt.Fprintln(stderr, message)
		return 1
	}

	result, ok := status.Result()
	if !ok {
		fmt.Fprintln(stderr, "no result")
		return 1
	}
	if !result.IsSuccess() {
		fmt.Fprintf(stderr, "service returned status %q\n", result.Status)
		return 0
	}

	fmt.Fprintln(stdout, results.Table(result).Render())
	return 0
}

func setMailboxPassword(stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprint(stdout, "Mailbox password: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stderr, "Failed to read password: %v\n", err)
		return 1
	}

	vault, err := credential.Open(model.ConfigDir())
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open keyring: %v\n", err)
		return 1
	}
	if err := vault.SetMailboxPassword(strings.TrimRight(line, "\r\n")); err != nil {
		fmt.Fprintf(stderr, "Failed to store password: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "\nMailbox password stored.")
	return 0
}
