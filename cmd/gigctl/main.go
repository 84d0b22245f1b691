// gigctl is a terminal client for the gigflow platform: login, the
// quiz-gated freelancer signup, and a live dashboard over the polling loop.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"gigflow/client"
	"gigflow/client/jobs"
	"gigflow/client/poller"
	"gigflow/client/quiz"
	"gigflow/client/session"
)

// Config is read from ~/.gigflow/config.yaml.
type Config struct {
	BaseURL     string `yaml:"baseUrl"`
	SessionFile string `yaml:"sessionFile"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gigctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: gigctl <login|signup|dashboard|logout> [args]")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return err
	}
	api := client.New(cfg.BaseURL, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "login":
		return login(ctx, api, args[1:])
	case "signup":
		return signup(ctx, api)
	case "dashboard":
		return dashboard(ctx, api, store, args[1:])
	case "logout":
		return logout(store, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func loadConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home dir: %w", err)
	}
	cfg := Config{
		BaseURL:     "http://localhost:8080",
		SessionFile: filepath.Join(home, ".gigflow", "sessions.json"),
	}

	data, err := os.ReadFile(filepath.Join(home, ".gigflow", "config.yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func login(ctx context.Context, api *client.Client, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: gigctl login <email> <password>")
	}
	sess, err := api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", sess.DisplayName, sess.Role)
	return nil
}

func logout(store session.Store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gigctl logout <freelancer|client|admin>")
	}
	role := session.Role(strings.ToUpper(args[0]))
	if err := store.Clear(role); err != nil {
		return err
	}
	fmt.Printf("cleared %s session\n", role)
	return nil
}

// signup walks the quiz-gated freelancer onboarding interactively.
func signup(ctx context.Context, api *client.Client) error {
	in := bufio.NewScanner(os.Stdin)
	w := quiz.NewWorkflow(api)

	path := prompt(in, "Path to resume PDF: ")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	if err := w.SubmitResume(ctx, filepath.Base(path), data); err != nil {
		return err
	}

	for i, q := range w.Quiz().Questions {
		fmt.Printf("\n%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Printf("   [%d] %s\n", j, opt)
		}
		var choice int
		if _, err := fmt.Sscanf(prompt(in, "Answer (-1 to skip): "), "%d", &choice); err != nil {
			choice = quiz.Unanswered
		}
		if err := w.SelectAnswer(i, choice); err != nil {
			return err
		}
	}

	passed, err := w.SubmitQuiz(ctx)
	if err != nil {
		return err
	}
	if !passed {
		fmt.Println("\nQuiz not passed. Upload a resume to try again with a fresh quiz.")
		return nil
	}

	name, email := w.Prefill()
	fmt.Println("\nQuiz passed! Complete your profile.")
	if v := prompt(in, fmt.Sprintf("Name [%s]: ", name)); v != "" {
		name = v
	}
	if v := prompt(in, fmt.Sprintf("Email [%s]: ", email)); v != "" {
		email = v
	}
	password := prompt(in, "Password: ")
	if err := w.CompleteProfile(ctx, name, email, password); err != nil {
		return err
	}
	fmt.Println("Registered. Log in with: gigctl login", email, "<password>")
	return nil
}

// dashboard runs the polling loop for one role until interrupted, printing
// stats whenever the list changes.
func dashboard(ctx context.Context, api *client.Client, store session.Store, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gigctl dashboard <client|freelancer>")
	}
	role := session.Role(strings.ToUpper(args[0]))

	sess, ok := store.Get(role)
	if !ok {
		return fmt.Errorf("no %s session, run gigctl login first", role)
	}
	model := jobs.NewModel(api, role, sess.IdentityID)

	p := poller.New(poller.Config{
		Sessions: store,
		Model:    model,
		Role:     role,
		OnAuthExpired: func() {
			fmt.Println("session expired, please log in again")
		},
		OnError: func(err error) {
			fmt.Println("refresh failed:", err)
		},
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})

	go printLoop(ctx, model)

	err := p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printLoop(ctx context.Context, model *jobs.Model) {
	var last jobs.Stats
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		stats := model.Stats()
		if first || stats != last {
			fmt.Printf("jobs: %d pending, %d active, %d completed; paid total %d\n",
				stats.Pending, stats.Active, stats.Completed, stats.PaidTotal)
			last = stats
			first = false
		}
		// Stats change at poll granularity; a coarse sleep is enough.
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}
