// Command hubctl is a terminal chat against the in-process pipeline. It reads
// the same environment as the API server but keeps its session in memory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/nikhilbhutani/cretahub/internal/assistant"
	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/policy"
	"github.com/nikhilbhutani/cretahub/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hubctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	roleFlag := fs.String("role", string(policy.SalesScoped), "role to ask as: privileged, sales or field")
	debug := fs.Bool("debug", true, "print the debug record after every answer")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Plain text logs on stderr keep the transcript on stdout readable.
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	role, err := policy.ParseRole(*roleFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	data, err := dataset.NewMemoryProvider(dataset.Seed())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	pipe, err := assistant.NewFromConfig(cfg, data, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New("hubctl", session.NewMemoryLog())
	if err := repl(ctx, pipe, sess, role, *debug, stdin, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func repl(ctx context.Context, pipe *assistant.Pipeline, sess *session.Session, role policy.Role, debug bool, in io.Reader, out io.Writer) error {
	pol, err := policy.For(role)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Creta Gas Knowledge Hub, role: %s. Type /history or /quit.\n", pol.Label)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			if err := history(ctx, sess, out); err != nil {
				return err
			}
			continue
		}

		reply, err := pipe.Ask(ctx, sess, role, line)
		if errors.Is(err, assistant.ErrQueryRejected) {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s\n  (%.2fs)\n", reply.Answer, reply.LatencySeconds)
		for _, f := range reply.Flags {
			fmt.Fprintf(out, "  flag: %s\n", f)
		}
		if debug {
			for _, l := range reply.Debug.Lines() {
				fmt.Fprintf(out, "  %s\n", l)
			}
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func history(ctx context.Context, sess *session.Session, out io.Writer) error {
	turns, err := sess.Turns(ctx)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Fprintln(out, "  (no turns yet)")
		return nil
	}
	for _, t := range turns {
		fmt.Fprintf(out, "  #%d [%s] %s\n     %s\n", t.Seq, t.Role, t.Query, t.Answer)
	}
	return nil
}
