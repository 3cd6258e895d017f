package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptoagent/internal/config"
	"cryptoagent/internal/svc"
)

var configFile = flag.String("f", "etc/cryptoagent.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	logx.MustSetup(cfg.Log)
	logx.DisableStat()

	sc := svc.MustNewServiceContext(*cfg)
	defer sc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Crypto agent ready. Type 'exit' or 'quit' to leave.")
	if err := repl(ctx, os.Stdin, os.Stdout, sc.Agent); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// repl answers one query per input line until exit, quit, EOF or ctx ends.
// Blank lines are ignored and a failed answer does not end the session.
func repl(ctx context.Context, in io.Reader, out io.Writer, a svc.Answerer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		answer, err := a.AnswerQuery(ctx, query)
		if err != nil {
			logx.WithContext(ctx).Errorf("agent: %v", err)
			fmt.Fprintln(out, "Agent: sorry, I could not generate an answer right now.")
		} else {
			fmt.Fprintf(out, "Agent: %s\n", answer)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
