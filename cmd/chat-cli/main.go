package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"ask-mark/internal/domain"
	"ask-mark/internal/widget"

	"github.com/spf13/cobra"
)

func main() {
	var (
		apiURL  string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:   "chat-cli",
		Short: "Talk to Ask Mark from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			w := widget.New(widget.NewHTTPClient(apiURL, timeout))
			return chatLoop(ctx, w, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.Flags().StringVar(&apiURL, "api-url", "http://localhost:3001", "base URL of the ask-mark server")
	root.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

const help = "Commands: /email <address>, /transcript <address> [name], /dismiss, /quit"

func chatLoop(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, widget.Header())
	fmt.Fprintln(out, widget.RenderHint(help))
	fmt.Fprintln(out)
	fmt.Fprint(out, widget.Welcome())

	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, w, line, out); quit {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			continue
		}

		// digits pick a starter question before the conversation begins
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(widget.Starters) && len(w.State().Messages) == 0 {
			line = widget.Starters[n-1]
			fmt.Fprintln(out, widget.RenderMessage(domain.Message{Role: domain.RoleUser, Content: line}))
		}

		w.SetInput(line)
		fmt.Fprintln(out, widget.RenderHint("Mark is thinking..."))
		if err := w.Submit(ctx, line); err != nil {
			fmt.Fprintln(out, widget.RenderError(w.State().Error))
			continue
		}

		st := w.State()
		fmt.Fprintln(out, widget.RenderMessage(st.Messages[len(st.Messages)-1]))
		if st.Email == widget.EmailShown {
			fmt.Fprintln(out, widget.RenderHint("Want this conversation in your inbox? /transcript you@example.com, or /dismiss"))
		}
	}
}

func runCommand(ctx context.Context, w *widget.Widget, line string, out io.Writer) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/dismiss":
		w.DismissEmail()
	case "/email":
		if len(fields) < 2 {
			fmt.Fprintln(out, widget.RenderError("usage: /email <address>"))
			return false
		}
		if err := w.SubmitEmail(ctx, fields[1]); err != nil {
			fmt.Fprintln(out, widget.RenderError(widget.ErrorText(err)))
			return false
		}
		fmt.Fprintln(out, "Thanks for signing up!")
	case "/transcript":
		if len(fields) < 2 {
			fmt.Fprintln(out, widget.RenderError("usage: /transcript <address> [name]"))
			return false
		}
		name := strings.Join(fields[2:], " ")
		if err := w.SendTranscript(ctx, fields[1], name); err != nil {
			fmt.Fprintln(out, widget.RenderError(widget.ErrorText(err)))
			return false
		}
		fmt.Fprintln(out, "Transcript sent! Check your inbox.")
	default:
		fmt.Fprintln(out, widget.RenderHint(help))
	}
	return false
}
