package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lox/weatherchat/internal/agent"
	"github.com/lox/weatherchat/internal/forecast"
	"github.com/lox/weatherchat/internal/models"
)

const goodbye = "👋 Goodbye! Stay weather-aware!"

// Runner produces the assistant answer for the conversation's latest user turn.
type Runner interface {
	Run(ctx context.Context, conv *agent.Conversation) (string, error)
}

type Options struct {
	Color bool
	Debug bool
}

// Session is an interactive read-answer loop over one conversation.
type Session struct {
	runner Runner
	conv   *agent.Conversation
	in     io.Reader
	out    io.Writer
	style  styler
	debug  bool
	logger *slog.Logger
}

func NewSession(runner Runner, conv *agent.Conversation, in io.Reader, out io.Writer, opts Options, logger *slog.Logger) *Session {
	return &Session{
		runner: runner,
		conv:   conv,
		in:     in,
		out:    out,
		style:  styler{color: opts.Color},
		debug:  opts.Debug,
		logger: logger.With("component", "chat"),
	}
}

// Run reads user lines until an exit word, end of input or ctx is cancelled.
// A turn already in progress is allowed to finish.
func (s *Session) Run(ctx context.Context) error {
	s.welcome()

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		// ReadString has no line length limit, unlike bufio.Scanner.
		r := bufio.NewReader(s.in)
		for {
			line, err := r.ReadString('\n')
			if err == nil || line != "" {
				select {
				case lines <- strings.TrimRight(line, "\r\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readErr <- err
				return
			}
		}
	}()

	for {
		// A line typed during an interrupted turn must not start another one.
		if ctx.Err() != nil {
			fmt.Fprintln(s.out, "\n\n"+s.style.bye(goodbye))
			return nil
		}

		s.prompt()

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out, "\n\n"+s.style.bye(goodbye))
			return nil
		case err := <-readErr:
			fmt.Fprintln(s.out, "\n\n"+s.style.bye(goodbye))
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		case line = <-lines:
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if isExit(input) {
			fmt.Fprintln(s.out, "\n"+s.style.bye(goodbye))
			return nil
		}

		s.thinking()
		answer, err := s.Turn(context.WithoutCancel(ctx), input)
		s.clearThinking()

		if err != nil {
			s.logger.Debug("turn failed", "error", err)
			fmt.Fprintln(s.out, s.style.err("❌ "+Message(err, s.debug)))
			continue
		}
		fmt.Fprintf(s.out, "%s: %s\n\n", s.style.bot("Weather"), answer)
	}
}

// Turn appends input, runs the agent and appends its answer. On failure the
// conversation is restored to its state before input.
func (s *Session) Turn(ctx context.Context, input string) (string, error) {
	mark := s.conv.Len()
	s.conv.Append(agent.UserText(input))

	answer, err := s.runner.Run(ctx, s.conv)
	if err != nil {
		s.conv.Truncate(mark)
		return "", err
	}

	s.conv.Append(agent.AssistantText(answer))
	return answer, nil
}

// ToolCallHook prints tool requests; set it as agent.Agent.OnToolCall in debug mode.
func (s *Session) ToolCallHook(name string, input json.RawMessage) {
	s.clearThinking()
	fmt.Fprintln(s.out, s.style.debug(fmt.Sprintf("Tool use: %s(%s)", name, input)))
	s.thinking()
}

// ToolDoneHook prints one line per forecast day; set it as agent.Agent.OnToolDone in debug mode.
func (s *Session) ToolDoneHook(name string, fc models.Forecast) {
	s.clearThinking()
	fmt.Fprintln(s.out, s.style.debug(fmt.Sprintf("%s result: %d days", name, len(fc.Daily))))
	for _, day := range fc.Daily {
		fmt.Fprintln(s.out, s.style.debug(dayLine(day)))
	}
	s.thinking()
}

func dayLine(day models.ForecastDay) string {
	c := forecast.Classify(day)
	line := fmt.Sprintf("  %s %s %-13s %5.1f..%5.1f°C  clouds %3.0f%%  uv %.1f",
		day.Date, c.Icon(), c, day.Temperature.Min, day.Temperature.Max, day.CloudCover, day.UVIndex)
	if day.Rain != nil {
		line += fmt.Sprintf("  rain %.1fmm", *day.Rain)
	}
	return line
}

func (s *Session) welcome() {
	fmt.Fprintln(s.out, s.style.title("🌤️  Welcome to your Weather Assistant"))
	fmt.Fprintln(s.out, s.style.rule(strings.Repeat("=", 50)))
	fmt.Fprintln(s.out, "Ask me anything about weather conditions and forecasts!")
	fmt.Fprintln(s.out, "Type 'exit', 'quit', or press Ctrl+C to leave.")
	fmt.Fprintln(s.out)
}

func (s *Session) prompt() {
	fmt.Fprint(s.out, s.style.user("You")+": ")
}

func (s *Session) thinking() {
	fmt.Fprint(s.out, s.style.pending("🤔 Thinking..."))
}

func (s *Session) clearThinking() {
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", 20)+"\r")
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
