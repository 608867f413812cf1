package cmd

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var (
	chatPhone  string
	chatMemory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the onboarding conversation from the terminal",
	Long: `Starts an interactive session that feeds every line into the same engine the
WhatsApp webhook uses. Type /reset to start over and /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatPhone, "phone", "+6500000000", "sender phone of the conversation")
	chatCmd.Flags().BoolVar(&chatMemory, "memory", true, "keep sessions and catalog in memory")
	rootCmd.AddCommand(chatCmd)
}

// consoleSender prints outbound notifications to the terminal.
type consoleSender struct {
	out io.Writer
}

func (c consoleSender) SendMessage(_ context.Context, phone, text string) error {
	_, err := fmt.Fprintf(c.out, "\n📨 to %s:\n%s\n\n", phone, text)
	return err
}

func runChat(ctx context.Context, out io.Writer) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	// keep the terminal for the conversation
	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	a, err := wire(ctx, conf, lg, wireOptions{memory: chatMemory, sender: consoleSender{out: out}})
	if err != nil {
		return err
	}
	defer a.close()

	phone := chat.NormalizePhone(chatPhone)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Fprintf(out, "WhatsGrapp chat as %s. Say hi!\n\n", phone)
	for {
		input, err := line.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err = a.core.ResetSession(ctx, phone); err != nil {
				return err
			}
			fmt.Fprintln(out, "session reset")
			continue
		}

		reply, err := a.engine.ProcessMessage(ctx, phone, input)
		if err != nil {
			lg.Error("process message", sl.Err(err))
		}
		fmt.Fprintf(out, "\nbot> %s\n\n", reply)
	}
}
