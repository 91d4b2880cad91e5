package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
	"github.com/THE-DEEPDAS/HTT/internal/service"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

// voiceStateKey holds the open support conversation between invocations.
const voiceStateKey = "voiceSession"

type voiceState struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
}

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Talk to the support assistant",
	Long: `Talk to the support assistant one reply at a time.

Example:
  storefront voice start
  storefront voice say "I want to return my order"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initApp(cmd.Context()); err != nil {
			return err
		}
		return requireLogin(cmd.Context(), gateway.RealmUser)
	},
}

var voiceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, greeting, err := rt.Voice.Start(ctx)
		if err != nil {
			return err
		}
		if err := saveVoiceState(ctx, voiceState{SessionID: sess.ID(), Step: sess.Step()}); err != nil {
			return err
		}

		p := newPrinter(cmd)
		p.Print("%s %s", p.Bold("assistant:"), greeting)
		printAnswers(p, sess.ValidAnswers())
		return nil
	},
}

var voiceSayCmd = &cobra.Command{
	Use:   "say <text...>",
	Short: "Reply to the assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		state, err := loadVoiceState(ctx)
		if err != nil {
			return err
		}
		if state == nil {
			return &output.CLIError{
				Summary:    "no conversation in progress",
				Suggestion: "run `storefront voice start`",
				ExitCode:   output.ExitUsageError,
			}
		}

		sess := rt.Voice.Resume(state.SessionID, state.Step)
		resp, err := rt.Voice.Process(ctx, sess, strings.Join(args, " "))
		if errors.Is(err, service.ErrVoiceSessionEnded) {
			_ = rt.Store.Delete(ctx, voiceStateKey)
		}
		if err != nil {
			return err
		}

		p := newPrinter(cmd)
		p.Print("%s %s", p.Bold("assistant:"), resp.Text)
		if sess.Done() {
			p.Print("%s", p.Dim("conversation ended"))
			return rt.Store.Delete(ctx, voiceStateKey)
		}
		printAnswers(p, sess.ValidAnswers())
		return saveVoiceState(ctx, voiceState{SessionID: sess.ID(), Step: sess.Step()})
	},
}

func init() {
	rootCmd.AddCommand(voiceCmd)
	voiceCmd.AddCommand(voiceStartCmd, voiceSayCmd)
}

func printAnswers(p *output.Printer, answers []string) {
	if len(answers) > 0 {
		p.Print("%s", p.Dim("answers: "+strings.Join(answers, ", ")))
	}
}

func loadVoiceState(ctx context.Context) (*voiceState, error) {
	raw, err := rt.Store.Get(ctx, voiceStateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load voice session: %w", err)
	}
	var s voiceState
	if err := json.Unmarshal(raw, &s); err != nil || s.SessionID == "" {
		return nil, nil
	}
	return &s, nil
}

func saveVoiceState(ctx context.Context, s voiceState) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := rt.Store.Set(ctx, voiceStateKey, raw); err != nil {
		return fmt.Errorf("save voice session: %w", err)
	}
	return nil
}
