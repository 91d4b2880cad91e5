package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

type VoiceService struct {
	api API
}

func NewVoiceService(api API) *VoiceService {
	return &VoiceService{api: api}
}

// VoiceSession is one guided conversation with the support bot.
type VoiceSession struct {
	mu           sync.Mutex
	id           string
	step         string
	validAnswers []string
	transcript   []domain.ChatTurn
}

func (v *VoiceSession) ID() string {
	return v.id
}

func (v *VoiceSession) Step() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.step
}

func (v *VoiceSession) ValidAnswers() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.validAnswers...)
}

func (v *VoiceSession) Done() bool {
	return v.Step() == domain.VoiceStepCompleted
}

func (v *VoiceSession) Transcript() []domain.ChatTurn {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.ChatTurn(nil), v.transcript...)
}

// Start opens a session and returns it with the bot's greeting.
func (s *VoiceService) Start(ctx context.Context) (*VoiceSession, string, error) {
	var resp domain.VoiceStartResponse
	if err := s.api.Post(ctx, "/voice/start/", nil, &resp); err != nil {
		return nil, "", fmt.Errorf("start voice session: %w", err)
	}
	session := &VoiceSession{
		id:           resp.SessionID,
		step:         resp.NextStep,
		validAnswers: resp.ValidAnswers,
		transcript:   []domain.ChatTurn{{TurnNumber: 0, Step: resp.NextStep, BotText: resp.Message}},
	}
	return session, resp.Message, nil
}

// Resume continues a session whose id and step were kept elsewhere.
func (s *VoiceService) Resume(sessionID, step string) *VoiceSession {
	return &VoiceSession{id: sessionID, step: step}
}

// Process sends the user's utterance for the session's current step and
// advances the session. A reply without text leaves the session unchanged.
func (s *VoiceService) Process(ctx context.Context, session *VoiceSession, text string) (*domain.VoiceProcessResponse, error) {
	text = strings.TrimSpace(text)
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.step == domain.VoiceStepCompleted {
		return nil, ErrVoiceSessionEnded
	}

	req := domain.VoiceProcessRequest{SessionID: session.id, Text: text, CurrentStep: session.step}
	var resp domain.VoiceProcessResponse
	if err := s.api.Post(ctx, "/voice/process/", req, &resp); err != nil {
		return nil, fmt.Errorf("process voice input: %w", err)
	}
	if resp.Text == "" {
		return nil, ErrEmptyVoiceReply
	}

	session.transcript = append(session.transcript, domain.ChatTurn{
		TurnNumber: len(session.transcript),
		Step:       session.step,
		UserText:   text,
		BotText:    resp.Text,
	})
	session.step = resp.NextStep
	if resp.ValidAnswers != nil {
		session.validAnswers = resp.ValidAnswers
	}
	return &resp, nil
}
