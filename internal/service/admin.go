package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

// AdminService must be built on the admin realm's client.
type AdminService struct {
	api API
}

func NewAdminService(adminAPI API) *AdminService {
	return &AdminService{api: adminAPI}
}

func (s *AdminService) Analytics(ctx context.Context) (*domain.Analytics, error) {
	var a domain.Analytics
	if err := s.api.Get(ctx, "/admin/analytics/", nil, &a); err != nil {
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	return &a, nil
}

func (s *AdminService) Chats(ctx context.Context) ([]domain.ChatSession, error) {
	var resp domain.ChatsResponse
	if err := s.api.Get(ctx, "/admin/chats/", nil, &resp); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return resp.Sessions, nil
}

// ChatSession returns the sessions matching sessionID, with their turns.
func (s *AdminService) ChatSession(ctx context.Context, sessionID string) ([]domain.ChatSession, error) {
	var resp domain.ChatsResponse
	if err := s.api.Get(ctx, "/admin/chats/", url.Values{"session_id": {sessionID}}, &resp); err != nil {
		return nil, fmt.Errorf("get chat session %s: %w", sessionID, err)
	}
	return resp.Sessions, nil
}
