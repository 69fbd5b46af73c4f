package service

import (
	"context"
	"fmt"
	"strings"

	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/repository/contract"
	"school-assist-be/pkg/dialog/lock"
	"school-assist-be/pkg/store"
	"school-assist-be/pkg/voice"
)

type ILanguageService interface {
	SetLanguage(ctx context.Context, sessionID, language string) (string, error)
	GetLanguage(ctx context.Context, sessionID string) (string, error)
}

type languageService struct {
	sessions contract.SessionRepository
	gate     lock.Gate
}

func NewLanguageService(sessions contract.SessionRepository, gate lock.Gate) ILanguageService {
	return &languageService{sessions: sessions, gate: gate}
}

func (s *languageService) SetLanguage(ctx context.Context, sessionID, language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		return "", fmt.Errorf("%w: No language provided", serverutils.ErrValidation)
	}
	lang, ok := voice.NormalizeLanguage(language)
	if !ok {
		return "", fmt.Errorf("%w: Unsupported language. Allowed: %s",
			serverutils.ErrValidation, strings.Join(voice.AllowedLanguages, ", "))
	}

	release, err := s.gate.Acquire(ctx, sessionID)
	if err != nil {
		return "", err
	}
	defer release()

	sess, err := loadSession(ctx, s.sessions, sessionID)
	if err != nil {
		return "", err
	}
	sess.Language = lang
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return lang, nil
}

func (s *languageService) GetLanguage(ctx context.Context, sessionID string) (string, error) {
	sess, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if !found || sess.Language == "" {
		return store.DefaultLanguage, nil
	}
	return sess.Language, nil
}

// loadSession returns a private copy of the stored session, or a fresh one
func loadSession(ctx context.Context, sessions contract.SessionRepository, sessionID string) (*store.Session, error) {
	sess, found, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return store.NewSession(sessionID), nil
	}
	return sess, nil
}
