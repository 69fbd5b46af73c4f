package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/metrics"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/repository/contract"
	"school-assist-be/pkg/dialog/domain"
	"school-assist-be/pkg/dialog/handoff"
	"school-assist-be/pkg/dialog/lock"
	"school-assist-be/pkg/dialog/response"
	"school-assist-be/pkg/dialog/slot"
	"school-assist-be/pkg/retrieval"
	"school-assist-be/pkg/store"
	"school-assist-be/pkg/voice"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	dialogModule = "DialogService"

	intentEmailHandoff = "email_handoff"
	statusSuccess      = "success"
)

var (
	ErrEmptyPrompt   = fmt.Errorf("%w: Please provide a question.", serverutils.ErrValidation)
	ErrUnknownDomain = errors.New("unknown assistant domain")
)

// Translator moves text between the session language and English
type Translator interface {
	ToEnglish(ctx context.Context, text, from string) (string, error)
	FromEnglish(ctx context.Context, text, to string) (string, error)
}

// Speaker renders replies as base64 audio with a per-session voice
type Speaker interface {
	Enabled() bool
	VoiceFor(voices map[string]string, languageName string) string
	Speak(ctx context.Context, text, voice string) (string, error)
}

// ResponseSynthesizer produces a reply and the next rolling summary; it never fails
type ResponseSynthesizer interface {
	Synthesize(ctx context.Context, role, utterance, summary, grounding string) (response.GenerationOutcome, response.Tier)
}

type IDialogService interface {
	HandleTurn(ctx context.Context, domainName, sessionID string, req dto.AskRequest) (*dto.AskResponse, error)
	EndSession(ctx context.Context, sessionID string) error
}

// DialogDependencies are the collaborators of one orchestrator instance
type DialogDependencies struct {
	Registry    *domain.Registry
	Sessions    contract.SessionRepository
	Gate        lock.Gate
	Gateway     retrieval.Gateway
	Synthesizer ResponseSynthesizer
	Handoff     *handoff.Machine
	Admissions  IAdmissionService
	Translator  Translator
	Speaker     Speaker
	TopK        int
	Metrics     *metrics.Metrics
	Logger      logger.ILogger
}

type dialogService struct {
	DialogDependencies
	tracer trace.Tracer
}

func NewDialogService(deps DialogDependencies) IDialogService {
	if deps.TopK <= 0 {
		deps.TopK = retrieval.DefaultTopK
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &dialogService{
		DialogDependencies: deps,
		tracer:             otel.Tracer("school-assist/dialog"),
	}
}

// HandleTurn runs one user turn end to end and produces exactly one response.
// Session mutations are made on a private copy and committed only when the
// turn completes without its context being cancelled.
func (s *dialogService) HandleTurn(ctx context.Context, domainName, sessionID string, req dto.AskRequest) (*dto.AskResponse, error) {
	adapter, ok := s.Registry.Get(domainName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, domainName)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	channel := req.Channel
	if channel == "" {
		channel = dto.ChannelWeb
	}

	ctx, span := s.tracer.Start(ctx, "dialog.turn", trace.WithAttributes(
		attribute.String("dialog.domain", adapter.Name),
		attribute.String("dialog.channel", channel),
	))
	defer span.End()

	release, err := s.Gate.Acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	defer release()

	sess, err := loadSession(ctx, s.Sessions, sessionID)
	if err != nil {
		return nil, err
	}
	s.applyRequest(sess, adapter, req)

	english := s.translateIn(ctx, prompt, sess.Language)

	var reply, intentName string
	if r, handled := s.runHandoff(ctx, sess, english); handled {
		reply, intentName = r, intentEmailHandoff
	} else {
		intentName = adapter.Resolve(english, sess.ActiveFlow)
		switch adapter.KindOf(intentName) {
		case domain.KindSlotFill:
			reply, err = s.fillSlots(ctx, sess, adapter, intentName, english, channel)
		case domain.KindRetrieve:
			reply, err = s.retrieveAndAnswer(ctx, sess, adapter, english)
		default:
			reply = s.chat(ctx, sess, adapter.Role, english, "")
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("dialog.intent", intentName))
	s.Metrics.ObserveTurn(adapter.Name, intentName)

	localized := s.translateOut(ctx, reply, sess.Language)
	audio := s.speak(ctx, sess, localized)

	if err := ctx.Err(); err != nil {
		s.Logger.Warn(dialogModule, "Turn cancelled, session left unchanged", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &dto.AskResponse{
		Status:             statusSuccess,
		Response:           localized,
		Audio:              audio,
		OldResponseSummary: sess.RollingSummary,
		ConversationState:  copySlots(sess.Slots),
	}, nil
}

// EndSession destroys the session once its transport is gone. It waits for
// any running turn of the session so that turn cannot recreate it.
func (s *dialogService) EndSession(ctx context.Context, sessionID string) error {
	release, err := s.Gate.Acquire(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer release()

	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.Logger.Info(dialogModule, "Session ended", map[string]interface{}{"session_id": sessionID})
	return nil
}

// applyRequest folds the per-request overrides into the session. The server
// copy of slots and summary is authoritative; request values only seed empty state.
func (s *dialogService) applyRequest(sess *store.Session, adapter *domain.Adapter, req dto.AskRequest) {
	if req.Language != "" {
		if lang, ok := voice.NormalizeLanguage(req.Language); ok {
			sess.Language = lang
		}
	}

	if len(sess.Slots) == 0 && adapter.SlotIntent != "" {
		seeded := false
		for _, field := range adapter.RequiredFields {
			if v := strings.TrimSpace(req.ConversationState[field]); v != "" {
				sess.Slots[field] = v
				seeded = true
			}
		}
		if seeded {
			sess.ActiveFlow = adapter.SlotIntent
		}
	}

	if sess.RollingSummary == "" {
		sess.RollingSummary = strings.TrimSpace(req.OldResponseSummary)
	}
}

func (s *dialogService) runHandoff(ctx context.Context, sess *store.Session, utterance string) (string, bool) {
	ctx, span := s.tracer.Start(ctx, "dialog.handoff")
	defer span.End()

	reply, handled := s.Handoff.Handle(ctx, sess, utterance)
	span.SetAttributes(
		attribute.Bool("handoff.handled", handled),
		attribute.String("handoff.state", string(sess.EmailFlow)),
	)
	return reply, handled
}

func (s *dialogService) fillSlots(ctx context.Context, sess *store.Session, adapter *domain.Adapter, intentName, utterance, channel string) (string, error) {
	if sess.ActiveFlow != intentName {
		if len(sess.Slots) > 0 {
			s.Logger.Info(dialogModule, "Abandoning previous slot flow", map[string]interface{}{
				"session_id": sess.ID,
				"previous":   sess.ActiveFlow,
			})
		}
		sess.ClearSlots()
		sess.ActiveFlow = intentName
	}

	// Only missing fields are extracted, so collected values are never overwritten
	for field, value := range slot.Extract(utterance, sess.MissingFields(adapter.RequiredFields)) {
		if value != "" {
			sess.Slots[field] = value
		}
	}

	if missing := sess.MissingFields(adapter.RequiredFields); len(missing) > 0 {
		return domain.IncompleteMessage(missing), nil
	}

	if _, err := s.Admissions.Submit(ctx, sess.ID, adapter.Name, channel, sess.Slots); err != nil {
		return "", err
	}

	reply := "Your request has been submitted."
	if adapter.SubmittedMessage != nil {
		reply = adapter.SubmittedMessage(sess.Slots)
	}
	sess.ClearSlots()
	return reply, nil
}

func (s *dialogService) retrieveAndAnswer(ctx context.Context, sess *store.Session, adapter *domain.Adapter, utterance string) (string, error) {
	rctx, span := s.tracer.Start(ctx, "dialog.retrieve", trace.WithAttributes(
		attribute.String("retrieval.corpus", adapter.CorpusName),
	))
	records, err := s.Gateway.Query(rctx, adapter.CorpusName, utterance, s.TopK)
	span.SetAttributes(attribute.Int("retrieval.hits", len(records)))
	span.End()
	if errors.Is(err, retrieval.ErrUnknownCorpus) {
		return "", fmt.Errorf("query %s: %w", adapter.CorpusName, err)
	}
	if err != nil {
		s.Logger.Warn(dialogModule, "Retrieval failed, answering as not found", map[string]interface{}{
			"corpus": adapter.CorpusName,
			"error":  err.Error(),
		})
		return adapter.NotFoundMessage, nil
	}

	raw := adapter.FormatRecords(records)
	if strings.TrimSpace(raw) == "" {
		return adapter.NotFoundMessage, nil
	}

	sess.LastGroundingPayload = raw
	return s.chat(ctx, sess, adapter.GroundingRole, utterance, adapter.Grounding(raw)), nil
}

// chat calls the synthesizer and carries the summary forward
func (s *dialogService) chat(ctx context.Context, sess *store.Session, role, utterance, grounding string) string {
	ctx, span := s.tracer.Start(ctx, "dialog.synthesize", trace.WithAttributes(
		attribute.String("synthesizer.role", role),
		attribute.Bool("synthesizer.grounded", grounding != ""),
	))
	defer span.End()

	start := time.Now()
	outcome, tier := s.Synthesizer.Synthesize(ctx, role, utterance, sess.RollingSummary, grounding)
	var callErr error
	if tier == response.TierFallback {
		callErr = errors.New(string(tier))
	}
	s.Metrics.ObserveCall("llm", start, callErr)
	span.SetAttributes(attribute.String("synthesizer.tier", string(tier)))

	if tier != response.TierFallback && strings.TrimSpace(outcome.UpdatedSummary) != "" {
		sess.RollingSummary = outcome.UpdatedSummary
	}
	return outcome.Reply
}

func (s *dialogService) translateIn(ctx context.Context, text, language string) string {
	if s.Translator == nil || voice.Code(language) == "en" {
		return text
	}
	ctx, span := s.tracer.Start(ctx, "dialog.translate_in")
	defer span.End()

	start := time.Now()
	out, err := s.Translator.ToEnglish(ctx, text, language)
	s.Metrics.ObserveCall("translate", start, err)
	if err != nil {
		s.Logger.Warn(dialogModule, "Translation to English failed, using original text", map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return text
	}
	return out
}

func (s *dialogService) translateOut(ctx context.Context, text, language string) string {
	if s.Translator == nil || voice.Code(language) == "en" {
		return text
	}
	ctx, span := s.tracer.Start(ctx, "dialog.translate_out")
	defer span.End()

	start := time.Now()
	out, err := s.Translator.FromEnglish(ctx, text, language)
	s.Metrics.ObserveCall("translate", start, err)
	if err != nil {
		s.Logger.Warn(dialogModule, "Translation from English failed, replying in English", map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return text
	}
	return out
}

// speak returns nil when TTS is unavailable or fails
func (s *dialogService) speak(ctx context.Context, sess *store.Session, text string) *string {
	if s.Speaker == nil || !s.Speaker.Enabled() {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "dialog.tts")
	defer span.End()

	voiceName := s.Speaker.VoiceFor(sess.Voices, sess.Language)
	start := time.Now()
	audio, err := s.Speaker.Speak(ctx, text, voiceName)
	s.Metrics.ObserveCall("tts", start, err)
	if err != nil {
		s.Logger.Warn(dialogModule, "Speech synthesis failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return &audio
}

func copySlots(slots map[string]string) map[string]string {
	out := make(map[string]string, len(slots))
	for k, v := range slots {
		out[k] = v
	}
	return out
}
