// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/fallback"
	"github.com/niveshpath/backend/internal/mistral"
	"github.com/niveshpath/backend/internal/profile"
	"github.com/niveshpath/backend/internal/store"
)

// Completer is the model invocation surface the engine depends on.
type Completer interface {
	Complete(ctx context.Context, messages []mistral.Message) (*mistral.Completion, error)
}

// TurnStore is the persistence surface the engine depends on.
type TurnStore interface {
	GetProfile(ctx context.Context, userID string) (*profile.ProfileSnapshot, error)
	SaveTurn(ctx context.Context, t *store.Turn) (*store.Turn, error)
	RecentTurns(ctx context.Context, userID, conversationID string, limit int) ([]store.Turn, error)
}

// Answer is the result of one chatbot query.
type Answer struct {
	Text           string                      `json:"response"`
	SessionID      string                      `json:"sessionId"`
	ConversationID string                      `json:"conversationId"`
	ProfileStatus  profile.CompletenessVerdict `json:"profileStatus"`
	// Fallback is set when the model call failed and Text is canned.
	// ModelErr carries the categorized upstream error for status mapping.
	Fallback *fallback.Response `json:"fallback,omitempty"`
	ModelErr error              `json:"-"`
}

// turnContext is the snapshot stored with each persisted turn.
type turnContext struct {
	ProfileStatus   profile.CompletenessVerdict `json:"profileStatus"`
	Flags           *IntentFlags                `json:"intentFlags,omitempty"`
	Personalization *Personalization            `json:"personalization,omitempty"`
	FuturePlanOnly  bool                        `json:"isFuturePlanQuery,omitempty"`
	InvestmentOnly  bool                        `json:"isInvestmentQuery,omitempty"`
	ErrorType       fallback.ErrorType          `json:"errorType,omitempty"`
}

// Engine runs the full query pipeline: completeness check, intent
// classification, prompt synthesis, model invocation, post-processing and
// persistence.
type Engine struct {
	store     TurnStore
	completer Completer
	logger    *zap.Logger
}

// NewEngine wires the engine's dependencies.
func NewEngine(ts TurnStore, completer Completer, logger *zap.Logger) *Engine {
	return &Engine{store: ts, completer: completer, logger: logger}
}

// AnswerQuery answers one user query. An empty conversationID starts a new
// conversation. A non-nil Answer with ModelErr set means the model call
// failed and the text is localized fallback content; the turn is persisted
// either way.
func (e *Engine) AnswerQuery(ctx context.Context, userID, query, conversationID string) (*Answer, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	userProfile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	verdict := profile.Evaluate(userProfile)
	flags := Classify(query)

	e.logger.Debug("Query classified",
		zap.String("user_id", userID),
		zap.String("language", flags.Language),
		zap.Bool("future_plan", flags.FuturePlan),
		zap.Bool("investment", flags.Investment),
		zap.Int("completion_percentage", verdict.CompletionPercentage),
	)

	if text, tc, ok := e.incompleteProfileShortcut(query, flags, verdict); ok {
		turn, err := e.persistTurn(ctx, userID, conversationID, query, text, tc)
		if err != nil {
			return nil, err
		}
		return &Answer{
			Text:           text,
			SessionID:      turn.ID,
			ConversationID: conversationID,
			ProfileStatus:  verdict,
		}, nil
	}

	messages, pers := e.buildMessages(ctx, userID, conversationID, query, flags, verdict, userProfile)

	completion, err := e.completer.Complete(ctx, messages)
	if err != nil {
		return e.answerWithFallback(ctx, userID, conversationID, query, flags, verdict, err)
	}

	text := PostProcess(completion.Text)
	tc := turnContext{ProfileStatus: verdict, Flags: &flags, Personalization: &pers}
	turn, err := e.persistTurn(ctx, userID, conversationID, query, text, tc)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:           text,
		SessionID:      turn.ID,
		ConversationID: conversationID,
		ProfileStatus:  verdict,
	}, nil
}

// incompleteProfileShortcut returns a canned Hindi response for incomplete
// profiles: a general completion nudge for queries not about the profile,
// and intent-specific nudges for future-planning and investment queries.
func (e *Engine) incompleteProfileShortcut(query string, flags IntentFlags, verdict profile.CompletenessVerdict) (string, turnContext, bool) {
	if verdict.Complete {
		return "", turnContext{}, false
	}
	missing := strings.Join(verdict.MissingFields, ", ")

	if !strings.Contains(strings.ToLower(query), "profile") {
		text := fmt.Sprintf("आपकी प्रोफाइल अभी अधूरी है (%d%% पूर्ण)। बेहतर वित्तीय सलाह के लिए, कृपया अपनी प्रोफाइल में निम्नलिखित जानकारी जोड़ें: %s। क्या आप अभी अपनी प्रोफाइल अपडेट करना चाहेंगे?",
			verdict.CompletionPercentage, missing)
		return text, turnContext{ProfileStatus: verdict}, true
	}

	if flags.FuturePlan {
		text := fmt.Sprintf("आपने भविष्य की वित्तीय योजना के बारे में पूछा है, लेकिन आपकी प्रोफाइल अभी अधूरी है (%d%% पूर्ण)। व्यक्तिगत वित्तीय सलाह प्रदान करने के लिए, हमें आपकी प्रोफाइल में निम्नलिखित जानकारी की आवश्यकता है: %s। क्या आप अभी अपनी प्रोफाइल अपडेट करना चाहेंगे?",
			verdict.CompletionPercentage, missing)
		return text, turnContext{ProfileStatus: verdict, FuturePlanOnly: true}, true
	}

	if flags.Investment {
		text := fmt.Sprintf("आपने निवेश विकल्पों के बारे में पूछा है, लेकिन आपकी प्रोफाइल अभी अधूरी है (%d%% पूर्ण)। व्यक्तिगत निवेश सलाह प्रदान करने के लिए, हमें आपकी प्रोफाइल में निम्नलिखित जानकारी की आवश्यकता है: %s। क्या आप अभी अपनी प्रोफाइल अपडेट करना चाहेंगे?",
			verdict.CompletionPercentage, missing)
		return text, turnContext{ProfileStatus: verdict, InvestmentOnly: true}, true
	}

	return "", turnContext{}, false
}

// buildMessages assembles the prompt bundle: system prompt, up to five
// prior turns of the conversation, and the augmented query.
func (e *Engine) buildMessages(ctx context.Context, userID, conversationID, query string, flags IntentFlags, verdict profile.CompletenessVerdict, p *profile.ProfileSnapshot) ([]mistral.Message, Personalization) {
	messages := []mistral.Message{
		{Role: mistral.RoleSystem, Content: BuildSystemPrompt(verdict, flags, p)},
	}

	prior, err := e.store.RecentTurns(ctx, userID, conversationID, store.DefaultRecentTurns)
	if err != nil {
		// History is an enhancement; answer without it rather than fail.
		e.logger.Warn("Failed to load conversation history",
			zap.Error(err),
			zap.String("conversation_id", conversationID),
		)
	}
	for _, t := range prior {
		messages = append(messages,
			mistral.Message{Role: mistral.RoleUser, Content: t.Query},
			mistral.Message{Role: mistral.RoleAssistant, Content: t.Response},
		)
	}

	messages = append(messages, mistral.Message{
		Role:    mistral.RoleUser,
		Content: AugmentQuery(query, flags, verdict, p),
	})

	return messages, PersonalizationFrom(p)
}

// answerWithFallback builds the localized fallback for a failed model
// call, persists the turn with the error type recorded, and returns the
// fallback text with the upstream error attached.
func (e *Engine) answerWithFallback(ctx context.Context, userID, conversationID, query string, flags IntentFlags, verdict profile.CompletenessVerdict, modelErr error) (*Answer, error) {
	errType := classifyModelError(modelErr)
	lang := fallback.LangEnglish
	if flags.Language == LanguageHindi {
		lang = fallback.LangHindi
	}
	fb := fallback.Build(errType, query, lang)

	e.logger.Error("Model call failed, serving fallback",
		zap.Error(modelErr),
		zap.String("error_type", string(errType)),
		zap.String("language", lang),
	)

	tc := turnContext{ProfileStatus: verdict, Flags: &flags, ErrorType: errType}
	turn, err := e.persistTurn(ctx, userID, conversationID, query, fb.Text, tc)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:           fb.Text,
		SessionID:      turn.ID,
		ConversationID: conversationID,
		ProfileStatus:  verdict,
		Fallback:       &fb,
		ModelErr:       modelErr,
	}, nil
}

func (e *Engine) persistTurn(ctx context.Context, userID, conversationID, query, response string, tc turnContext) (*store.Turn, error) {
	contextJSON, err := json.Marshal(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode turn context: %w", err)
	}

	turn, err := e.store.SaveTurn(ctx, &store.Turn{
		UserID:         userID,
		ConversationID: conversationID,
		Query:          query,
		Response:       response,
		Context:        contextJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist turn: %w", err)
	}
	return turn, nil
}

func classifyModelError(err error) fallback.ErrorType {
	switch {
	case errors.Is(err, mistral.ErrRateLimited):
		return fallback.ErrorRateLimit
	case errors.Is(err, mistral.ErrAuth):
		return fallback.ErrorAuth
	case errors.Is(err, mistral.ErrTimeout):
		return fallback.ErrorTimeout
	case errors.Is(err, mistral.ErrServer):
		return fallback.ErrorServer
	case errors.Is(err, mistral.ErrMalformedResponse):
		return fallback.ErrorInvalidResponse
	default:
		return fallback.ErrorUnknown
	}
}
