package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/fallback"
	"github.com/niveshpath/backend/internal/mistral"
	"github.com/niveshpath/backend/internal/profile"
	"github.com/niveshpath/backend/internal/store"
)

type fakeStore struct {
	profile     *profile.ProfileSnapshot
	profileErr  error
	prior       []store.Turn
	priorErr    error
	savedTurns  []*store.Turn
	saveTurnErr error
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*profile.ProfileSnapshot, error) {
	return f.profile, f.profileErr
}

func (f *fakeStore) SaveTurn(ctx context.Context, t *store.Turn) (*store.Turn, error) {
	if f.saveTurnErr != nil {
		return nil, f.saveTurnErr
	}
	t.ID = "turn-" + string(rune('a'+len(f.savedTurns)))
	f.savedTurns = append(f.savedTurns, t)
	return t, nil
}

func (f *fakeStore) RecentTurns(ctx context.Context, userID, conversationID string, limit int) ([]store.Turn, error) {
	return f.prior, f.priorErr
}

type fakeCompleter struct {
	text     string
	err      error
	messages []mistral.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []mistral.Message) (*mistral.Completion, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &mistral.Completion{Text: f.text}, nil
}

func newTestEngine(fs *fakeStore, fc *fakeCompleter) *Engine {
	return NewEngine(fs, fc, zap.NewNop())
}

func TestAnswerQuery_CompleteProfile(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot()}
	fc := &fakeCompleter{text: "Here is your answer."}
	engine := newTestEngine(fs, fc)

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "How should I invest?", "")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}

	if answer.Text != "Here is your answer." {
		t.Errorf("Expected model text, got %q", answer.Text)
	}
	if answer.ConversationID == "" {
		t.Error("Expected a generated conversation ID")
	}
	if answer.SessionID == "" {
		t.Error("Expected the persisted turn ID as session ID")
	}
	if !answer.ProfileStatus.Complete {
		t.Error("Expected complete profile status")
	}
	if answer.ModelErr != nil || answer.Fallback != nil {
		t.Error("Expected no fallback on success")
	}

	if len(fs.savedTurns) != 1 {
		t.Fatalf("Expected 1 persisted turn, got %d", len(fs.savedTurns))
	}
	var tc map[string]any
	if err := json.Unmarshal(fs.savedTurns[0].Context, &tc); err != nil {
		t.Fatalf("Turn context is not valid JSON: %v", err)
	}
	if tc["intentFlags"] == nil || tc["personalization"] == nil {
		t.Error("Expected intent flags and personalization recorded in turn context")
	}
}

func TestAnswerQuery_MessageAssembly(t *testing.T) {
	fs := &fakeStore{
		profile: testSnapshot(),
		prior: []store.Turn{
			{Query: "earlier question", Response: "earlier answer"},
			{Query: "second question", Response: "second answer"},
		},
	}
	fc := &fakeCompleter{text: "ok"}
	engine := newTestEngine(fs, fc)

	if _, err := engine.AnswerQuery(context.Background(), "user-1", "How should I invest?", "conv-1"); err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}

	// system + 2 prior turns (user+assistant each) + augmented query
	if len(fc.messages) != 6 {
		t.Fatalf("Expected 6 messages, got %d", len(fc.messages))
	}
	if fc.messages[0].Role != mistral.RoleSystem {
		t.Error("Expected system prompt first")
	}
	if fc.messages[1].Content != "earlier question" || fc.messages[2].Content != "earlier answer" {
		t.Error("Expected prior turns replayed in order")
	}
	last := fc.messages[len(fc.messages)-1]
	if last.Role != mistral.RoleUser || !strings.HasPrefix(last.Content, "How should I invest?") {
		t.Error("Expected the augmented query as the final user message")
	}
}

func TestAnswerQuery_HistoryFailureIsNonFatal(t *testing.T) {
	fs := &fakeStore{
		profile:  testSnapshot(),
		priorErr: errors.New("db locked"),
	}
	fc := &fakeCompleter{text: "ok"}
	engine := newTestEngine(fs, fc)

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "How should I invest?", "conv-1")
	if err != nil {
		t.Fatalf("Expected history failure to be non-fatal, got: %v", err)
	}
	if answer.Text != "ok" {
		t.Errorf("Expected the model answer, got %q", answer.Text)
	}
	// system + augmented query only
	if len(fc.messages) != 2 {
		t.Errorf("Expected 2 messages without history, got %d", len(fc.messages))
	}
}

func TestAnswerQuery_ProfileLoadFailure(t *testing.T) {
	fs := &fakeStore{profileErr: errors.New("db down")}
	engine := newTestEngine(fs, &fakeCompleter{text: "ok"})

	if _, err := engine.AnswerQuery(context.Background(), "user-1", "hello", ""); err == nil {
		t.Fatal("Expected error when profile load fails")
	}
}

func TestAnswerQuery_IncompleteProfileShortcut(t *testing.T) {
	incomplete := testSnapshot()
	incomplete.Goals = nil

	testCases := []struct {
		name         string
		query        string
		contains     string
		expectModel  bool
		contextCheck func(t *testing.T, tc map[string]any)
	}{
		{
			name:     "general query gets completion nudge",
			query:    "what is compounding",
			contains: "आपकी प्रोफाइल अभी अधूरी है (88% पूर्ण)",
		},
		{
			name:     "future plan query gets plan nudge",
			query:    "profile future plan advice please",
			contains: "आपने भविष्य की वित्तीय योजना के बारे में पूछा है",
			contextCheck: func(t *testing.T, tc map[string]any) {
				if tc["isFuturePlanQuery"] != true {
					t.Error("Expected future plan marker in turn context")
				}
			},
		},
		{
			name:     "investment query gets investment nudge",
			query:    "profile invest options",
			contains: "आपने निवेश विकल्पों के बारे में पूछा है",
			contextCheck: func(t *testing.T, tc map[string]any) {
				if tc["isInvestmentQuery"] != true {
					t.Error("Expected investment marker in turn context")
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeStore{profile: incomplete}
			fc := &fakeCompleter{text: "should not be used"}
			engine := newTestEngine(fs, fc)

			answer, err := engine.AnswerQuery(context.Background(), "user-1", tc.query, "")
			if err != nil {
				t.Fatalf("AnswerQuery failed: %v", err)
			}

			if !strings.Contains(answer.Text, tc.contains) {
				t.Errorf("Expected canned nudge containing %q, got %q", tc.contains, answer.Text)
			}
			if !strings.Contains(answer.Text, "financialGoals") {
				t.Error("Expected missing fields listed in the nudge")
			}
			if fc.messages != nil {
				t.Error("Expected no model call for incomplete-profile shortcut")
			}
			if len(fs.savedTurns) != 1 {
				t.Fatal("Expected the nudge turn to be persisted")
			}
			if tc.contextCheck != nil {
				var turnCtx map[string]any
				if err := json.Unmarshal(fs.savedTurns[0].Context, &turnCtx); err != nil {
					t.Fatalf("Turn context is not valid JSON: %v", err)
				}
				tc.contextCheck(t, turnCtx)
			}
		})
	}
}

func TestAnswerQuery_FuturePlanProceedsWhenProfileComplete(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot()}
	fc := &fakeCompleter{text: "planned"}
	engine := newTestEngine(fs, fc)

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "plan my future", "")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}
	if answer.Text != "planned" {
		t.Errorf("Expected model answer for complete profile, got %q", answer.Text)
	}
	if fc.messages == nil {
		t.Error("Expected the model to be called")
	}
}

func TestAnswerQuery_ModelFailureServesFallback(t *testing.T) {
	testCases := []struct {
		name          string
		modelErr      error
		expectedType  fallback.ErrorType
		expectedRetry int
	}{
		{
			name:          "rate limit",
			modelErr:      &mistral.RateLimitError{},
			expectedType:  fallback.ErrorRateLimit,
			expectedRetry: 60,
		},
		{
			name:         "auth",
			modelErr:     mistral.ErrAuth,
			expectedType: fallback.ErrorAuth,
		},
		{
			name:         "timeout",
			modelErr:     mistral.ErrTimeout,
			expectedType: fallback.ErrorTimeout,
		},
		{
			name:         "server",
			modelErr:     mistral.ErrServer,
			expectedType: fallback.ErrorServer,
		},
		{
			name:         "malformed response",
			modelErr:     mistral.ErrMalformedResponse,
			expectedType: fallback.ErrorInvalidResponse,
		},
		{
			name:         "unknown",
			modelErr:     errors.New("boom"),
			expectedType: fallback.ErrorUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeStore{profile: testSnapshot()}
			fc := &fakeCompleter{err: tc.modelErr}
			engine := newTestEngine(fs, fc)

			answer, err := engine.AnswerQuery(context.Background(), "user-1", "how to invest", "")
			if err != nil {
				t.Fatalf("Expected fallback answer, got error: %v", err)
			}

			if answer.ModelErr == nil {
				t.Fatal("Expected ModelErr set on fallback answer")
			}
			if answer.Fallback == nil {
				t.Fatal("Expected fallback payload")
			}
			if answer.Fallback.ErrorType != tc.expectedType {
				t.Errorf("Expected error type %s, got %s", tc.expectedType, answer.Fallback.ErrorType)
			}
			if answer.Fallback.RetryAfter != tc.expectedRetry {
				t.Errorf("Expected retry after %d, got %d", tc.expectedRetry, answer.Fallback.RetryAfter)
			}
			if answer.Text == "" || answer.Text != answer.Fallback.Text {
				t.Error("Expected the answer text to carry the fallback message")
			}

			// Failed calls are still persisted with the error type recorded.
			if len(fs.savedTurns) != 1 {
				t.Fatal("Expected the fallback turn to be persisted")
			}
			var turnCtx map[string]any
			if err := json.Unmarshal(fs.savedTurns[0].Context, &turnCtx); err != nil {
				t.Fatalf("Turn context is not valid JSON: %v", err)
			}
			if turnCtx["errorType"] != string(tc.expectedType) {
				t.Errorf("Expected error type %s in turn context, got %v", tc.expectedType, turnCtx["errorType"])
			}
		})
	}
}

func TestAnswerQuery_FallbackLanguageFollowsQuery(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot()}
	fc := &fakeCompleter{err: mistral.ErrServer}
	engine := newTestEngine(fs, fc)

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "निवेश कैसे करें", "")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}
	if !strings.Contains(answer.Text, "तकनीकी समस्या") {
		t.Errorf("Expected Hindi fallback text for Hindi query, got %q", answer.Text)
	}
}

func TestAnswerQuery_PersistFailure(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot(), saveTurnErr: errors.New("disk full")}
	engine := newTestEngine(fs, &fakeCompleter{text: "ok"})

	if _, err := engine.AnswerQuery(context.Background(), "user-1", "hello", ""); err == nil {
		t.Fatal("Expected error when persistence fails")
	}
}

func TestAnswerQuery_ReusesConversationID(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot()}
	engine := newTestEngine(fs, &fakeCompleter{text: "ok"})

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "hello", "conv-42")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}
	if answer.ConversationID != "conv-42" {
		t.Errorf("Expected conversation ID preserved, got %q", answer.ConversationID)
	}
	if fs.savedTurns[0].ConversationID != "conv-42" {
		t.Error("Expected persisted turn to carry the conversation ID")
	}
}

func TestPostProcessAppliedToModelOutput(t *testing.T) {
	fs := &fakeStore{profile: testSnapshot()}
	fc := &fakeCompleter{text: "  answer with padding \n\n\n\nand extra newlines  "}
	engine := newTestEngine(fs, fc)

	answer, err := engine.AnswerQuery(context.Background(), "user-1", "hello", "")
	if err != nil {
		t.Fatalf("AnswerQuery failed: %v", err)
	}
	if answer.Text != "answer with padding \n\nand extra newlines" {
		t.Errorf("Expected post-processed text, got %q", answer.Text)
	}
}
