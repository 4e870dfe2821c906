package dialogue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglot-labs/interpreter/core/protocol"
	"github.com/polyglot-labs/interpreter/dialogue"
	"github.com/polyglot-labs/interpreter/session"
)

type completerFunc func(ctx context.Context, messages []protocol.Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	return f(ctx, messages)
}

// recordingCompleter captures the message list of every call and replays
// canned replies in order, repeating the last one.
type recordingCompleter struct {
	mu      sync.Mutex
	calls   [][]protocol.Message
	replies []string
	delay   time.Duration
}

func (c *recordingCompleter) Complete(_ context.Context, messages []protocol.Message) (string, error) {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make([]protocol.Message, len(messages))
	copy(copied, messages)
	c.calls = append(c.calls, copied)

	idx := len(c.calls) - 1
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	return c.replies[idx], nil
}

func newOrchestrator(c dialogue.Completer) *dialogue.Orchestrator {
	return dialogue.New(session.NewStore(), c, nil)
}

func createSession(t *testing.T, o *dialogue.Orchestrator) *session.Session {
	t.Helper()
	s, err := o.Create("ask the driver for directions", "en", "zh", "China")
	require.NoError(t, err)
	return s
}

func TestCreate_Validation(t *testing.T) {
	o := newOrchestrator(&recordingCompleter{replies: []string{"[USER] hi"}})

	_, err := o.Create("", "en", "zh", "")
	assert.Error(t, err)

	_, err = o.Create("objective", "", "zh", "")
	assert.Error(t, err)

	_, err = o.Create("objective", "en", "", "")
	assert.Error(t, err)
}

func TestSubmit_OpeningMove(t *testing.T) {
	completer := &recordingCompleter{replies: []string{"[TARGET] 你好，请问去哪里？"}}
	o := newOrchestrator(completer)
	s := createSession(t, o)

	result, err := o.Submit(context.Background(), s.ID(), "")
	require.NoError(t, err)

	// Exactly one new turn: the model opens from the stored objective
	// without a literal human utterance.
	require.Equal(t, 2, s.Len())
	assert.NotEqual(t, protocol.KindSystem, result.Turn.Kind)
	assert.NotEmpty(t, result.Turn.Content)
	assert.Equal(t, session.StatusOngoing, result.Status)

	// The completion call saw the SYSTEM turn only; the objective is not
	// duplicated as a user message.
	require.Len(t, completer.calls, 1)
	require.Len(t, completer.calls[0], 1)
	assert.Equal(t, protocol.RoleSystem, completer.calls[0][0].Role)
	assert.Contains(t, completer.calls[0][0].Content, "ask the driver for directions")
}

func TestSubmit_AppendsUserTurnBeforeCall(t *testing.T) {
	completer := &recordingCompleter{replies: []string{"[TARGET] 请带我去虹桥火车站"}}
	o := newOrchestrator(completer)
	s := createSession(t, o)

	result, err := o.Submit(context.Background(), s.ID(), "take me to Hongqiao station")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, protocol.KindUser, history[1].Kind)
	assert.Equal(t, protocol.OriginHuman, history[1].Origin)
	assert.Equal(t, "take me to Hongqiao station", history[1].Content)
	assert.Equal(t, protocol.KindTarget, result.Turn.Kind)

	require.Len(t, completer.calls, 1)
	require.Len(t, completer.calls[0], 2)
	assert.Equal(t, protocol.RoleUser, completer.calls[0][1].Role)
}

func TestSubmit_MalformedReplyYieldsCaution(t *testing.T) {
	completer := &recordingCompleter{replies: []string{"[TARGET] 你好[USER] hello"}}
	o := newOrchestrator(completer)
	s := createSession(t, o)

	before := s.Len()
	result, err := o.Submit(context.Background(), s.ID(), "")
	require.NoError(t, err)

	assert.Equal(t, protocol.KindCaution, result.Turn.Kind)
	assert.Equal(t, dialogue.SystemErrorNotice, result.Turn.Content)
	assert.Equal(t, session.StatusOngoing, result.Status)
	assert.Equal(t, before+1, s.Len(), "exactly one caution turn appended")
}

func TestSubmit_CompleterErrorYieldsCaution(t *testing.T) {
	o := newOrchestrator(completerFunc(func(context.Context, []protocol.Message) (string, error) {
		return "", errors.New("upstream quota exceeded")
	}))
	s := createSession(t, o)

	result, err := o.Submit(context.Background(), s.ID(), "hello")
	require.NoError(t, err, "upstream failures must not surface as submit errors")

	assert.Equal(t, protocol.KindCaution, result.Turn.Kind)
	assert.Equal(t, dialogue.SystemErrorNotice, result.Turn.Content)
	assert.Equal(t, session.StatusOngoing, result.Status)

	// The human's turn is still there: history stays consistent.
	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "hello", history[1].Content)
}

func TestSubmit_TimeoutYieldsCaution(t *testing.T) {
	o := dialogue.New(
		session.NewStore(),
		completerFunc(func(ctx context.Context, _ []protocol.Message) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}),
		&dialogue.Config{TimeoutSeconds: 1},
	)
	s := createSession(t, o)

	start := time.Now()
	result, err := o.Submit(context.Background(), s.ID(), "hello")
	require.NoError(t, err)

	assert.Equal(t, protocol.KindCaution, result.Turn.Kind)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must release the session promptly")

	// The dialogue slot was released: another submit proceeds.
	_, err = o.Submit(context.Background(), s.ID(), "still there?")
	require.NoError(t, err)
}

func TestSubmit_SummaryFulfills(t *testing.T) {
	completer := &recordingCompleter{replies: []string{
		"[SUMMARY] the driver agreed to the fastest route",
		"[USER] anything else?",
	}}
	o := newOrchestrator(completer)
	s := createSession(t, o)

	result, err := o.Submit(context.Background(), s.ID(), "thanks, that's all")
	require.NoError(t, err)
	assert.Equal(t, protocol.KindSummary, result.Turn.Kind)
	assert.Equal(t, session.StatusFulfilled, result.Status)

	// Follow-up submits still work and never revert the status.
	lenBefore := s.Len()
	result, err = o.Submit(context.Background(), s.ID(), "actually, one more thing")
	require.NoError(t, err)
	assert.Equal(t, session.StatusFulfilled, result.Status)
	assert.Equal(t, lenBefore+2, s.Len())
}

func TestSubmit_UnknownSession(t *testing.T) {
	o := newOrchestrator(&recordingCompleter{replies: []string{"[USER] hi"}})

	_, err := o.Submit(context.Background(), "no-such-id", "hello")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSubmit_ConcurrentCallsSerialize(t *testing.T) {
	completer := &recordingCompleter{
		replies: []string{"[TARGET] 好的", "[TARGET] 明白了"},
		delay:   20 * time.Millisecond,
	}
	o := newOrchestrator(completer)
	s := createSession(t, o)

	var wg sync.WaitGroup
	for _, msg := range []string{"first message", "second message"} {
		wg.Add(1)
		go func(msg string) {
			defer wg.Done()
			_, err := o.Submit(context.Background(), s.ID(), msg)
			assert.NoError(t, err)
		}(msg)
	}
	wg.Wait()

	// Both user turns and both replies landed, strictly alternating after
	// the SYSTEM turn.
	history := s.History()
	require.Len(t, history, 5)
	assert.Equal(t, protocol.KindSystem, history[0].Kind)
	for i, wantOrigin := range []protocol.Origin{
		protocol.OriginHuman, protocol.OriginModel,
		protocol.OriginHuman, protocol.OriginModel,
	} {
		assert.Equal(t, wantOrigin, history[i+1].Origin, "turn %d", i+1)
	}

	// The first call saw system + its own user turn; the second saw the
	// first exchange as well. Neither observed a partial history.
	require.Len(t, completer.calls, 2)
	lens := []int{len(completer.calls[0]), len(completer.calls[1])}
	assert.ElementsMatch(t, []int{2, 4}, lens)
}
