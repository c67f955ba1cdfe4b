package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsmile-dental/concierge/backend/internal/config"
	chatModel "github.com/brightsmile-dental/concierge/backend/internal/model/chat"
	leadModel "github.com/brightsmile-dental/concierge/backend/internal/model/lead"
	aiService "github.com/brightsmile-dental/concierge/backend/internal/service/ai"
	chatService "github.com/brightsmile-dental/concierge/backend/internal/service/chat"
	leadService "github.com/brightsmile-dental/concierge/backend/internal/service/lead"
)

// stubChatModel fakes the provider stream.
type stubChatModel struct {
	newStream func() *schema.StreamReader[*schema.Message]
}

func (m *stubChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	return nil, errors.New("generate not expected in streaming tests")
}

func (m *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return m.newStream(), nil
}

func (m *stubChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

type recordingNotifier struct {
	events []leadModel.CaptureEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event leadModel.CaptureEvent) error {
	n.events = append(n.events, event)
	return nil
}

func fragmentStream(fragments ...string) func() *schema.StreamReader[*schema.Message] {
	return func() *schema.StreamReader[*schema.Message] {
		chunks := make([]*schema.Message, 0, len(fragments))
		for _, f := range fragments {
			chunks = append(chunks, schema.AssistantMessage(f, nil))
		}
		return schema.StreamReaderFromArray(chunks)
	}
}

func failingStream(fragments []string, failure error) func() *schema.StreamReader[*schema.Message] {
	return func() *schema.StreamReader[*schema.Message] {
		sr, sw := schema.Pipe[*schema.Message](len(fragments) + 1)
		go func() {
			defer sw.Close()
			for _, f := range fragments {
				sw.Send(schema.AssistantMessage(f, nil), nil)
			}
			sw.Send(nil, failure)
		}()
		return sr
	}
}

func newTestHandler(t *testing.T, stub *stubChatModel, notifier leadService.Notifier) (*Handler, *chatService.Service, string) {
	t.Helper()

	chatSvc := chatService.NewService()
	session, _, err := chatSvc.EnsureSession(context.Background(), "widget-1")
	require.NoError(t, err)

	aiSvc, err := aiService.NewService(context.Background(), stub, config.AIConfig{StreamResponse: true})
	require.NoError(t, err)

	leadSvc := leadService.NewService(nil, notifier)
	return New(aiSvc, chatSvc, leadSvc), chatSvc, session.ID
}

func TestHandleStreamRequestAccumulatesFragments(t *testing.T) {
	stub := &stubChatModel{newStream: fragmentStream("Of course", ", we'd love", " to help!")}
	notifier := &recordingNotifier{}
	handler, chatSvc, sessionID := newTestHandler(t, stub, notifier)

	ctx := context.Background()
	rec := httptest.NewRecorder()
	err := handler.HandleStreamRequest(ctx, rec, sessionID, "What are your hours?")
	require.NoError(t, err)

	messages, err := chatSvc.Transcript(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, chatModel.SenderUser, messages[1].Sender)
	assert.Equal(t, "What are your hours?", messages[1].Text)
	assert.Equal(t, chatModel.SenderBot, messages[2].Sender)
	assert.Equal(t, "Of course, we'd love to help!", messages[2].Text)

	assert.False(t, chatSvc.Sending(ctx, sessionID))
	assert.Empty(t, notifier.events, "no booking intent in the question")

	body := rec.Body.String()
	assert.Contains(t, body, `"event":"start"`)
	assert.Contains(t, body, `"event":"delta"`)
	assert.Contains(t, body, `"event":"end"`)
}

func TestHandleStreamRequestCapturesBookingLead(t *testing.T) {
	stub := &stubChatModel{newStream: fragmentStream("We'd be happy to see you Friday.")}
	notifier := &recordingNotifier{}
	handler, _, sessionID := newTestHandler(t, stub, notifier)

	rec := httptest.NewRecorder()
	err := handler.HandleStreamRequest(context.Background(), rec, sessionID, "Can I book an appointment for Friday?")
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, leadService.ChatInterest, notifier.events[0].Interest)
}

func TestHandleStreamRequestFailureKeepsPartialAndAppendsApology(t *testing.T) {
	stub := &stubChatModel{newStream: failingStream([]string{"Hel", "lo"}, errors.New("provider unavailable"))}
	notifier := &recordingNotifier{}
	handler, chatSvc, sessionID := newTestHandler(t, stub, notifier)

	ctx := context.Background()
	rec := httptest.NewRecorder()
	err := handler.HandleStreamRequest(ctx, rec, sessionID, "hello there")
	require.Error(t, err)

	messages, transcriptErr := chatSvc.Transcript(ctx, sessionID)
	require.NoError(t, transcriptErr)
	require.Len(t, messages, 4)
	assert.Equal(t, "Hello", messages[2].Text, "partial placeholder is kept, not rolled back")
	assert.Equal(t, chatModel.SenderBot, messages[3].Sender)
	assert.Equal(t, Apology, messages[3].Text)

	assert.False(t, chatSvc.Sending(ctx, sessionID))
	assert.Empty(t, notifier.events, "failed sends never capture leads")
	assert.Contains(t, rec.Body.String(), `"event":"error"`)
}

func TestHandleStreamRequestRejectsBlankMessage(t *testing.T) {
	stub := &stubChatModel{newStream: fragmentStream("unused")}
	handler, chatSvc, sessionID := newTestHandler(t, stub, &recordingNotifier{})

	ctx := context.Background()
	rec := httptest.NewRecorder()
	err := handler.HandleStreamRequest(ctx, rec, sessionID, "   ")
	require.ErrorIs(t, err, chatService.ErrEmptyMessage)

	messages, _ := chatSvc.Transcript(ctx, sessionID)
	assert.Len(t, messages, 1, "message list must stay unchanged")
	assert.Empty(t, rec.Body.String(), "no SSE output before the gate")
}

func TestHandleStreamRequestDropsSendWhileInFlight(t *testing.T) {
	stub := &stubChatModel{newStream: fragmentStream("unused")}
	handler, chatSvc, sessionID := newTestHandler(t, stub, &recordingNotifier{})

	ctx := context.Background()
	_, _, err := chatSvc.BeginSend(ctx, sessionID, "first message")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = handler.HandleStreamRequest(ctx, rec, sessionID, "second message")
	require.ErrorIs(t, err, chatService.ErrSendInFlight)

	messages, _ := chatSvc.Transcript(ctx, sessionID)
	assert.Len(t, messages, 3, "second send must not touch the list")
}

func TestHandleStreamRequestUnknownSession(t *testing.T) {
	stub := &stubChatModel{newStream: fragmentStream("unused")}
	handler, _, _ := newTestHandler(t, stub, &recordingNotifier{})

	rec := httptest.NewRecorder()
	err := handler.HandleStreamRequest(context.Background(), rec, "missing", "hello")
	require.ErrorIs(t, err, chatService.ErrSessionNotFound)
}
