package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp openai.ChatCompletion
	err  error
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	return m.resp, m.err
}

func completionWith(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerateReply_Success(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: completionWith("We specialize in branding.")}, model: openai.ChatModelGPT4oMini}
	out, err := client.GenerateReply(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "We specialize in branding." {
		t.Errorf("unexpected reply: %q", out)
	}
}

func TestGenerateReply_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}}
	_, err := client.GenerateReply(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerateReply_NoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}}
	_, err := client.GenerateReply(context.Background(), "sys", "usr")
	if err != ErrNoChoicesReturned {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestGenerateReply_CapsLongReplies(t *testing.T) {
	long := strings.Repeat("This is a sentence. ", 60)
	client := &Client{chat: &mockChatService{resp: completionWith(long)}}
	out, err := client.GenerateReply(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) > MaxSpokenReplyLength {
		t.Errorf("reply length %d exceeds cap %d", len(out), MaxSpokenReplyLength)
	}
	if !strings.HasSuffix(out, ".") {
		t.Errorf("expected reply cut at a sentence boundary, got tail %q", out[len(out)-10:])
	}
}

func TestCapReply_NoSentenceBoundary(t *testing.T) {
	out := capReply(strings.Repeat("x", 600), MaxSpokenReplyLength)
	if len(out) > MaxSpokenReplyLength+3 {
		t.Errorf("capped reply too long: %d", len(out))
	}
	if !strings.HasSuffix(out, "...") {
		t.Error("expected ellipsis on hard cut")
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Error("expected client instance, got nil")
	}
}
