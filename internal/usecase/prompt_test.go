package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/domain"
)

func TestBuildPrompt_EmptyHistory(t *testing.T) {
	require.Equal(t, "こんちゃーす\nユーザー: Hello\nアシスタント: ", BuildPrompt(nil, "Hello"))
}

func TestBuildPrompt_RendersHistoryInOrder(t *testing.T) {
	history := []domain.Turn{
		{Role: "user", Content: "What is Go?"},
		{Role: "assistant", Content: "A programming language."},
		{Role: "user", Content: "Who made it?"},
		{Role: "assistant", Content: "Google."},
	}
	want := "こんちゃーす\n" +
		"ユーザー: What is Go?\n" +
		"アシスタント: A programming language.\n" +
		"ユーザー: Who made it?\n" +
		"アシスタント: Google.\n" +
		"ユーザー: Thanks\n" +
		"アシスタント: "
	require.Equal(t, want, BuildPrompt(history, "Thanks"))
}

func TestBuildPrompt_UnknownRoleUsesAssistantLabel(t *testing.T) {
	history := []domain.Turn{
		{Role: "system", Content: "be nice"},
		{Role: "USER", Content: "shouting"},
		{Role: "", Content: "blank"},
	}
	got := BuildPrompt(history, "hi")
	require.Contains(t, got, "アシスタント: be nice\n")
	require.Contains(t, got, "アシスタント: shouting\n")
	require.Contains(t, got, "アシスタント: blank\n")
}

func TestBuildPrompt_ContentIsVerbatim(t *testing.T) {
	history := []domain.Turn{{Role: "user", Content: "line1\nアシスタント: injected"}}
	got := BuildPrompt(history, "  spaced  ")
	require.Contains(t, got, "ユーザー: line1\nアシスタント: injected\n")
	require.Contains(t, got, "ユーザー:   spaced  \n")
}

func TestBuildPrompt_AlwaysEndsWithOpenAssistantLabel(t *testing.T) {
	for _, msg := range []string{"", "Hello", "multi\nline"} {
		got := BuildPrompt([]domain.Turn{{Role: "assistant", Content: "x"}}, msg)
		require.True(t, strings.HasSuffix(got, "\nアシスタント: "), "msg=%q", msg)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	history := []domain.Turn{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}}
	require.Equal(t, BuildPrompt(history, "c"), BuildPrompt(history, "c"))
}

func TestRoleLabel(t *testing.T) {
	require.Equal(t, promptUserLabel, roleLabel("user"))
	require.Equal(t, promptAssistantLabel, roleLabel("assistant"))
	require.Equal(t, promptAssistantLabel, roleLabel("tool"))
}

func TestPreview(t *testing.T) {
	require.Equal(t, "short", preview("short", 10))
	require.Equal(t, "こんち...", preview("こんちゃーす", 3))
}
