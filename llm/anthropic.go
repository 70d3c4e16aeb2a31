package llm

import (
	"context"

	anthropicadapter "github.com/tripchat/tripplanner/graph/model/anthropic"
	"github.com/tripchat/tripplanner/graph/model"
)

// AnthropicModel implements Model by delegating to
// graph/model/anthropic.ChatModel, narrowing its multi-turn Chat contract
// down to the single-shot system+user InvokeText shape spec.md §6 names.
type AnthropicModel struct {
	chat *anthropicadapter.ChatModel
}

// NewAnthropicModel creates an AnthropicModel. An empty modelName falls
// back to the adapter's default (Claude Sonnet).
func NewAnthropicModel(apiKey, modelName string) *AnthropicModel {
	return &AnthropicModel{chat: anthropicadapter.NewChatModel(apiKey, modelName)}
}

// InvokeText implements Model.
func (m *AnthropicModel) InvokeText(ctx context.Context, req Request) (string, error) {
	messages := make([]model.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: req.System})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: compose(Request{User: req.User, Context: req.Context})})

	out, err := m.chat.Chat(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}
