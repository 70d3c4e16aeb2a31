package llm

import (
	"context"

	"github.com/tripchat/tripplanner/graph/model"
	openaiadapter "github.com/tripchat/tripplanner/graph/model/openai"
)

// OpenAIModel implements Model by delegating to graph/model/openai.ChatModel.
type OpenAIModel struct {
	chat *openaiadapter.ChatModel
}

// NewOpenAIModel creates an OpenAIModel. An empty modelName falls back to
// the adapter's default.
func NewOpenAIModel(apiKey, modelName string) *OpenAIModel {
	return &OpenAIModel{chat: openaiadapter.NewChatModel(apiKey, modelName)}
}

// InvokeText implements Model.
func (m *OpenAIModel) InvokeText(ctx context.Context, req Request) (string, error) {
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
