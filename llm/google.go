package llm

import (
	"context"

	"github.com/tripchat/tripplanner/graph/model"
	googleadapter "github.com/tripchat/tripplanner/graph/model/google"
)

// GoogleModel implements Model by delegating to graph/model/google.ChatModel.
type GoogleModel struct {
	chat *googleadapter.ChatModel
}

// NewGoogleModel creates a GoogleModel. An empty modelName falls back to
// the adapter's default (Gemini Flash).
func NewGoogleModel(apiKey, modelName string) *GoogleModel {
	return &GoogleModel{chat: googleadapter.NewChatModel(apiKey, modelName)}
}

// InvokeText implements Model.
func (m *GoogleModel) InvokeText(ctx context.Context, req Request) (string, error) {
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
