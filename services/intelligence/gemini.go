package intelligence

import (
	"context"
	"errors"
	"strings"

	"movebot/models"
	"movebot/utils"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient adapts the Gemini SDK to the Client interface.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: c}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) Complete(ctx context.Context, model string, msgs []models.Message, opts CompleteOptions) (string, error) {
	gm := g.client.GenerativeModel(model)
	gm.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		gm.SetMaxOutputTokens(opts.MaxTokens)
	}

	// A leading system message becomes the system instruction rather
	// than a chat turn; Gemini history only takes user/model roles.
	if len(msgs) > 0 && msgs[0].Role == models.RoleSystem {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(msgs[0].Content)}}
		msgs = msgs[1:]
	}
	if len(msgs) == 0 {
		return "", errors.New("no messages to complete")
	}

	last := msgs[len(msgs)-1]
	history := make([]*genai.Content, 0, len(msgs)-1)
	for _, m := range msgs[:len(msgs)-1] {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	chat := gm.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		utils.GetLogger().Warn("gemini completion failed",
			zap.String("model", model), zap.Error(err))
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
