// Package narration transforme les rapports de drivers en un court texte exécutif
// via un modèle de chat. Seul le JSON des drivers est envoyé : jamais les prévisions.
package narration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"subscriber-drivers/pkg/config"
	"subscriber-drivers/pkg/models"
)

// ErrEmptyNarration est renvoyée quand le modèle ne produit aucun texte.
var ErrEmptyNarration = errors.New("narration: empty completion")

// Narrator produit un texte à partir d'un rapport de drivers.
type Narrator interface {
	NarrateSubscriptions(ctx context.Context, report models.SubscriptionReport) (string, error)
	NarrateAddChurn(ctx context.Context, report models.AddChurnReport) (string, error)
}

// chatClient est la partie du client go-openai utilisée ici.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAINarrator appelle l'API chat completions.
type OpenAINarrator struct {
	client      chatClient
	model       string
	temperature float32
}

// New construit un narrateur depuis la configuration (clé API incluse).
func New(cfg config.NarrationConfig) (*OpenAINarrator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("narration: %s is not set", config.EnvOpenAIKey)
	}
	slog.Info("narration client ready", "model", cfg.Model)
	return &OpenAINarrator{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// NarrateSubscriptions résume l'analyse premium / value-mix.
func (n *OpenAINarrator) NarrateSubscriptions(ctx context.Context, report models.SubscriptionReport) (string, error) {
	return n.narrate(ctx, subscriptionPrompt, report)
}

// NarrateAddChurn résume l'analyse d'alignement adds/churn.
func (n *OpenAINarrator) NarrateAddChurn(ctx context.Context, report models.AddChurnReport) (string, error) {
	return n.narrate(ctx, addChurnPrompt, report)
}

func (n *OpenAINarrator) narrate(ctx context.Context, system string, report any) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("narration: encode report: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       n.model,
		Temperature: n.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: "Driver output JSON:\n" + string(payload)},
		},
	}
	slog.Debug("narration request", "model", n.model, "bytes", len(payload))

	resp, err := n.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("narration: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyNarration
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyNarration
	}
	slog.Debug("narration received", "finish_reason", resp.Choices[0].FinishReason)
	return text, nil
}
