package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

const (
	smsInstruction = "You write customer SMS messages for a water jar delivery business. " +
		"Every message is bilingual: English first, then Tamil. Keep it short, polite and SMS friendly. " +
		"Output only the final message."
	merchantInstruction = "You are the Aqua Manager advisor. Help the dealer manage orders, deliveries and collections."
	supportInstruction  = "You are the Aqua Manager support specialist. Draft professional replies to customer questions about orders and billing."
)

// JSON запрос generateContent
type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	ResponseSchema   any    `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// JSON ответ generateContent
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (resp generateResponse) text() string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}

var (
	predictionSchema = map[string]any{
		"type": "ARRAY",
		"items": map[string]any{
			"type": "OBJECT",
			"properties": map[string]any{
				"customerId": map[string]any{"type": "STRING"},
				"reason":     map[string]any{"type": "STRING"},
			},
			"required": []string{"customerId", "reason"},
		},
	}
	healthSchema = map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"summary":       map[string]any{"type": "STRING"},
			"actionableTip": map[string]any{"type": "STRING"},
		},
		"required": []string{"summary", "actionableTip"},
	}
)

type geminiClient struct {
	client   *resty.Client
	model    string
	validate *validator.Validate
}

// NewGeminiClient - клиент Gemini generateContent по REST
func NewGeminiClient(addr string, apiKey string, model string, timeout time.Duration) Assistant {
	client := resty.New().
		SetBaseURL(strings.TrimRight(addr, "/")).
		SetHeader("x-goog-api-key", apiKey).
		SetTimeout(timeout)

	return &geminiClient{
		client:   client,
		model:    model,
		validate: validator.New(),
	}
}

func (client *geminiClient) PredictRefills(ctx context.Context, req RefillRequest) ([]Prediction, error) {
	if err := validate(client.validate, req); err != nil {
		return nil, err
	}

	data, err := json.Marshal(req.Customers)
	if err != nil {
		return nil, err
	}
	prompt := "Based on this delivery history, identify which customers are likely to run out of water in the next 48 hours. " +
		"Return customerId and a short reason in English for each. DATA: " + string(data)

	text, err := client.generate(ctx, generateRequest{
		Contents:         []content{userText(prompt)},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json", ResponseSchema: predictionSchema},
	})
	if err != nil {
		return nil, err
	}

	var predictions []Prediction
	if err = json.Unmarshal([]byte(text), &predictions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	for _, p := range predictions {
		if err = client.validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReply, err)
		}
	}
	return predictions, nil
}

func (client *geminiClient) DraftSMS(ctx context.Context, req SMSRequest) (string, error) {
	if err := validate(client.validate, req); err != nil {
		return "", err
	}

	data, err := json.Marshal(req.Notification)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Generate an SMS of kind %s for: %s", req.Notification.Kind(), data)

	return client.generate(ctx, generateRequest{
		SystemInstruction: systemText(smsInstruction),
		Contents:          []content{userText(prompt)},
	})
}

func (client *geminiClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if err := validate(client.validate, req); err != nil {
		return "", err
	}

	instruction := merchantInstruction
	if req.Mode == ModeSupport {
		instruction = supportInstruction
	}

	data, err := json.Marshal(req.Metrics)
	if err != nil {
		return "", err
	}
	contents := []content{userText("CONTEXT: current business data " + string(data))}
	for _, m := range req.Messages {
		contents = append(contents, content{Role: m.Role, Parts: []part{{Text: m.Text}}})
	}

	return client.generate(ctx, generateRequest{
		SystemInstruction: systemText(instruction),
		Contents:          contents,
	})
}

func (client *geminiClient) AnalyzeHealth(ctx context.Context, req HealthRequest) (HealthReport, error) {
	if err := validate(client.validate, req); err != nil {
		return HealthReport{}, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return HealthReport{}, err
	}

	text, err := client.generate(ctx, generateRequest{
		Contents:         []content{userText("Analyze: " + string(data))},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json", ResponseSchema: healthSchema},
	})
	if err != nil {
		return HealthReport{}, err
	}

	var report HealthReport
	if err = json.Unmarshal([]byte(text), &report); err != nil {
		return HealthReport{}, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	if err = client.validate.Struct(report); err != nil {
		return HealthReport{}, fmt.Errorf("%w: %w", ErrInvalidReply, err)
	}
	return report, nil
}

// generate выполняет один запрос generateContent и возвращает текст первого кандидата
func (client *geminiClient) generate(ctx context.Context, body generateRequest) (string, error) {
	resp, err := client.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&generateResponse{}).
		Post("/v1beta/models/" + client.model + ":generateContent")
	if err != nil {
		return "", err
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		text := resp.Result().(*generateResponse).text()
		if text == "" {
			return "", ErrEmptyReply
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}
}

func userText(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}

func systemText(text string) *content {
	return &content{Parts: []part{{Text: text}}}
}
