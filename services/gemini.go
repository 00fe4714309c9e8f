// services/gemini.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiOracle runs the streak-check reasoning on Gemini with native
// function calling. The conversation loop hands every function call to the
// broker and feeds the result back until the model stops calling tools.
type GeminiOracle struct {
	apiKey string
	model  string
}

func NewGeminiOracle(apiKey, model string) *GeminiOracle {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiOracle{apiKey: apiKey, model: model}
}

func brokerTools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "get_booking_history",
				Description: "Return recent court bookings as CSV. Pass member_id to restrict to one member, or leave it empty for everyone.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"member_id": {Type: genai.TypeString, Description: "Member id to filter by, empty for all members"},
						"days":      {Type: genai.TypeInteger, Description: "Lookback window in days, default 30"},
					},
				},
			},
			{
				Name:        "send_reminder",
				Description: "Send a WhatsApp reminder to one club member. Each member can be reminded at most once per run.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"member_id": {Type: genai.TypeString, Description: "Member id of the recipient"},
						"message":   {Type: genai.TypeString, Description: "Full personalized message body"},
					},
					Required: []string{"member_id", "message"},
				},
			},
		},
	}}
}

func (g *GeminiOracle) Run(ctx context.Context, instruction string, broker *ToolBroker) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.Tools = brokerTools()

	chat := model.StartChat()
	resp, err := chat.SendMessage(ctx, genai.Text(instruction))
	if err != nil {
		return "", fmt.Errorf("gemini send: %w", err)
	}

	for {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return responseText(resp), nil
		}

		var replies []genai.Part
		for _, fc := range calls {
			log.Printf("🔧 Oracle tool call: %s", fc.Name)
			out, err := g.invoke(ctx, broker, fc)
			if err != nil {
				// Budget exhaustion ends the whole interaction; the
				// run is reported as completed with errors upstream.
				return responseText(resp), err
			}
			replies = append(replies, genai.FunctionResponse{
				Name:     fc.Name,
				Response: map[string]any{"result": out},
			})
		}

		resp, err = chat.SendMessage(ctx, replies...)
		if err != nil {
			return "", fmt.Errorf("gemini send: %w", err)
		}
	}
}

func (g *GeminiOracle) invoke(ctx context.Context, broker *ToolBroker, fc genai.FunctionCall) (string, error) {
	switch fc.Name {
	case "get_booking_history":
		return broker.GetBookingHistory(ctx, argString(fc.Args, "member_id"), argInt(fc.Args, "days"))
	case "send_reminder":
		return broker.SendReminder(ctx, argString(fc.Args, "member_id"), argString(fc.Args, "message"))
	default:
		if errors.Is(broker.consume(), ErrToolBudget) {
			return "", ErrToolBudget
		}
		return fmt.Sprintf("Error: unknown tool %q.", fc.Name), nil
	}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if fc, ok := part.(genai.FunctionCall); ok {
				calls = append(calls, fc)
			}
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return sb.String()
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
