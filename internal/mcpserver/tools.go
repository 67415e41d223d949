package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

var tracer = otel.Tracer("personaswap-mcp")

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_personas",
			Description: "List the available personas with a description and an example transformation for each.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "transform_message",
			Description: "Rewrite a message in the voice of a persona. Accepts names and aliases such as shakespeare, bard, yoda, musk, elon, sherlock or holmes.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"message": map[string]any{
						"type":        "string",
						"description": "Text to transform",
					},
					"persona": map[string]any{
						"type":        "string",
						"description": "Persona name or alias",
					},
				},
				Required: []string{"message", "persona"},
			},
		},
		{
			Name:        "get_history",
			Description: "List recent transformations, newest first.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 10)",
						"default":     history.DefaultLimit,
					},
				},
			},
		},
	}
}

// Handlers contains tool handler implementations.
type Handlers struct {
	svc *transformer.Service
	log *slog.Logger
}

// NewHandlers creates tool handlers.
func NewHandlers(svc *transformer.Service, logger *slog.Logger) *Handlers {
	return &Handlers{svc: svc, log: logger}
}

// HandleListPersonas returns persona metadata plus aliases.
func (h *Handlers) HandleListPersonas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, span := tracer.Start(ctx, "tool.list_personas")
	defer span.End()

	reg := h.svc.Registry()
	aliases := reg.Aliases()
	infos := reg.List()
	personas := make([]map[string]any, 0, len(infos))
	for i, key := range reg.Keys() {
		personas = append(personas, map[string]any{
			"key":         key,
			"aliases":     aliases[key],
			"name":        infos[i].Name,
			"description": infos[i].Description,
			"examples":    infos[i].Examples,
		})
	}
	span.SetAttributes(attribute.Int("result_count", len(personas)))

	return jsonResult(map[string]any{
		"personas": personas,
		"count":    len(personas),
	})
}

// HandleTransformMessage runs one transformation.
func (h *Handlers) HandleTransformMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.transform_message")
	defer span.End()

	message := mcp.ParseString(req, "message", "")
	key := mcp.ParseString(req, "persona", "")
	span.SetAttributes(attribute.String("persona", key))

	res, err := h.svc.Transform(ctx, message, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transform failed")
		var verr *transformer.ValidationError
		switch {
		case errors.As(err, &verr):
			return mcp.NewToolResultError(verr.Message), nil
		case errors.Is(err, persona.ErrNotFound):
			return mcp.NewToolResultError(err.Error()), nil
		default:
			h.log.ErrorContext(ctx, "Transform failed", "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to transform: %v", err)), nil
		}
	}

	return jsonResult(res)
}

// HandleGetHistory returns recent transformations.
func (h *Handlers) HandleGetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.get_history")
	defer span.End()

	limit := parseIntParam(req, "limit", history.DefaultLimit)
	span.SetAttributes(attribute.Int("limit", limit))

	records, err := h.svc.History(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get history failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
	}
	span.SetAttributes(attribute.Int("result_count", len(records)))

	return jsonResult(map[string]any{
		"history": records,
		"count":   len(records),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseIntParam(req mcp.CallToolRequest, key string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	raw, ok := args[key]
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultVal
	}
}
