package query

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda adapts the handler to API Gateway proxy events. It always
// returns a response and a nil error so the runtime never sees a failure.
func (h *Handler) HandleLambda(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.HTTPMethod == http.MethodOptions {
		return lambdaResponse(http.StatusOK, ""), nil
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			status, payload := h.fail(fmt.Errorf("invalid request body: %w", err))
			return h.encode(status, payload), nil
		}
		body = decoded
	}

	status, payload := h.handle(ctx, body)
	return h.encode(status, payload), nil
}

func (h *Handler) encode(status int, payload any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(err, "failed to encode response")
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}
	resp := lambdaResponse(status, string(data))
	resp.Headers["Content-Type"] = "application/json"
	return resp
}

func lambdaResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    maps.Clone(corsHeaders),
		Body:       body,
	}
}
