package filters

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

type FilterContext struct {
	Request  *events.APIGatewayV2HTTPRequest
	Response *events.APIGatewayV2HTTPResponse
	Context  *context.Context
}

type RequestFilter interface {
	Filter(ctx *FilterContext) (*FilterContext, bool)
}

type CorsFilter struct {
	Methods []string
	Origins []string
	Headers []string
}

func (cf *CorsFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if ctx.Request.RequestContext.HTTP.Method != "OPTIONS" {
		return ctx, false
	}
	headers := ctx.Response.Headers
	if headers == nil {
		headers = make(map[string]string, 4)
	}
	headers["content-length"] = "0"
	headers["access-control-allow-headers"] = strings.Join(cf.Headers, ", ")
	headers["access-control-allow-methods"] = strings.Join(cf.Methods, ", ")
	headers["access-control-allow-origin"] = strings.Join(cf.Origins, ", ")
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers:    headers,
			StatusCode: ctx.Response.StatusCode,
		},
	}, true
}

// AuthorizationFilter lets a request through only when the authorizer
// resolved a user, either from JWT claims or from the Lambda authorizer
// context under ClaimsField.
type AuthorizationFilter struct {
	ClaimsField string
}

// Claims flattens whichever authorizer ran into string claims.
func (af *AuthorizationFilter) Claims(request *events.APIGatewayV2HTTPRequest) map[string]string {
	authorizer := request.RequestContext.Authorizer
	if authorizer == nil {
		return nil
	}
	if authorizer.JWT != nil && len(authorizer.JWT.Claims) > 0 {
		return authorizer.JWT.Claims
	}
	raw, ok := authorizer.Lambda[af.ClaimsField]
	if !ok {
		return nil
	}
	claims := make(map[string]string)
	switch values := raw.(type) {
	case map[string]interface{}:
		for key, value := range values {
			if s, ok := value.(string); ok {
				claims[key] = s
			}
		}
	case map[string]string:
		return values
	case string:
		// API Gateway hands over nested authorizer context as serialized JSON.
		var decoded map[string]string
		if err := json.Unmarshal([]byte(values), &decoded); err == nil {
			return decoded
		}
	}
	return claims
}

func (af *AuthorizationFilter) Filter(ctx *FilterContext) (*FilterContext, bool) {
	if claims := af.Claims(ctx.Request); claims["username"] != "" {
		return ctx, false
	}
	body := `{"message": "Unauthorized"}`
	return &FilterContext{
		Request: ctx.Request,
		Context: ctx.Context,
		Response: &events.APIGatewayV2HTTPResponse{
			Headers: map[string]string{
				"Content-Type":   "application/json",
				"Content-Length": strconv.Itoa(len(body)),
			},
			StatusCode: 401,
			Body:       body,
		},
	}, true
}

func DefaultFilterContext(event events.APIGatewayV2HTTPRequest, ctx context.Context) *FilterContext {
	return &FilterContext{
		Request: &event,
		Response: &events.APIGatewayV2HTTPResponse{
			StatusCode: 200,
		},
		Context: &ctx,
	}
}

func DefaultCorsFilter() *CorsFilter {
	return &CorsFilter{
		Methods: []string{"GET", "POST", "DELETE"},
		Headers: []string{"Content-Type", "Content-Length", "Authorization"},
		Origins: []string{"*"},
	}
}

func DefaultAuthorizationFilter() *AuthorizationFilter {
	return &AuthorizationFilter{
		ClaimsField: "claims",
	}
}
