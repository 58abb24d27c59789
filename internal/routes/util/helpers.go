package util

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/filters"
)

func AuthorizationClaims(event events.APIGatewayV2HTTPRequest) map[string]string {
	return filters.DefaultAuthorizationFilter().Claims(&event)
}

func AuthorizedRoute(route routes.Route) routes.Route {
	return func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
		if username := AuthorizationClaims(event)["username"]; username != "" {
			return route(event, context.WithValue(ctx, routes.UsernameKey, username))
		}
		return events.APIGatewayV2HTTPResponse{}, exceptions.InternalServer("Unexpected internal error")
	}
}

func Username(ctx context.Context) string {
	username, _ := ctx.Value(routes.UsernameKey).(string)
	return username
}

func RequestParam(ctx context.Context, name string) string {
	params, _ := ctx.Value(routes.ParamsKey).(map[string]string)
	return params[name]
}

// ParseBody decodes a JSON request body, reporting malformed input as a 400.
func ParseBody[T interface{}](event events.APIGatewayV2HTTPRequest) (T, error) {
	var input T
	if err := json.Unmarshal([]byte(event.Body), &input); err != nil {
		return input, exceptions.InvalidInput(err.Error())
	}
	return input, nil
}

func QueryParams(event events.APIGatewayV2HTTPRequest) (data.QueryParams, error) {
	params := data.QueryParams{}
	if limit, ok := event.QueryStringParameters["limit"]; ok {
		value, err := strconv.Atoi(limit)
		if err != nil {
			return params, exceptions.InvalidInput("limit must be a number")
		}
		params.Limit = value
	}
	if nextToken, ok := event.QueryStringParameters["nextToken"]; ok && nextToken != "" {
		// nextToken is echoed back exactly as it was serialized in a list body.
		decoded, err := base64.StdEncoding.DecodeString(nextToken)
		if err != nil {
			return params, exceptions.InvalidInput("nextToken is malformed")
		}
		params.NextToken = decoded
	}
	return params, nil
}

func SerializeResponse[T interface{}, R interface{}](delayed func(T) R, thing T, err error, statusCode int) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	body, err := json.Marshal(delayed(thing))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return routes.JSONResponse(statusCode, body), nil
}

func SerializeResponseOK[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, http.StatusOK)
}

func SerializeResponseCreated[T interface{}, R interface{}](delayed func(T) R, thing T, err error) (events.APIGatewayV2HTTPResponse, error) {
	return SerializeResponse(delayed, thing, err, http.StatusCreated)
}

func SerializeResponseNoContent(err error) (events.APIGatewayV2HTTPResponse, error) {
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusNoContent,
	}, nil
}

func Identity[T interface{}](thing T) T {
	return thing
}

func MapOnList[D interface{}, R interface{}](items []D, thunk func(D) R) []R {
	mapped := make([]R, len(items))
	for i, item := range items {
		mapped[i] = thunk(item)
	}
	return mapped
}

func ConvertQueryResults[D interface{}, R interface{}](items data.QueryResults[D], thunk func(D) R) data.QueryResults[R] {
	return data.QueryResults[R]{
		Items:     MapOnList(items.Items, thunk),
		NextToken: items.NextToken,
	}
}

func ConvertQueryResultsPartial[D interface{}, R interface{}](thunk func(D) R) func(data.QueryResults[D]) data.QueryResults[R] {
	return func(d data.QueryResults[D]) data.QueryResults[R] {
		return ConvertQueryResults(d, thunk)
	}
}

// SerializeList pages through one owner's documents with the caller's limit
// and cursor.
func SerializeList[T interface{}, I interface{}, R interface{}](repository data.Repository[T, I], thunk func(T) R, event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	results, err := repository.List(ctx, Username(ctx), params)
	return SerializeResponseOK(ConvertQueryResultsPartial(thunk), results, err)
}
