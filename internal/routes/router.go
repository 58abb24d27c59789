package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/routes/filters"
)

type Route func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error)

type Service interface {
	GetRoutes() map[string]Route
}

type contextKey string

const (
	ParamsKey   contextKey = "Params"
	UsernameKey contextKey = "Username"
)

type CachedMatcher struct {
	Matcher    *regexp.Regexp
	ParamNames []string
	Mutex      *sync.Mutex
}

type CachedRoute struct {
	Method  string
	Path    string
	Route   Route
	Matcher *CachedMatcher
}

var paramPattern = regexp.MustCompile(":[^/]+")

func (cr *CachedMatcher) Refresh(path string) *regexp.Regexp {
	cr.Mutex.Lock()
	defer cr.Mutex.Unlock()
	if cr.Matcher == nil {
		regexPath := paramPattern.ReplaceAllStringFunc(path, func(found string) string {
			cr.ParamNames = append(cr.ParamNames, found[1:])
			return "([^/]+)"
		})
		cr.Matcher = regexp.MustCompile("^" + regexPath + "$")
	}
	return cr.Matcher
}

func (cr *CachedRoute) MatchEvent(event events.APIGatewayV2HTTPRequest) (map[string]string, bool) {
	if event.RequestContext.HTTP.Method != cr.Method {
		return nil, false
	}
	if event.RawPath == cr.Path {
		return map[string]string{}, true
	}
	matcher := cr.Matcher.Refresh(cr.Path)
	values := matcher.FindStringSubmatch(event.RawPath)
	if values == nil {
		return nil, false
	}
	params := make(map[string]string, len(cr.Matcher.ParamNames))
	for i, name := range cr.Matcher.ParamNames {
		params[name] = values[i+1]
	}
	return params, true
}

type Router struct {
	Filters []filters.RequestFilter
	Routes  []CachedRoute
	Log     logrus.FieldLogger
}

// NewRouter registers the routes of every service in a stable order, sorted
// by path then method.
func NewRouter(services ...Service) *Router {
	all := make(map[string]Route)
	for _, service := range services {
		maps.Copy(all, service.GetRoutes())
	}
	composites := maps.Keys(all)
	slices.SortFunc(composites, func(a, b string) int {
		am, ap, _ := strings.Cut(a, ":")
		bm, bp, _ := strings.Cut(b, ":")
		if ap != bp {
			return strings.Compare(ap, bp)
		}
		return strings.Compare(am, bm)
	})
	routes := make([]CachedRoute, 0, len(composites))
	for _, composite := range composites {
		method, path, _ := strings.Cut(composite, ":")
		routes = append(routes, CachedRoute{
			Method: method,
			Path:   path,
			Route:  all[composite],
			Matcher: &CachedMatcher{
				Mutex: &sync.Mutex{},
			},
		})
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return &Router{
		Routes: routes,
		Filters: []filters.RequestFilter{
			filters.DefaultCorsFilter(),
			filters.DefaultAuthorizationFilter(),
		},
		Log: logger,
	}
}

func JSONResponse(statusCode int, body []byte) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"Content-Length": strconv.Itoa(len(body)),
		},
	}
}

func (r *Router) translateError(event events.APIGatewayV2HTTPRequest, err error) events.APIGatewayV2HTTPResponse {
	se := exceptions.AsServiceError(err)
	message := err.Error()
	if se.StatusCode >= http.StatusInternalServerError {
		r.Log.WithFields(logrus.Fields{
			"module":   "routes",
			"funcName": "Invoke",
			"context":  event.RequestContext.HTTP.Method + " " + event.RawPath,
			"status":   se.StatusCode,
		}).Error(message)
		if se.StatusCode == http.StatusInternalServerError {
			message = "Unexpected internal error"
		}
	}
	body, _ := json.Marshal(map[string]string{"message": message})
	return JSONResponse(se.StatusCode, body)
}

func (r *Router) Invoke(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	filterContext := filters.DefaultFilterContext(event, ctx)
	for _, filter := range r.Filters {
		updatedContext, broken := filter.Filter(filterContext)
		if broken {
			return *updatedContext.Response
		}
		filterContext = updatedContext
	}
	for _, route := range r.Routes {
		if params, ok := route.MatchEvent(*filterContext.Request); ok {
			resp, err := route.Route(event, context.WithValue(*filterContext.Context, ParamsKey, params))
			if err != nil {
				return r.translateError(event, err)
			}
			return resp
		}
	}
	return r.translateError(event, exceptions.NotFound("route", event.RawPath))
}
