package spec

// ServiceDefinition is a group of related endpoints. A service owns its endpoints.
type ServiceDefinition struct {
	ServiceName TypeName
	Endpoints   []EndpointDefinition
	Docs        Documentation
}

// HTTPMethod is the HTTP verb of an endpoint.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
)

// AuthKind identifies how an endpoint is authenticated.
type AuthKind int

const (
	AuthNone AuthKind = iota
	// AuthHeader carries a bearer token in the Authorization header.
	AuthHeader
	// AuthCookie carries a bearer token in a named cookie.
	AuthCookie
)

// AuthType describes the authentication of an endpoint.
type AuthType struct {
	Kind AuthKind

	// CookieName is set for AuthCookie.
	CookieName string
}

// EndpointDefinition is a single HTTP endpoint of a service.
type EndpointDefinition struct {
	EndpointName string
	HTTPMethod   HTTPMethod

	// HTTPPath is the raw path template, e.g. "/things/{thingId}".
	// Templates are parsed by the pathtemplate package.
	HTTPPath string

	Auth    AuthType
	Args    []ArgumentDefinition
	Returns Type // nil for endpoints with no response body

	Docs       Documentation
	Deprecated Documentation
	Markers    []Type
}

// ParamKind identifies where an argument travels in the request.
type ParamKind int

const (
	ParamBody ParamKind = iota
	ParamPath
	ParamQuery
	ParamHeader
)

// String returns the IR spelling of the parameter kind.
func (k ParamKind) String() string {
	switch k {
	case ParamBody:
		return "body"
	case ParamPath:
		return "path"
	case ParamQuery:
		return "query"
	case ParamHeader:
		return "header"
	default:
		return "unknown"
	}
}

// ParameterType is the kind of an argument plus its wire identifier for
// query and header parameters.
type ParameterType struct {
	Kind ParamKind

	// ParamID is the query key or header name. Empty for body and path.
	ParamID string
}

// ArgumentDefinition is a single endpoint argument.
type ArgumentDefinition struct {
	ArgName   string
	Type      Type
	ParamType ParameterType
	Docs      Documentation
	Markers   []Type
	Safety    LogSafety
}

// BodyArg returns the body argument of the endpoint, if any.
func (e *EndpointDefinition) BodyArg() (ArgumentDefinition, bool) {
	for _, arg := range e.Args {
		if arg.ParamType.Kind == ParamBody {
			return arg, true
		}
	}
	return ArgumentDefinition{}, false
}

// ArgsOfKind returns the endpoint's arguments of the given kind in declaration order.
func (e *EndpointDefinition) ArgsOfKind(kind ParamKind) []ArgumentDefinition {
	var args []ArgumentDefinition
	for _, arg := range e.Args {
		if arg.ParamType.Kind == kind {
			args = append(args, arg)
		}
	}
	return args
}
