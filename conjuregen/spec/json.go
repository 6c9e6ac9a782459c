package spec

import (
	"strings"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// JSON decoding of the Conjure IR. Every tagged union in the IR carries a
// "type" discriminator plus a member named after the discriminator value.

type typeNameJSON struct {
	Name    string `json:"name"`
	Package string `json:"package"`
}

func (t typeNameJSON) typeName() TypeName {
	return TypeName{Name: t.Name, Package: t.Package}
}

type envelopeJSON struct {
	Type string `json:"type"`
}

type itemTypeJSON struct {
	ItemType json.RawMessage `json:"itemType"`
}

type mapTypeJSON struct {
	KeyType   json.RawMessage `json:"keyType"`
	ValueType json.RawMessage `json:"valueType"`
}

type externalTypeJSON struct {
	ExternalReference typeNameJSON    `json:"externalReference"`
	Fallback          json.RawMessage `json:"fallback"`
}

type typeJSON struct {
	Type      string            `json:"type"`
	Primitive string            `json:"primitive"`
	Optional  *itemTypeJSON     `json:"optional"`
	List      *itemTypeJSON     `json:"list"`
	Set       *itemTypeJSON     `json:"set"`
	Map       *mapTypeJSON      `json:"map"`
	Reference *typeNameJSON     `json:"reference"`
	External  *externalTypeJSON `json:"external"`
}

// parseError marks err as a parse error and names the offending literal.
func parseError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrParse)
}

// DecodeType decodes a single IR type expression.
func DecodeType(data json.RawMessage) (Type, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, parseError("missing type")
	}
	var raw typeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode type"), ErrParse)
	}

	switch raw.Type {
	case "primitive":
		kind := PrimitiveKind(raw.Primitive)
		if !kind.Valid() {
			return nil, parseError("unknown primitive %q", raw.Primitive)
		}
		return Primitive(kind), nil
	case "optional":
		if raw.Optional == nil {
			return nil, parseError("optional type is missing its %q member", "optional")
		}
		item, err := DecodeType(raw.Optional.ItemType)
		if err != nil {
			return nil, errors.Wrap(err, "optional")
		}
		return Optional(item), nil
	case "list":
		if raw.List == nil {
			return nil, parseError("list type is missing its %q member", "list")
		}
		item, err := DecodeType(raw.List.ItemType)
		if err != nil {
			return nil, errors.Wrap(err, "list")
		}
		return List(item), nil
	case "set":
		if raw.Set == nil {
			return nil, parseError("set type is missing its %q member", "set")
		}
		item, err := DecodeType(raw.Set.ItemType)
		if err != nil {
			return nil, errors.Wrap(err, "set")
		}
		return Set(item), nil
	case "map":
		if raw.Map == nil {
			return nil, parseError("map type is missing its %q member", "map")
		}
		key, err := DecodeType(raw.Map.KeyType)
		if err != nil {
			return nil, errors.Wrap(err, "map key")
		}
		value, err := DecodeType(raw.Map.ValueType)
		if err != nil {
			return nil, errors.Wrap(err, "map value")
		}
		return Map(key, value), nil
	case "reference":
		if raw.Reference == nil || raw.Reference.Name == "" {
			return nil, parseError("malformed reference %s", string(data))
		}
		return &ReferenceType{Target: raw.Reference.typeName()}, nil
	case "external":
		if raw.External == nil || raw.External.ExternalReference.Name == "" {
			return nil, parseError("malformed external reference %s", string(data))
		}
		ext := &ExternalType{ExternalReference: raw.External.ExternalReference.typeName()}
		if len(raw.External.Fallback) > 0 && string(raw.External.Fallback) != "null" {
			fallback, err := DecodeType(raw.External.Fallback)
			if err != nil {
				return nil, errors.Wrap(err, "external fallback")
			}
			ext.Fallback = fallback
		}
		return ext, nil
	default:
		return nil, parseError("unknown type kind %q", raw.Type)
	}
}

type fieldJSON struct {
	FieldName  string          `json:"fieldName"`
	Type       json.RawMessage `json:"type"`
	Docs       string          `json:"docs"`
	Deprecated string          `json:"deprecated"`
	Safety     string          `json:"safety"`
}

func decodeSafety(s string) (LogSafety, error) {
	switch LogSafety(strings.ToUpper(s)) {
	case SafetyUnset:
		return SafetyUnset, nil
	case SafetySafe:
		return SafetySafe, nil
	case SafetyUnsafe:
		return SafetyUnsafe, nil
	case SafetyDoNotLog:
		return SafetyDoNotLog, nil
	}
	return SafetyUnset, parseError("unknown log safety %q", s)
}

func decodeFields(raw []fieldJSON) ([]FieldDefinition, error) {
	fields := make([]FieldDefinition, 0, len(raw))
	for _, f := range raw {
		if f.FieldName == "" {
			return nil, parseError("field with empty name")
		}
		typ, err := DecodeType(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.FieldName)
		}
		safety, err := decodeSafety(f.Safety)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.FieldName)
		}
		fields = append(fields, FieldDefinition{
			FieldName:  f.FieldName,
			Type:       typ,
			Docs:       Documentation(f.Docs),
			Deprecated: Documentation(f.Deprecated),
			Safety:     safety,
		})
	}
	return fields, nil
}

type objectJSON struct {
	TypeName typeNameJSON `json:"typeName"`
	Fields   []fieldJSON  `json:"fields"`
	Docs     string       `json:"docs"`
}

type unionJSON struct {
	TypeName typeNameJSON `json:"typeName"`
	Union    []fieldJSON  `json:"union"`
	Docs     string       `json:"docs"`
}

type enumValueJSON struct {
	Value      string `json:"value"`
	Docs       string `json:"docs"`
	Deprecated string `json:"deprecated"`
}

type enumJSON struct {
	TypeName typeNameJSON    `json:"typeName"`
	Values   []enumValueJSON `json:"values"`
	Docs     string          `json:"docs"`
}

type aliasJSON struct {
	TypeName typeNameJSON    `json:"typeName"`
	Alias    json.RawMessage `json:"alias"`
	Docs     string          `json:"docs"`
	Safety   string          `json:"safety"`
}

type typeDefinitionJSON struct {
	Type   string      `json:"type"`
	Object *objectJSON `json:"object"`
	Union  *unionJSON  `json:"union"`
	Enum   *enumJSON   `json:"enum"`
	Alias  *aliasJSON  `json:"alias"`
}

// DecodeTypeDefinition decodes a single IR type definition.
func DecodeTypeDefinition(data json.RawMessage) (TypeDefinition, error) {
	var raw typeDefinitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode type definition"), ErrParse)
	}
	switch raw.Type {
	case "object":
		if raw.Object == nil {
			return nil, parseError("object definition is missing its %q member", "object")
		}
		fields, err := decodeFields(raw.Object.Fields)
		if err != nil {
			return nil, errors.Wrapf(err, "object %s", raw.Object.TypeName.typeName())
		}
		return &ObjectDefinition{
			Name:   raw.Object.TypeName.typeName(),
			Fields: fields,
			Docs:   Documentation(raw.Object.Docs),
		}, nil
	case "union":
		if raw.Union == nil {
			return nil, parseError("union definition is missing its %q member", "union")
		}
		variants, err := decodeFields(raw.Union.Union)
		if err != nil {
			return nil, errors.Wrapf(err, "union %s", raw.Union.TypeName.typeName())
		}
		return &UnionDefinition{
			Name:  raw.Union.TypeName.typeName(),
			Union: variants,
			Docs:  Documentation(raw.Union.Docs),
		}, nil
	case "enum":
		if raw.Enum == nil {
			return nil, parseError("enum definition is missing its %q member", "enum")
		}
		def := &EnumDefinition{
			Name: raw.Enum.TypeName.typeName(),
			Docs: Documentation(raw.Enum.Docs),
		}
		for _, v := range raw.Enum.Values {
			if v.Value == "" {
				return nil, parseError("enum %s has an empty value", def.Name)
			}
			def.Values = append(def.Values, EnumValueDefinition{
				Value:      v.Value,
				Docs:       Documentation(v.Docs),
				Deprecated: Documentation(v.Deprecated),
			})
		}
		return def, nil
	case "alias":
		if raw.Alias == nil {
			return nil, parseError("alias definition is missing its %q member", "alias")
		}
		name := raw.Alias.TypeName.typeName()
		typ, err := DecodeType(raw.Alias.Alias)
		if err != nil {
			return nil, errors.Wrapf(err, "alias %s", name)
		}
		safety, err := decodeSafety(raw.Alias.Safety)
		if err != nil {
			return nil, errors.Wrapf(err, "alias %s", name)
		}
		return &AliasDefinition{
			Name:   name,
			Alias:  typ,
			Docs:   Documentation(raw.Alias.Docs),
			Safety: safety,
		}, nil
	default:
		return nil, parseError("unknown type definition kind %q", raw.Type)
	}
}

type errorDefinitionJSON struct {
	ErrorName  typeNameJSON `json:"errorName"`
	Docs       string       `json:"docs"`
	Namespace  string       `json:"namespace"`
	Code       string       `json:"code"`
	SafeArgs   []fieldJSON  `json:"safeArgs"`
	UnsafeArgs []fieldJSON  `json:"unsafeArgs"`
}

func decodeErrorDefinition(raw errorDefinitionJSON) (*ErrorDefinition, error) {
	name := raw.ErrorName.typeName()
	code := ErrorCode(raw.Code)
	if !code.Valid() {
		return nil, parseError("error %s has unknown code %q", name, raw.Code)
	}
	safe, err := decodeFields(raw.SafeArgs)
	if err != nil {
		return nil, errors.Wrapf(err, "error %s safe args", name)
	}
	unsafe, err := decodeFields(raw.UnsafeArgs)
	if err != nil {
		return nil, errors.Wrapf(err, "error %s unsafe args", name)
	}
	return &ErrorDefinition{
		ErrorName:  name,
		Namespace:  raw.Namespace,
		Code:       code,
		SafeArgs:   safe,
		UnsafeArgs: unsafe,
		Docs:       Documentation(raw.Docs),
	}, nil
}

type authJSON struct {
	Type   string `json:"type"`
	Cookie *struct {
		CookieName string `json:"cookieName"`
	} `json:"cookie"`
}

type paramTypeJSON struct {
	Type  string `json:"type"`
	Query *struct {
		ParamID string `json:"paramId"`
	} `json:"query"`
	Header *struct {
		ParamID string `json:"paramId"`
	} `json:"header"`
}

type argumentJSON struct {
	ArgName   string            `json:"argName"`
	Type      json.RawMessage   `json:"type"`
	ParamType paramTypeJSON     `json:"paramType"`
	Docs      string            `json:"docs"`
	Markers   []json.RawMessage `json:"markers"`
	Safety    string            `json:"safety"`
}

type endpointJSON struct {
	EndpointName string            `json:"endpointName"`
	HTTPMethod   string            `json:"httpMethod"`
	HTTPPath     string            `json:"httpPath"`
	Auth         *authJSON         `json:"auth"`
	Args         []argumentJSON    `json:"args"`
	Returns      json.RawMessage   `json:"returns"`
	Docs         string            `json:"docs"`
	Deprecated   string            `json:"deprecated"`
	Markers      []json.RawMessage `json:"markers"`
}

type serviceJSON struct {
	ServiceName typeNameJSON   `json:"serviceName"`
	Endpoints   []endpointJSON `json:"endpoints"`
	Docs        string         `json:"docs"`
}

func decodeMarkers(raw []json.RawMessage) ([]Type, error) {
	var markers []Type
	for _, m := range raw {
		t, err := DecodeType(m)
		if err != nil {
			return nil, errors.Wrap(err, "marker")
		}
		markers = append(markers, t)
	}
	return markers, nil
}

func decodeAuth(raw *authJSON) (AuthType, error) {
	if raw == nil {
		return AuthType{Kind: AuthNone}, nil
	}
	switch raw.Type {
	case "header":
		return AuthType{Kind: AuthHeader}, nil
	case "cookie":
		if raw.Cookie == nil || raw.Cookie.CookieName == "" {
			return AuthType{}, parseError("cookie auth without a cookie name")
		}
		return AuthType{Kind: AuthCookie, CookieName: raw.Cookie.CookieName}, nil
	default:
		return AuthType{}, parseError("unknown auth type %q", raw.Type)
	}
}

func decodeParamType(raw paramTypeJSON) (ParameterType, error) {
	switch raw.Type {
	case "body":
		return ParameterType{Kind: ParamBody}, nil
	case "path":
		return ParameterType{Kind: ParamPath}, nil
	case "query":
		if raw.Query == nil || raw.Query.ParamID == "" {
			return ParameterType{}, parseError("query parameter without a paramId")
		}
		return ParameterType{Kind: ParamQuery, ParamID: raw.Query.ParamID}, nil
	case "header":
		if raw.Header == nil || raw.Header.ParamID == "" {
			return ParameterType{}, parseError("header parameter without a paramId")
		}
		return ParameterType{Kind: ParamHeader, ParamID: raw.Header.ParamID}, nil
	default:
		return ParameterType{}, parseError("unknown parameter type %q", raw.Type)
	}
}

func decodeEndpoint(raw endpointJSON) (EndpointDefinition, error) {
	method := HTTPMethod(strings.ToUpper(raw.HTTPMethod))
	switch method {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
	default:
		return EndpointDefinition{}, parseError("unknown http method %q", raw.HTTPMethod)
	}
	auth, err := decodeAuth(raw.Auth)
	if err != nil {
		return EndpointDefinition{}, err
	}
	endpoint := EndpointDefinition{
		EndpointName: raw.EndpointName,
		HTTPMethod:   method,
		HTTPPath:     raw.HTTPPath,
		Auth:         auth,
		Docs:         Documentation(raw.Docs),
		Deprecated:   Documentation(raw.Deprecated),
	}
	if len(raw.Returns) > 0 && string(raw.Returns) != "null" {
		returns, err := DecodeType(raw.Returns)
		if err != nil {
			return EndpointDefinition{}, errors.Wrap(err, "returns")
		}
		endpoint.Returns = returns
	}
	if endpoint.Markers, err = decodeMarkers(raw.Markers); err != nil {
		return EndpointDefinition{}, err
	}
	for _, a := range raw.Args {
		typ, err := DecodeType(a.Type)
		if err != nil {
			return EndpointDefinition{}, errors.Wrapf(err, "arg %s", a.ArgName)
		}
		paramType, err := decodeParamType(a.ParamType)
		if err != nil {
			return EndpointDefinition{}, errors.Wrapf(err, "arg %s", a.ArgName)
		}
		markers, err := decodeMarkers(a.Markers)
		if err != nil {
			return EndpointDefinition{}, errors.Wrapf(err, "arg %s", a.ArgName)
		}
		safety, err := decodeSafety(a.Safety)
		if err != nil {
			return EndpointDefinition{}, errors.Wrapf(err, "arg %s", a.ArgName)
		}
		endpoint.Args = append(endpoint.Args, ArgumentDefinition{
			ArgName:   a.ArgName,
			Type:      typ,
			ParamType: paramType,
			Docs:      Documentation(a.Docs),
			Markers:   markers,
			Safety:    safety,
		})
	}
	return endpoint, nil
}

type conjureDefinitionJSON struct {
	Version    int                   `json:"version"`
	Errors     []errorDefinitionJSON `json:"errors"`
	Types      []json.RawMessage     `json:"types"`
	Services   []serviceJSON         `json:"services"`
	Extensions map[string]any        `json:"extensions"`
}

// UnmarshalJSON decodes a full Conjure IR document.
func (d *ConjureDefinition) UnmarshalJSON(data []byte) error {
	var raw conjureDefinitionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Mark(errors.Wrap(err, "decode conjure definition"), ErrParse)
	}

	def := ConjureDefinition{
		Version:    raw.Version,
		Extensions: raw.Extensions,
	}
	for _, t := range raw.Types {
		td, err := DecodeTypeDefinition(t)
		if err != nil {
			return err
		}
		def.Types = append(def.Types, td)
	}
	for _, e := range raw.Errors {
		ed, err := decodeErrorDefinition(e)
		if err != nil {
			return err
		}
		def.Errors = append(def.Errors, ed)
	}
	for _, s := range raw.Services {
		svc := &ServiceDefinition{
			ServiceName: s.ServiceName.typeName(),
			Docs:        Documentation(s.Docs),
		}
		for _, e := range s.Endpoints {
			endpoint, err := decodeEndpoint(e)
			if err != nil {
				return errors.Wrapf(err, "service %s endpoint %s", svc.ServiceName, e.EndpointName)
			}
			svc.Endpoints = append(svc.Endpoints, endpoint)
		}
		def.Services = append(def.Services, svc)
	}

	*d = def
	return nil
}
