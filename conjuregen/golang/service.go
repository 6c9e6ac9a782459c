package golang

import (
	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

type endpointArg struct {
	def    spec.ArgumentDefinition
	local  string
	goType *jen.Statement

	// queryField is the field of the endpoint's query struct.
	queryField string
}

type endpoint struct {
	def    spec.EndpointDefinition
	method string

	// token is the parameter carrying the auth token, empty without auth.
	token string
	args  []endpointArg

	// returns is nil for endpoints without a response body.
	returns      *jen.Statement
	binaryReturn bool

	// query is the name of the query struct, empty without query args.
	query      string
	queryLocal string
}

func (e *emitter) endpoints(svc *spec.ServiceDefinition, goName string) ([]endpoint, error) {
	pkg := e.pkgs.forType(svc.ServiceName).ImportPath
	methods := newScope()
	eps := make([]endpoint, 0, len(svc.Endpoints))
	for _, def := range svc.Endpoints {
		ep := endpoint{def: def}
		wrap := func(err error) error {
			return errors.Wrapf(err, "endpoint %s of %s", def.EndpointName, svc.ServiceName)
		}
		var err error
		if ep.method, err = methods.Declare(FieldIdent(def.EndpointName)); err != nil {
			return nil, wrap(err)
		}
		locals := e.names.Locals()
		if def.Auth.Kind != spec.AuthNone {
			if ep.token, err = locals.Declare("token"); err != nil {
				return nil, wrap(err)
			}
		}
		queryFields := newScope()
		for _, a := range def.Args {
			arg := endpointArg{def: a}
			if arg.local, err = locals.Declare(LocalIdent(a.ArgName)); err != nil {
				return nil, wrap(err)
			}
			if arg.goType, err = e.res.Resolve(a.Type); err != nil {
				return nil, wrap(err)
			}
			if a.ParamType.Kind == spec.ParamQuery {
				if arg.queryField, err = queryFields.Declare(FieldIdent(a.ArgName)); err != nil {
					return nil, wrap(err)
				}
			}
			if !e.paramShape(a) {
				return nil, wrap(errors.Mark(
					errors.Newf("%s parameter %s has type %s without a plain text form", a.ParamType.Kind, a.ArgName, a.Type),
					ErrUnsupported))
			}
			ep.args = append(ep.args, arg)
		}
		if len(def.ArgsOfKind(spec.ParamQuery)) > 0 {
			if ep.query, err = e.names.Declare(pkg, LocalIdent(goName)+FieldIdent(def.EndpointName)+"Query"); err != nil {
				return nil, wrap(err)
			}
			if ep.queryLocal, err = locals.Declare("queryParams"); err != nil {
				return nil, wrap(err)
			}
		}
		if def.Returns != nil {
			if ep.returns, err = e.res.Resolve(def.Returns); err != nil {
				return nil, wrap(err)
			}
			ep.binaryReturn = e.res.isBinary(def.Returns)
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

// paramShape reports whether a can travel where its parameter kind puts
// it. Path parameters are plain, headers are plain or optional plain, and
// query parameters may also be lists or sets of plain values.
func (e *emitter) paramShape(a spec.ArgumentDefinition) bool {
	switch a.ParamType.Kind {
	case spec.ParamBody:
		return true
	case spec.ParamPath:
		return e.res.isPlain(a.Type)
	}
	switch t := a.Type.(type) {
	case *spec.OptionalType:
		return e.res.isPlain(t.ItemType)
	case *spec.ListType:
		return a.ParamType.Kind == spec.ParamQuery && e.res.isPlain(t.ItemType)
	case *spec.SetType:
		return a.ParamType.Kind == spec.ParamQuery && e.res.isPlain(t.ItemType)
	}
	return e.res.isPlain(a.Type)
}

// signature renders the parameters and results shared by the client and
// server interfaces.
func (e *emitter) signature(ep endpoint) ([]jen.Code, []jen.Code) {
	params := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	if ep.token != "" {
		params = append(params, jen.Id(ep.token).Add(e.res.rt("BearerToken")))
	}
	for _, a := range ep.args {
		params = append(params, jen.Id(a.local).Add(a.goType))
	}
	if ep.returns == nil {
		return params, []jen.Code{jen.Error()}
	}
	return params, []jen.Code{jen.Add(ep.returns), jen.Error()}
}

// emitService emits the client interface and its implementation over
// conjure.Client, and the server interface with its route registration.
func (e *emitter) emitService(f *goFile, svc *spec.ServiceDefinition, goName string) error {
	pkg := e.pkgs.forType(svc.ServiceName).ImportPath
	eps, err := e.endpoints(svc, goName)
	if err != nil {
		return err
	}
	clientIface, err := e.names.Declare(pkg, goName+"Client")
	if err != nil {
		return err
	}
	clientImpl, err := e.names.Declare(pkg, LocalIdent(goName)+"Client")
	if err != nil {
		return err
	}
	ctor, err := e.names.Declare(pkg, "New"+goName+"Client")
	if err != nil {
		return err
	}
	register, err := e.names.Declare(pkg, "Register"+goName)
	if err != nil {
		return err
	}

	iface := func(name string) {
		f.Type().Id(name).InterfaceFunc(func(g *jen.Group) {
			for _, ep := range eps {
				g.Add(e.doc(ep.def.Docs, ep.def.Deprecated))
				params, results := e.signature(ep)
				g.Id(ep.method).Params(params...).Params(results...)
			}
		})
	}

	if e.cfg.EmitComments && !svc.Docs.IsZero() {
		f.Add(e.doc(svc.Docs, ""))
	} else {
		f.Commentf("%s is the client of %s.", clientIface, svc.ServiceName.Name)
	}
	iface(clientIface)

	f.Type().Id(clientImpl).Struct(jen.Id("client").Add(e.res.rt("Client")))

	f.Commentf("%s returns a %s that sends requests through client.", ctor, clientIface)
	f.Func().Id(ctor).Params(jen.Id("client").Add(e.res.rt("Client"))).Id(clientIface).Block(
		jen.Return(jen.Op("&").Id(clientImpl).Values(jen.Dict{jen.Id("client"): jen.Id("client")})),
	)

	for _, ep := range eps {
		e.emitClientMethod(f, clientImpl, ep)
	}

	f.Commentf("%s is implemented by servers of %s.", goName, svc.ServiceName.Name)
	iface(goName)

	for _, ep := range eps {
		if ep.query == "" {
			continue
		}
		f.Type().Id(ep.query).StructFunc(func(g *jen.Group) {
			for _, a := range ep.args {
				if a.queryField == "" {
					continue
				}
				tag := a.def.ParamType.ParamID
				if tag == "" {
					tag = a.def.ArgName
				}
				if e.res.IsRequired(a.def.Type) {
					tag += ",required"
				}
				g.Id(a.queryField).Add(a.goType).Tag(map[string]string{"schema": tag})
			}
		})
	}

	f.Commentf("%s registers a route for every endpoint of %s.", register, svc.ServiceName.Name)
	f.Func().Id(register).Params(
		jen.Id("router").Add(e.res.rt("Router")),
		jen.Id("impl").Id(goName),
	).Error().BlockFunc(func(g *jen.Group) {
		for _, ep := range eps {
			route := jen.Dict{
				jen.Id("ServiceName"):  jen.Lit(svc.ServiceName.Name),
				jen.Id("EndpointName"): jen.Lit(ep.def.EndpointName),
				jen.Id("Method"):       jen.Lit(string(ep.def.HTTPMethod)),
				jen.Id("Path"):         jen.Lit(ep.def.HTTPPath),
				jen.Id("Handler"):      e.handler(ep),
			}
			if ep.binaryReturn {
				route[jen.Id("ResponseCodec")] = e.res.codecs("Binary")
			}
			g.Add(checkErr(jen.Id("router").Dot("Register").Call(e.res.rt("Route").Values(route))))
		}
		g.Return(jen.Nil())
	})
	return nil
}

func (e *emitter) paramName(a spec.ArgumentDefinition) string {
	if a.ParamType.ParamID != "" {
		return a.ParamType.ParamID
	}
	return a.ArgName
}

func (e *emitter) emitClientMethod(f *goFile, impl string, ep endpoint) {
	params, results := e.signature(ep)

	var fail []jen.Code
	switch {
	case ep.returns == nil:
	case ep.binaryReturn:
		fail = []jen.Code{jen.Nil()}
	default:
		fail = []jen.Code{jen.Id("result")}
	}

	f.Func().Params(jen.Id("c").Op("*").Id(impl)).Id(ep.method).Params(params...).Params(results...).BlockFunc(func(g *jen.Group) {
		switch {
		case ep.returns == nil:
		case ep.binaryReturn:
			g.Var().Id("result").Index().Byte()
		default:
			g.Var().Id("result").Add(ep.returns)
		}
		g.List(jen.Id("req"), jen.Err()).Op(":=").Add(e.res.rt("NewRequest")).Call(
			jen.Lit(string(ep.def.HTTPMethod)), jen.Lit(ep.def.HTTPPath))
		g.Add(returnErr(fail...))

		switch ep.def.Auth.Kind {
		case spec.AuthHeader:
			g.Id("req").Dot("SetBearerToken").Call(jen.Id(ep.token))
		case spec.AuthCookie:
			g.Id("req").Dot("SetCookieToken").Call(jen.Lit(ep.def.Auth.CookieName), jen.Id(ep.token))
		}

		for _, a := range ep.args {
			switch a.def.ParamType.Kind {
			case spec.ParamPath:
				g.Add(checkErr(jen.Id("req").Dot("SetPathParam").Call(jen.Lit(a.def.ArgName), jen.Id(a.local)), fail...))
			case spec.ParamQuery:
				g.Add(e.optionalValue(a, func(v jen.Code) *jen.Statement {
					return checkErr(jen.Id("req").Dot("AddQuery").Call(jen.Lit(e.paramName(a.def)), v), fail...)
				}))
			case spec.ParamHeader:
				g.Add(e.optionalValue(a, func(v jen.Code) *jen.Statement {
					return checkErr(jen.Id("req").Dot("SetHeader").Call(jen.Lit(e.paramName(a.def)), v), fail...)
				}))
			case spec.ParamBody:
				if e.res.isBinary(a.def.Type) {
					g.Id("req").Dot("SetBinaryBody").Call(jen.Index().Byte().Call(jen.Id(a.local)))
				} else {
					g.Id("req").Dot("SetJSONBody").Call(jen.Id(a.local))
				}
			}
		}

		switch {
		case ep.returns == nil:
			g.Return(jen.Id("c").Dot("client").Dot("Do").Call(jen.Id("ctx"), jen.Id("req"), jen.Nil()))
		case ep.binaryReturn:
			g.Id("req").Dot("ExpectBinaryResponse").Call()
			g.Add(checkErr(jen.Id("c").Dot("client").Dot("Do").Call(jen.Id("ctx"), jen.Id("req"), jen.Op("&").Id("result")), fail...))
			g.Return(jen.Add(ep.returns).Call(jen.Id("result")), jen.Nil())
		default:
			g.Add(checkErr(jen.Id("c").Dot("client").Dot("Do").Call(jen.Id("ctx"), jen.Id("req"), jen.Op("&").Id("result")), fail...))
			g.Return(jen.Id("result"), jen.Nil())
		}
	})
}

// optionalValue renders set for every value carried by a parameter:
// once for required values, once if present for optionals, and once per
// element for lists and sets.
func (e *emitter) optionalValue(a endpointArg, set func(v jen.Code) *jen.Statement) *jen.Statement {
	switch a.def.Type.(type) {
	case *spec.OptionalType:
		return jen.If(jen.Id(a.local).Op("!=").Nil()).Block(set(jen.Op("*").Id(a.local)))
	case *spec.ListType, *spec.SetType:
		return jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id(a.local)).Block(set(jen.Id("v")))
	}
	return set(jen.Id(a.local))
}

// handler renders the conjure.Handler of an endpoint: decode the auth
// token and every argument, call impl, return its result.
func (e *emitter) handler(ep endpoint) *jen.Statement {
	return jen.Func().Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("req").Op("*").Add(e.res.rt("ServerRequest")),
	).Params(jen.Id("any"), jen.Error()).BlockFunc(func(g *jen.Group) {
		switch ep.def.Auth.Kind {
		case spec.AuthHeader:
			g.List(jen.Id(ep.token), jen.Err()).Op(":=").Id("req").Dot("BearerToken").Call()
			g.Add(returnErr(jen.Nil()))
		case spec.AuthCookie:
			g.List(jen.Id(ep.token), jen.Err()).Op(":=").Id("req").Dot("CookieToken").Call(jen.Lit(ep.def.Auth.CookieName))
			g.Add(returnErr(jen.Nil()))
		}

		if ep.query != "" {
			g.Var().Id(ep.queryLocal).Id(ep.query)
			g.Add(checkErr(jen.Id("req").Dot("DecodeQuery").Call(jen.Op("&").Id(ep.queryLocal)), jen.Nil()))
		}

		for _, a := range ep.args {
			switch a.def.ParamType.Kind {
			case spec.ParamPath:
				g.Var().Id(a.local).Add(a.goType)
				g.Add(checkErr(jen.Id("req").Dot("DecodePathParam").Call(jen.Lit(a.def.ArgName), jen.Op("&").Id(a.local)), jen.Nil()))
			case spec.ParamHeader:
				g.Var().Id(a.local).Add(a.goType)
				opt, ok := a.def.Type.(*spec.OptionalType)
				if !ok {
					g.Add(checkErr(jen.Id("req").Dot("DecodeHeader").Call(jen.Lit(e.paramName(a.def)), jen.Op("&").Id(a.local)), jen.Nil()))
					continue
				}
				inner, _ := e.res.Resolve(opt.ItemType)
				g.Add(jen.Id(a.local).Op("=").New(inner))
				g.If(
					jen.List(jen.Id("found"), jen.Err()).Op(":=").Id("req").Dot("DecodeOptionalHeader").Call(jen.Lit(e.paramName(a.def)), jen.Id(a.local)),
					jen.Err().Op("!=").Nil(),
				).Block(
					jen.Return(jen.Nil(), jen.Err()),
				).Else().If(jen.Op("!").Id("found")).Block(
					jen.Id(a.local).Op("=").Nil(),
				)
			case spec.ParamBody:
				if e.res.isBinary(a.def.Type) {
					g.Id(a.local).Op(":=").Add(a.goType).Call(jen.Id("req").Dot("Body"))
					continue
				}
				g.Var().Id(a.local).Add(a.goType)
				method := "DecodeBody"
				if !e.res.IsRequired(a.def.Type) {
					method = "DecodeOptionalBody"
				}
				g.Add(checkErr(jen.Id("req").Dot(method).Call(jen.Op("&").Id(a.local)), jen.Nil()))
			}
		}

		call := jen.Id("impl").Dot(ep.method).CallFunc(func(c *jen.Group) {
			c.Id("ctx")
			if ep.token != "" {
				c.Id(ep.token)
			}
			for _, a := range ep.args {
				if a.queryField != "" {
					c.Id(ep.queryLocal).Dot(a.queryField)
					continue
				}
				c.Id(a.local)
			}
		})

		switch {
		case ep.returns == nil:
			g.Return(jen.Nil(), call)
		case ep.binaryReturn:
			g.List(jen.Id("result"), jen.Err()).Op(":=").Add(call)
			g.Add(returnErr(jen.Nil()))
			g.Return(jen.Index().Byte().Call(jen.Id("result")), jen.Nil())
		default:
			g.Return(call)
		}
	})
}
