// Package conjure is the runtime support library for Go code generated from
// Conjure definitions.
//
// It provides the wrapper types behind the Conjure primitives (SafeLong,
// Double, Binary, UUID, RID, BearerToken, DateTime), the Conjure error model
// and the collaborator interfaces that generated clients and servers are
// written against:
//
//	client := catalog.NewCatalogServiceClient(conn)
//	book, err := client.GetBook(ctx, token, "b-1")
//
// Generated servers register their endpoints on a Router:
//
//	mux := conjure.NewMux()
//	if err := catalog.RegisterCatalogService(mux, impl); err != nil {
//		return err
//	}
//
// Mux is both a Router and a Client: it dispatches requests to registered
// handlers in-process, passing every value through its wire encoding.
package conjure
