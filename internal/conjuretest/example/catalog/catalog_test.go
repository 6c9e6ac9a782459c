package catalog_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/conjure"
	"github.com/broady/conjure/internal/conjuretest/example/catalog"
	"github.com/broady/conjure/internal/conjuretest/example/common"
)

func dune() catalog.Book {
	return catalog.NewBookBuilder().
		Id("b-1").
		Title("Dune").
		PageCount(412).
		Genre(catalog.New_Genre(catalog.Genre_FICTION)).
		AddTags("sf").
		Build()
}

func TestBook_JSON(t *testing.T) {
	data, err := json.Marshal(dune())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b-1","title":"Dune","pageCount":412,"genre":"FICTION","tags":["sf"]}`, string(data))

	var got catalog.Book
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, dune(), got)
	_, ok := got.Rating()
	assert.False(t, ok)
	assert.Nil(t, got.Metadata())
}

func TestBook_OptionalFields(t *testing.T) {
	book := catalog.NewBookBuilder().
		Id("b-2").
		Title("Emma").
		PageCount(474).
		Genre(catalog.New_Genre(catalog.Genre_FICTION)).
		Rating(4.5).
		Metadata(map[string]string{"lang": "en"}).
		Build()

	data, err := json.Marshal(book)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rating":4.5`)
	assert.Contains(t, string(data), `"metadata":{"lang":"en"}`)
	assert.NotContains(t, string(data), `"tags"`)

	var got catalog.Book
	require.NoError(t, json.Unmarshal(data, &got))
	rating, ok := got.Rating()
	require.True(t, ok)
	assert.Equal(t, conjure.Double(4.5), rating)
}

func TestBook_NullAndMissing(t *testing.T) {
	var got catalog.Book
	err := json.Unmarshal([]byte(`{"id":"b-1","pageCount":1,"genre":"FICTION"}`), &got)
	require.Error(t, err)
	var missing *conjure.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "title", missing.Field)

	err = json.Unmarshal([]byte(`{"id":"b-1","title":"Dune","pageCount":1,"genre":"FICTION","rating":null,"tags":null,"extra":true}`), &got)
	require.NoError(t, err)
	_, ok := got.Rating()
	assert.False(t, ok)
	assert.Empty(t, got.Tags())
}

func TestGenre(t *testing.T) {
	assert.Equal(t, []catalog.Genre_Value{catalog.Genre_FICTION, catalog.Genre_NON_FICTION}, catalog.Values_Genre())

	g, err := catalog.ParseGenre("NON_FICTION")
	require.NoError(t, err)
	assert.Equal(t, catalog.Genre_NON_FICTION, g.Value())
	assert.False(t, g.IsUnknown())

	_, err = catalog.ParseGenre("POETRY")
	var unknown *conjure.UnknownEnumValueError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "POETRY", unknown.Value)

	var lenient catalog.Genre
	require.NoError(t, json.Unmarshal([]byte(`"POETRY"`), &lenient))
	assert.True(t, lenient.IsUnknown())
	assert.Equal(t, catalog.Genre_UNKNOWN, lenient.Value())
	assert.Equal(t, "POETRY", lenient.String())

	data, err := json.Marshal(lenient)
	require.NoError(t, err)
	assert.Equal(t, `"POETRY"`, string(data))

	a := catalog.New_Genre(catalog.Genre_FICTION)
	b := catalog.New_Genre(catalog.Genre_NON_FICTION)
	assert.Negative(t, a.Compare(b))
	assert.Zero(t, a.Compare(a))
}

type mediaVisitor struct {
	got []string
}

func (v *mediaVisitor) VisitBook(b catalog.Book) error {
	v.got = append(v.got, "book:"+b.Title())
	return nil
}

func (v *mediaVisitor) VisitUrl(u string) error {
	v.got = append(v.got, "url:"+u)
	return nil
}

func (v *mediaVisitor) VisitUnknown(typ string) error {
	v.got = append(v.got, "unknown:"+typ)
	return nil
}

func TestMedia(t *testing.T) {
	url := catalog.NewMediaFromUrl("https://example.com/dune")
	data, err := json.Marshal(url)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"url","url":"https://example.com/dune"}`, string(data))

	var book catalog.Media
	require.NoError(t, json.Unmarshal([]byte(`{"type":"book","book":{"id":"b-1","title":"Dune","pageCount":412,"genre":"FICTION","tags":["sf"]}}`), &book))
	assert.Equal(t, "book", book.Type())

	unknownJSON := `{"type":"video","video":{"id":1}}`
	var unknown catalog.Media
	require.NoError(t, json.Unmarshal([]byte(unknownJSON), &unknown))
	data, err = json.Marshal(unknown)
	require.NoError(t, err)
	assert.Equal(t, unknownJSON, string(data))

	v := &mediaVisitor{}
	for _, m := range []catalog.Media{url, book, unknown} {
		require.NoError(t, m.Accept(v))
	}
	assert.Equal(t, []string{"url:https://example.com/dune", "book:Dune", "unknown:video"}, v.got)

	var titles []string
	err = book.AcceptFuncs(
		func(b catalog.Book) error { titles = append(titles, b.Title()); return nil },
		func(string) error { return errors.New("unexpected url") },
		func(string) error { return errors.New("unexpected unknown") },
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles)

	var empty catalog.Media
	_, err = json.Marshal(empty)
	var emptyErr *conjure.EmptyUnionError
	require.True(t, errors.As(err, &emptyErr))
	assert.ErrorAs(t, empty.Accept(v), &emptyErr)

	var missingType catalog.Media
	require.Error(t, json.Unmarshal([]byte(`{"url":"x"}`), &missingType))
}

func TestBookNotFound(t *testing.T) {
	e := catalog.NewBookNotFoundBuilder().BookId("b-9").Attempt(2).Title("Lost").Build()
	assert.Equal(t, conjure.CodeNotFound, e.Code())
	assert.Equal(t, "Catalog:BookNotFound", e.Name())
	assert.Equal(t, []string{"attempt", "bookId"}, e.SafeArgNames())
	assert.Equal(t, map[string]any{"bookId": common.BookId("b-9"), "attempt": int32(2), "title": "Lost"}, e.Parameters())

	var cerr conjure.Error = e
	assert.Equal(t, "NOT_FOUND Catalog:BookNotFound", cerr.Error())
}

type catalogServer struct {
	mu     sync.Mutex
	books  map[common.BookId]catalog.Book
	tokens []conjure.BearerToken
}

func (s *catalogServer) GetBook(ctx context.Context, token conjure.BearerToken, bookId common.BookId) (catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	book, ok := s.books[bookId]
	if !ok {
		return catalog.Book{}, catalog.NewBookNotFoundBuilder().BookId(bookId).Attempt(1).Build()
	}
	return book, nil
}

func (s *catalogServer) SearchBooks(ctx context.Context, token conjure.BearerToken, query string, limit *int32, requestId string) ([]catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	var out []catalog.Book
	for _, b := range s.books {
		if b.Title() == query {
			out = append(out, b)
		}
	}
	if limit != nil && int(*limit) < len(out) {
		out = out[:*limit]
	}
	if requestId == "fail" {
		return nil, errors.New("storage offline")
	}
	return out, nil
}

func (s *catalogServer) PutBook(ctx context.Context, token conjure.BearerToken, bookId common.BookId, book catalog.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[bookId] = book
	return nil
}

func (s *catalogServer) UploadCover(ctx context.Context, bookId common.BookId, image conjure.Binary) (conjure.Binary, error) {
	out := slices.Clone(image)
	slices.Reverse(out)
	return out, nil
}

func newClient(t *testing.T) (catalog.CatalogServiceClient, *catalogServer) {
	t.Helper()
	srv := &catalogServer{books: make(map[common.BookId]catalog.Book)}
	mux := conjure.NewMux()
	require.NoError(t, catalog.RegisterCatalogService(mux, srv))
	return catalog.NewCatalogServiceClient(mux), srv
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	client, srv := newClient(t)
	const token = conjure.BearerToken("secret-token")

	require.NoError(t, client.PutBook(ctx, token, "b-1", dune()))

	got, err := client.GetBook(ctx, token, "b-1")
	require.NoError(t, err)
	assert.Equal(t, dune(), got)

	found, err := client.SearchBooks(ctx, token, "Dune", nil, "r-1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Book{dune()}, found)

	zero := int32(0)
	found, err = client.SearchBooks(ctx, token, "Dune", &zero, "r-2")
	require.NoError(t, err)
	assert.Empty(t, found)

	cover, err := client.UploadCover(ctx, "b-1", conjure.Binary("abc"))
	require.NoError(t, err)
	assert.Equal(t, conjure.Binary("cba"), cover)

	assert.Equal(t, []conjure.BearerToken{token, token, token}, srv.tokens)
}

func TestCatalogService_Errors(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)

	_, err := client.GetBook(ctx, "secret-token", "missing")
	var notFound catalog.BookNotFound
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, common.BookId("missing"), notFound.BookId())
	assert.Equal(t, int32(1), notFound.Attempt())

	_, err = client.GetBook(ctx, "", "b-1")
	var cerr conjure.Error
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, conjure.CodePermissionDenied, cerr.Code())

	_, err = client.SearchBooks(ctx, "secret-token", "Dune", nil, "fail")
	require.True(t, errors.As(err, &cerr), "got %v", err)
	assert.Equal(t, "Default:Internal", cerr.Name())
	assert.NotContains(t, err.Error(), "storage offline")
}
