package graphql

import (
	"context"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/slothpixel/sloth/internal/util/slotherr"
)

// NewHandler serves queries over GET and POST. A positive complexityLimit rejects
// queries above it before execution.
func NewHandler(es graphql.ExecutableSchema, complexityLimit int) *handler.Server {
	srv := handler.New(es)
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	if 0 < complexityLimit {
		srv.Use(extension.FixedComplexityLimit(complexityLimit))
	}
	srv.SetErrorPresenter(presentError)
	srv.SetRecoverFunc(func(ctx context.Context, r interface{}) error {
		logger.ErrorF("Panic serving query: %v", r)
		return slotherr.InternalErr("query failed")
	})
	return srv
}

// presentError adds the error class as extensions.code unless the engine already set one.
func presentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]interface{}{}
	}
	if _, ok := gqlErr.Extensions["code"]; !ok {
		gqlErr.Extensions["code"] = slotherr.Code(err)
	}
	return gqlErr
}
