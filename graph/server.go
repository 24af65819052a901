package graph

import (
	"context"
	_ "embed"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/UkralStul/minifeed/graph/generated"
	"github.com/UkralStul/minifeed/internal/domain"
)

// ComplexityLimit - предельная сложность одного запроса.
const ComplexityLimit = 200

//go:embed schema.graphqls
var sourceSchema string

// SchemaSource возвращает исходный текст схемы.
func SchemaSource() string { return sourceSchema }

// NewServer собирает GraphQL-хендлер поверх сгенерированной схемы.
func NewServer(r *Resolver) *handler.Server {
	schema := generated.NewExecutableSchema(generated.Config{Resolvers: r})

	srv := handler.NewDefaultServer(schema)
	srv.Use(extension.FixedComplexityLimit(ComplexityLimit))
	srv.SetErrorPresenter(ErrorPresenter)
	return srv
}

// ErrorPresenter добавляет машиночитаемый код ошибки в extensions.code.
func ErrorPresenter(ctx context.Context, e error) *gqlerror.Error {
	err := graphql.DefaultErrorPresenter(ctx, e)
	if code := ErrorCode(e); code != "" {
		if err.Extensions == nil {
			err.Extensions = map[string]interface{}{}
		}
		err.Extensions["code"] = code
	}
	return err
}

// ErrorCode сопоставляет доменную ошибку с кодом для клиента.
// Для прочих ошибок возвращает пустую строку.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrEmptyInput):
		return "EMPTY_INPUT"
	case errors.Is(err, domain.ErrInvalidUsername):
		return "INVALID_USERNAME"
	case errors.Is(err, domain.ErrUserExists):
		return "USER_EXISTS"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	default:
		return ""
	}
}
