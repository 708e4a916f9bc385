package middleware

import (
	"net/http"
	"strings"

	"github.com/foresttrail/trailops/api/responses"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
	"github.com/foresttrail/trailops/pkg/logger"
)

const (
	actorHeader   = "X-Actor-ID"
	maxActorBytes = 128
)

// Actor reads the caller identity from X-Actor-ID. Mutating requests without
// one are rejected; reads pass through anonymously.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := strings.TrimSpace(r.Header.Get(actorHeader))
			if actor == "" {
				if isMutating(r.Method) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, actorHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if len(actor) > maxActorBytes {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, actorHeader+" header too long").
					WithDetails(map[string]any{"max": maxActorBytes}))
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
