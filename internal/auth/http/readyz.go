package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// readyTimeout bounds each dependency check.
const readyTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the user database, the challenge store and the token signer.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"one or more checks failed"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	challenges store.Challenges,
	km *jwtx.KeyManager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status, code := "ok", http.StatusOK

		record := func(name string, err error) {
			if err != nil {
				checks[name] = "error: " + err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		record("database", st.Ping(ctx))
		record("challenges", challenges.Ping(ctx))
		if km == nil || !km.IsReady() {
			record("signer", errSignerNotReady)
		} else {
			record("signer", nil)
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
